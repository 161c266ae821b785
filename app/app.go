package app

import (
	"sync/atomic"
	"time"

	"github.com/chrisvdg/peeps/api"
	"github.com/chrisvdg/peeps/cache"
	"github.com/chrisvdg/peeps/channels"
	"github.com/chrisvdg/peeps/lanes"
	"github.com/chrisvdg/peeps/texture"
	log "github.com/sirupsen/logrus"
)

// Lanes runs jobs off the UI goroutine
type Lanes interface {
	SpawnData(job lanes.Job)
	SpawnAuth(job lanes.Job)
}

// Repainter is asked for a new frame when background results became visible
type Repainter interface {
	RequestRepaint()
}

// RepaintFunc adapts a function to a Repainter
type RepaintFunc func()

// RequestRepaint calls f
func (f RepaintFunc) RequestRepaint() {
	f()
}

// UserWindow represents the user detail window, User and Status are nil until looked up
type UserWindow struct {
	ID     string
	User   *api.User
	Status *api.UserStatus
}

// SessionWindow represents the session detail window, Session is nil until looked up
type SessionWindow struct {
	ID      string
	Session *api.SessionInfo
}

// New returns the app state, unauthenticated with the provided client
func New(c *Config, l Lanes, ch *channels.Set, assets *cache.Cache, client api.Client, prefs *Preferences) *App {
	if c.MessageLimit <= 0 {
		c.MessageLimit = DefaultMessageLimit
	}
	if prefs == nil {
		prefs = DefaultPreferences()
	}

	a := &App{
		c:        c,
		lanes:    l,
		ch:       ch,
		assets:   assets,
		prefs:    prefs,
		repaint:  RepaintFunc(func() {}),
		auth:     api.Unauthenticated(client),
		loading:  newLoading(),
		messages: Messages{},
		now:      time.Now,
	}
	a.publish()

	return a
}

// App represents the state owned by the UI goroutine.
// Only the UI goroutine calls its methods, except Snapshot.
// Background work never touches it, results come back through the channels
// and are applied by Reconcile.
type App struct {
	c      *Config
	lanes  Lanes
	ch     *channels.Set
	assets *cache.Cache
	prefs  *Preferences

	repaint Repainter

	// auth is nil while an auth transition is in flight
	auth *api.AuthState
	// authGen is bumped on every auth transition, session bound results carry
	// the generation they were started in
	authGen uint64
	authErr error
	loginOp LoginOp
	loading *Loading

	friends       []api.Friend
	sessions      []api.SessionInfo
	users         []api.User
	messages      Messages
	userWindow    *UserWindow
	sessionWindow *SessionWindow

	lastRefresh time.Time
	lastSweep   time.Time
	snapshot    atomic.Pointer[Snapshot]
	now         func() time.Time
}

// SetRepainter sets who is asked for new frames
func (a *App) SetRepainter(r Repainter) {
	a.repaint = r
}

// Start re-validates the stored user session, it is called once before the first frame
func (a *App) Start() {
	if a.prefs.UserSession == nil {
		return
	}
	log.Info("Validating stored user session")
	a.TryUseSession(*a.prefs.UserSession)
}

// Preferences returns the persisted preferences
func (a *App) Preferences() *Preferences {
	return a.prefs
}

// SavePreferences writes the preferences, failures are logged
func (a *App) SavePreferences() {
	err := a.prefs.Save()
	if err != nil {
		log.WithError(err).Error("Failed to save preferences")
	}
}

// IsAuthenticated returns true when an authenticated client is present
func (a *App) IsAuthenticated() bool {
	return a.auth != nil && a.auth.IsAuthenticated()
}

// AuthBusy returns true while an auth transition is in flight
func (a *App) AuthBusy() bool {
	return a.auth == nil
}

// LoginOp returns the auth transition in flight
func (a *App) LoginOp() LoginOp {
	return a.loginOp
}

// AuthError returns why the last auth transition failed
func (a *App) AuthError() error {
	return a.authErr
}

// Loading returns the loading flags
func (a *App) Loading() *Loading {
	return a.loading
}

// Friends returns the friends, sorted with the most joinable first
func (a *App) Friends() []api.Friend {
	return a.friends
}

// Sessions returns the sessions, the most populated first
func (a *App) Sessions() []api.SessionInfo {
	return a.sessions
}

// Users returns the result of the last user search
func (a *App) Users() []api.User {
	return a.users
}

// UserWindow returns the open user window
func (a *App) UserWindow() *UserWindow {
	return a.userWindow
}

// SessionWindow returns the open session window
func (a *App) SessionWindow() *SessionWindow {
	return a.sessionWindow
}

// LastRefresh returns when the lists were last refreshed in the background
func (a *App) LastRefresh() time.Time {
	return a.lastRefresh
}

// Texture returns the texture of an asset URL if it is loaded, starting its load otherwise
func (a *App) Texture(assetURL string) (*texture.Texture, bool) {
	if assetURL == "" {
		return nil, false
	}
	asset, err := cache.ParseAsset(assetURL, a.c.AssetBaseURL)
	if err != nil {
		log.WithError(err).Debug("skipping asset")
		return nil, false
	}

	return a.assets.Get(asset)
}

// Tick runs the periodic work. Stale loading flags are expired every tick,
// the cache is swept once per refresh frequency whatever the auth state and
// the lists are refreshed on the same cadence while logged in.
func (a *App) Tick(now time.Time) {
	if a.c.LoadingTimeout > 0 {
		for _, k := range a.loading.expire(a.c.LoadingTimeout, now) {
			log.WithField("kind", k).Warnf("No result after %s, clearing loading state", a.c.LoadingTimeout)
		}
	}

	// textures are swept whether or not anyone is logged in
	if now.Sub(a.lastSweep) >= a.prefs.RefreshFrequency {
		a.lastSweep = now
		a.assets.Sweep()
	}

	if !a.IsAuthenticated() || now.Sub(a.lastRefresh) < a.prefs.RefreshFrequency {
		return
	}
	a.lastRefresh = now
	log.Debug("Background refresh")
	if !a.loading.Is(KindFriends) {
		a.RefreshFriends()
	}
	if !a.loading.Is(KindSessions) {
		a.RefreshSessions()
	}
	if !a.loading.Is(KindMessages) {
		a.RefreshMessages()
	}
}

func (a *App) requestRepaint() {
	a.repaint.RequestRepaint()
}

// authClient returns the authenticated client, false when logged out or busy
func (a *App) authClient() (api.AuthClient, bool) {
	if a.auth == nil {
		return nil, false
	}

	return a.auth.Auth()
}

// client returns the client usable for lookups, false while busy
func (a *App) client() (api.Client, bool) {
	if a.auth == nil {
		return nil, false
	}

	return a.auth.Client(), true
}
