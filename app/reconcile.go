package app

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Reconcile drains every result channel and applies the results.
// It never waits for results and returns true when anything visible changed,
// in which case a repaint was requested.
func (a *App) Reconcile() bool {
	changed := a.reconcileAuth()
	changed = a.reconcileLists() || changed
	changed = a.reconcileWindows() || changed
	if a.assets.Reconcile() > 0 {
		changed = true
	}

	if changed {
		a.requestRepaint()
	}
	a.publish()

	return changed
}

func (a *App) reconcileAuth() bool {
	changed := false
	for _, msg := range a.ch.Auth.Drain() {
		changed = true
		a.authGen++
		log.WithFields(log.Fields{"auth": msg.State, "gen": a.authGen}).Debug("auth state replaced")
		a.auth = msg.State
		a.authErr = msg.Err
		a.loginOp = LoginOpNone
		// windows may have been filled with the previous session
		a.userWindow = nil
		a.sessionWindow = nil

		if msg.State.IsAuthenticated() {
			a.lastRefresh = time.Time{}
			a.searchUsers()
			continue
		}
		a.friends = nil
		a.sessions = nil
		a.messages = Messages{}
		a.loading.done(KindFriends)
		a.loading.done(KindSessions)
		a.loading.done(KindMessages)
	}

	for _, s := range a.ch.UserSession.Drain() {
		a.prefs.UserSession = s
		a.SavePreferences()
	}

	return changed
}

// reconcileLists applies the list refreshes, results started in a previous
// session are dropped
func (a *App) reconcileLists() bool {
	changed := false

	for _, r := range a.ch.Friends.Drain() {
		if !a.current(r.Gen, KindFriends) {
			continue
		}
		changed = true
		a.loading.done(KindFriends)
		if r.Err != nil {
			log.WithError(r.Err).Warn("Failed to refresh friends")
			continue
		}
		a.friends = r.Value
	}

	for _, r := range a.ch.Sessions.Drain() {
		if !a.current(r.Gen, KindSessions) {
			continue
		}
		changed = true
		a.loading.done(KindSessions)
		if r.Err != nil {
			log.WithError(r.Err).Warn("Failed to refresh sessions")
			continue
		}
		a.sessions = r.Value
	}

	for _, r := range a.ch.Messages.Drain() {
		if !a.current(r.Gen, KindMessages) {
			continue
		}
		changed = true
		a.loading.done(KindMessages)
		if r.Err != nil {
			log.WithError(r.Err).Warn("Failed to refresh messages")
			continue
		}
		a.messages = GroupMessages(r.Value)
	}

	if r, ok := a.ch.Users.TryRecv(); ok {
		changed = true
		a.loading.done(KindUsers)
		if r.Err != nil {
			log.WithError(r.Err).Warn("Failed to search users")
		} else {
			a.users = r.Value
		}
	}

	for _, r := range a.ch.SentMessage.Drain() {
		if r.Err != nil {
			log.WithError(r.Err).Warn("Failed to send message")
			continue
		}
		if !a.current(r.Gen, KindMessages) {
			continue
		}
		changed = true
		a.messages.add(r.Value)
		sortMessages(a.messages[r.Value.Peer()])
	}

	return changed
}

// current returns true when a result started in generation gen belongs to
// the session that is logged in now
func (a *App) current(gen uint64, k Kind) bool {
	if gen == a.authGen && a.IsAuthenticated() {
		return true
	}
	log.WithFields(log.Fields{"kind": k, "gen": gen, "current": a.authGen}).Debug("Dropping result of a previous session")

	return false
}

// reconcileWindows applies lookups, results for a window that was closed or
// replaced in the meantime are dropped
func (a *App) reconcileWindows() bool {
	changed := false

	for _, r := range a.ch.User.Drain() {
		changed = true
		a.loading.done(KindUser)
		if r.Err != nil {
			log.WithError(r.Err).Warn("Failed to get user")
			continue
		}
		if w := a.userWindow; w != nil && w.ID == r.Value.ID {
			u := r.Value
			w.User = &u
		}
	}

	for _, r := range a.ch.UserStatus.Drain() {
		changed = true
		a.loading.done(KindUserStatus)
		if r.Err != nil {
			log.WithError(r.Err).Warn("Failed to get user status")
			continue
		}
		if w := a.userWindow; w != nil && w.ID == r.Value.UserID {
			s := r.Value.Status
			w.Status = &s
		}
	}

	for _, r := range a.ch.Session.Drain() {
		changed = true
		a.loading.done(KindSession)
		if r.Err != nil {
			log.WithError(r.Err).Warn("Failed to get session")
			continue
		}
		if w := a.sessionWindow; w != nil && w.ID == r.Value.ID {
			s := r.Value
			w.Session = &s
		}
	}

	return changed
}

// Snapshot represents a copy of the app state that is safe to read from any goroutine
type Snapshot struct {
	Auth          string     `json:"auth"`
	Authenticated bool       `json:"authenticated"`
	Busy          bool       `json:"busy"`
	LoginOp       LoginOp    `json:"loginOp,omitempty"`
	AuthError     string     `json:"authError,omitempty"`
	Loading       []Kind     `json:"loading"`
	Friends       int        `json:"friends"`
	Sessions      int        `json:"sessions"`
	Users         int        `json:"users"`
	Conversations int        `json:"conversations"`
	LastRefresh   *time.Time `json:"lastRefresh,omitempty"`
}

// Snapshot returns the state as of the last reconciliation
func (a *App) Snapshot() Snapshot {
	return *a.snapshot.Load()
}

func (a *App) publish() {
	s := &Snapshot{
		Authenticated: a.IsAuthenticated(),
		Busy:          a.AuthBusy(),
		LoginOp:       a.loginOp,
		Loading:       a.loading.Kinds(),
		Friends:       len(a.friends),
		Sessions:      len(a.sessions),
		Users:         len(a.users),
		Conversations: len(a.messages),
	}
	if a.auth != nil {
		s.Auth = a.auth.String()
	} else {
		s.Auth = string(a.loginOp)
	}
	if a.authErr != nil {
		s.AuthError = a.authErr.Error()
	}
	if !a.lastRefresh.IsZero() {
		t := a.lastRefresh
		s.LastRefresh = &t
	}
	a.snapshot.Store(s)
}
