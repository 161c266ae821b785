package tui

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chrisvdg/peeps/api"
	"github.com/chrisvdg/peeps/app"
	"github.com/chrisvdg/peeps/cache"
	"github.com/chrisvdg/peeps/channels"
	"github.com/chrisvdg/peeps/lanes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// inlineLanes runs jobs on the calling goroutine, results wait in the channels for the next frame
type inlineLanes struct{}

func (inlineLanes) SpawnData(job lanes.Job) { job() }
func (inlineLanes) SpawnAuth(job lanes.Job) { job() }

// fakeService accepts the password "secret" and knows a fixed set of friends, sessions and users.
// Jobs run inline so it needs no locking.
type fakeService struct {
	friends  []api.Friend
	sessions []api.SessionInfo
	users    []api.User
	sent     []api.Message
}

func (f *fakeService) Login(c api.Credentials) (api.UserSession, error) {
	if c.Password != "secret" {
		return api.UserSession{}, errors.New("invalid credentials")
	}
	return api.UserSession{UserID: "U-" + c.Identifier, Token: "token"}, nil
}

func (f *fakeService) User(id string) (api.User, error) {
	return api.User{ID: id, Username: id}, nil
}

func (f *fakeService) UserStatus(id string) (api.UserStatus, error) {
	return api.UserStatus{OnlineStatus: api.StatusOnline}, nil
}

func (f *fakeService) Session(id string) (api.SessionInfo, error) {
	return api.SessionInfo{ID: id}, nil
}

func (f *fakeService) SearchUsers(query string) ([]api.User, error) {
	var found []api.User
	for _, u := range f.users {
		if strings.Contains(u.Username, query) {
			found = append(found, u)
		}
	}
	return found, nil
}

func (f *fakeService) Authenticate(s api.UserSession) api.AuthClient {
	return &fakeAuth{fakeService: f, session: s}
}

type fakeAuth struct {
	*fakeService
	session api.UserSession
}

func (f *fakeAuth) UserSession() api.UserSession { return f.session }
func (f *fakeAuth) Friends() ([]api.Friend, error) {
	return append([]api.Friend(nil), f.friends...), nil
}
func (f *fakeAuth) Sessions() ([]api.SessionInfo, error)      { return f.sessions, nil }
func (f *fakeAuth) Messages(limit int) ([]api.Message, error) { return nil, nil }
func (f *fakeAuth) SendMessage(m api.Message) (api.Message, error) {
	f.sent = append(f.sent, m)
	return m, nil
}

func (f *fakeAuth) AddFriend(id string) error {
	for _, u := range f.users {
		if u.ID == id {
			f.friends = append(f.friends, api.Friend{ID: u.ID, Username: u.Username})
		}
	}
	return nil
}

func (f *fakeAuth) RemoveFriend(id string) error {
	friends := f.friends[:0:0]
	for _, fr := range f.friends {
		if fr.ID != id {
			friends = append(friends, fr)
		}
	}
	f.friends = friends
	return nil
}

func (f *fakeAuth) ExtendSession() error  { return nil }
func (f *fakeAuth) Logout() error         { return nil }
func (f *fakeAuth) Downgrade() api.Client { return f.fakeService }

type pngFetcher struct {
	data []byte
}

func (f pngFetcher) Fetch(a cache.Asset) ([]byte, error) {
	return f.data, nil
}

func newTestModel(t *testing.T, svc *fakeService) (Model, *app.App) {
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	ch := channels.NewSet()
	assets := cache.NewWithFetcher(pngFetcher{data: buf.Bytes()}, inlineLanes{}, ch.Images, 0)
	a := app.New(&app.Config{}, inlineLanes{}, ch, assets, svc, app.DefaultPreferences())

	return NewModel(a, &Config{}), a
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// loggedIn returns a model past the login page
func loggedIn(t *testing.T, svc *fakeService) (Model, *app.App) {
	m, a := newTestModel(t, svc)
	m = typeText(t, m, "ada")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "secret")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, RepaintMsg{})
	require.True(t, a.IsAuthenticated())

	return m, a
}
