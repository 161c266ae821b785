package app

import (
	"testing"
	"time"

	"github.com/chrisvdg/peeps/api"
	"github.com/chrisvdg/peeps/cache"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileNothingPending(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 3; i++ {
		assert.False(t, h.app.Reconcile())
	}
	assert.Zero(t, h.repaints)
}

func TestReconcileRequestsRepaint(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	repaints := h.repaints

	h.app.RefreshSessions()
	assert.True(t, h.settle())
	assert.Greater(t, h.repaints, repaints)
}

func TestRefreshFriendsSorted(t *testing.T) {
	h := newHarness(t)
	h.svc.friends = []api.Friend{
		{ID: "U-offline", Status: api.UserStatus{OnlineStatus: api.StatusOffline}},
		{ID: "U-away", Status: api.UserStatus{OnlineStatus: api.StatusAway}},
		{ID: "U-online", Status: api.UserStatus{OnlineStatus: api.StatusOnline}},
		{ID: "U-joinable", Status: api.UserStatus{OnlineStatus: api.StatusAway, CurrentSessionAccessLevel: api.AccessAnyone}},
		{ID: "U-friends", Status: api.UserStatus{OnlineStatus: api.StatusOnline, CurrentSessionAccessLevel: api.AccessFriends}},
	}
	h.login(t)

	h.app.RefreshFriends()
	assert.True(t, h.app.Loading().Is(KindFriends))
	h.settle()
	assert.False(t, h.app.Loading().Is(KindFriends))

	var ids []string
	for _, f := range h.app.Friends() {
		ids = append(ids, f.ID)
	}
	want := []string{"U-joinable", "U-friends", "U-online", "U-away", "U-offline"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("friends order mismatch (-want +got):\n%s", diff)
	}
}

func TestRefreshFailureKeepsPriorData(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t)
	h.svc.sessions = []api.SessionInfo{{ID: "S-1", ActiveUsers: 2}}
	h.login(t)
	h.app.RefreshSessions()
	h.settle()
	require.Len(t, h.app.Sessions(), 1)

	h.svc.setErr("Sessions", errors.New("service unavailable"))
	h.app.RefreshSessions()
	assert.True(h.settle())

	assert.False(h.app.Loading().Is(KindSessions))
	assert.Len(h.app.Sessions(), 1)
	assert.True(h.app.IsAuthenticated())
}

func TestRefreshRequiresAuthentication(t *testing.T) {
	h := newHarness(t)

	h.app.RefreshFriends()
	h.app.RefreshSessions()
	h.app.RefreshMessages()
	h.app.SendMessage("U-bob", "hi")

	data, _ := h.lanes.pending()
	assert.Zero(t, data)
	assert.False(t, h.app.Loading().Any())
}

func TestRefreshSessionsSorted(t *testing.T) {
	h := newHarness(t)
	h.svc.sessions = []api.SessionInfo{
		{ID: "S-small", ActiveUsers: 1},
		{ID: "S-big", ActiveUsers: 12},
		{ID: "S-mid", ActiveUsers: 5},
	}
	h.login(t)

	h.app.RefreshSessions()
	h.settle()

	var ids []string
	for _, s := range h.app.Sessions() {
		ids = append(ids, s.ID)
	}
	if diff := cmp.Diff([]string{"S-big", "S-mid", "S-small"}, ids); diff != "" {
		t.Errorf("sessions order mismatch (-want +got):\n%s", diff)
	}
	s, ok := h.app.FindSession("S-mid")
	assert.True(t, ok)
	assert.Equal(t, 5, s.ActiveUsers)
}

func TestListResultAfterLogoutDropped(t *testing.T) {
	h := newHarness(t)
	h.svc.friends = []api.Friend{{ID: "U-bob"}}
	h.login(t)

	h.app.RefreshFriends()
	h.app.Logout()
	h.settle()

	assert.False(t, h.app.IsAuthenticated())
	assert.Empty(t, h.app.Friends())
}

func TestListResultFromPreviousSessionDropped(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t)
	h.svc.friends = []api.Friend{{ID: "U-friend-of-ada"}}
	h.svc.sessions = []api.SessionInfo{{ID: "S-ada"}}
	h.svc.messages = []api.Message{{ID: "MSG-1", OwnerID: "U-ada", SenderID: "U-friend-of-ada", RecipientID: "U-ada"}}
	h.login(t)

	h.app.RefreshFriends()
	h.app.RefreshSessions()
	h.app.RefreshMessages()
	held := h.lanes.takeData()

	h.app.Logout()
	h.lanes.runAuth()
	h.app.Reconcile()
	h.app.Login(api.Credentials{Identifier: "bob", Password: "hunter2"})
	h.lanes.runAuth()
	h.app.Reconcile()
	require.Equal(t, "authenticated as U-bob", h.app.Snapshot().Auth)

	for _, job := range held {
		job()
	}
	h.app.Reconcile()
	assert.Empty(h.app.Friends())
	assert.Empty(h.app.Sessions())
	assert.Empty(h.app.Messages("U-friend-of-ada"))
}

func TestPreviousSessionResultDoesNotSupersedeCurrent(t *testing.T) {
	h := newHarness(t)
	h.svc.friends = []api.Friend{{ID: "U-friend-of-ada"}}
	h.login(t)

	h.app.RefreshFriends()
	stale := h.lanes.takeData()
	h.app.Logout()
	h.lanes.runAuth()
	h.app.Reconcile()
	h.app.Login(api.Credentials{Identifier: "bob", Password: "hunter2"})
	h.lanes.runAuth()
	h.app.Reconcile()

	h.svc.m.Lock()
	h.svc.friends = []api.Friend{{ID: "U-friend-of-bob"}}
	h.svc.m.Unlock()
	h.app.RefreshFriends()
	fresh := h.lanes.takeData()
	for _, job := range fresh {
		job()
	}
	h.svc.m.Lock()
	h.svc.friends = []api.Friend{{ID: "U-friend-of-ada"}}
	h.svc.m.Unlock()
	for _, job := range stale {
		job()
	}
	h.app.Reconcile()

	var ids []string
	for _, f := range h.app.Friends() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"U-friend-of-bob"}, ids)
	assert.False(t, h.app.Loading().Is(KindFriends))
}

func TestAddAndRemoveFriendRefresh(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t)
	h.svc.users["U-bob"] = api.User{ID: "U-bob", Username: "bob"}
	h.login(t)

	h.app.AddFriend("U-bob")
	h.settle()
	assert.True(h.app.IsFriend("U-bob"))
	assert.Equal(1, h.svc.callCount("Friends"))

	h.app.RemoveFriend("U-bob")
	h.settle()
	assert.False(h.app.IsFriend("U-bob"))
	assert.Equal(2, h.svc.callCount("Friends"))
}

func TestAddFriendFailureSkipsRefresh(t *testing.T) {
	h := newHarness(t)
	h.svc.setErr("AddFriend", errors.New("forbidden"))
	h.login(t)

	h.app.AddFriend("U-bob")
	h.settle()
	assert.Zero(t, h.svc.callCount("Friends"))
	assert.False(t, h.app.Loading().Is(KindFriends))
}

func TestSearchUsers(t *testing.T) {
	h := newHarness(t)
	h.svc.users["U-bob"] = api.User{ID: "U-bob", Username: "bob"}

	h.app.SearchUsers("")
	data, _ := h.lanes.pending()
	assert.Zero(t, data)

	h.app.SearchUsers("bob")
	assert.True(t, h.app.Loading().Is(KindUsers))
	h.settle()
	require.Len(t, h.app.Users(), 1)
	assert.Equal(t, "U-bob", h.app.Users()[0].ID)
}

func TestMessagesGroupedByPeer(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t)
	base := time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC)
	h.svc.messages = []api.Message{
		{ID: "MSG-3", OwnerID: "U-ada", SenderID: "U-bob", RecipientID: "U-ada", SendTime: base.Add(2 * time.Minute)},
		{ID: "MSG-1", OwnerID: "U-ada", SenderID: "U-ada", RecipientID: "U-bob", SendTime: base},
		{ID: "MSG-2", OwnerID: "U-ada", SenderID: "U-cat", RecipientID: "U-ada", SendTime: base.Add(time.Minute)},
	}
	h.login(t)

	h.app.RefreshMessages()
	h.settle()

	var ids []string
	for _, m := range h.app.Messages("U-bob") {
		ids = append(ids, m.ID)
	}
	if diff := cmp.Diff([]string{"MSG-1", "MSG-3"}, ids); diff != "" {
		t.Errorf("conversation mismatch (-want +got):\n%s", diff)
	}
	assert.Len(h.app.Messages("U-cat"), 1)

	h.now = base.Add(time.Hour)
	h.app.SendMessage("U-bob", "hello")
	h.settle()
	conversation := h.app.Messages("U-bob")
	require.Len(t, conversation, 3)
	sent := conversation[2]
	assert.Equal("hello", sent.Content)
	assert.Equal("U-ada", sent.SenderID)
	assert.Equal(api.MessageText, sent.Type)
	assert.Equal(2, h.app.Snapshot().Conversations)
}

func TestUserWindowStaleResultDropped(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t)
	h.svc.users["U-a"] = api.User{ID: "U-a", Username: "a"}
	h.svc.users["U-b"] = api.User{ID: "U-b", Username: "b"}
	h.svc.statuses["U-b"] = api.UserStatus{OnlineStatus: api.StatusOnline}

	h.app.OpenUser("U-a", nil, nil)
	h.app.OpenUser("U-b", nil, nil)
	data, _ := h.lanes.pending()
	assert.Equal(4, data)
	h.settle()

	w := h.app.UserWindow()
	require.NotNil(t, w)
	assert.Equal("U-b", w.ID)
	require.NotNil(t, w.User)
	assert.Equal("b", w.User.Username)
	require.NotNil(t, w.Status)
	assert.Equal(api.StatusOnline, w.Status.OnlineStatus)
	assert.False(h.app.Loading().Any())
}

func TestOpenFriendSkipsStatusLookup(t *testing.T) {
	h := newHarness(t)
	h.app.OpenFriend(api.Friend{ID: "U-bob", Status: api.UserStatus{OnlineStatus: api.StatusBusy}})

	data, _ := h.lanes.pending()
	assert.Equal(t, 1, data)
	assert.Equal(t, api.StatusBusy, h.app.UserWindow().Status.OnlineStatus)
}

func TestClosedWindowResultDropped(t *testing.T) {
	h := newHarness(t)
	h.svc.sessions = []api.SessionInfo{{ID: "S-1", Name: "Hub"}}

	h.app.OpenSession("S-1", nil)
	h.app.CloseSession()
	h.settle()

	assert.Nil(t, h.app.SessionWindow())
	assert.False(t, h.app.Loading().Is(KindSession))
}

func TestSessionWindowLookup(t *testing.T) {
	h := newHarness(t)
	h.svc.sessions = []api.SessionInfo{{ID: "S-1", Name: "Hub"}}

	known := &api.SessionInfo{ID: "S-1", Name: "cached"}
	h.app.OpenSession("S-1", known)
	data, _ := h.lanes.pending()
	assert.Zero(t, data)

	h.app.OpenSession("S-1", nil)
	h.settle()
	w := h.app.SessionWindow()
	require.NotNil(t, w.Session)
	assert.Equal(t, "Hub", w.Session.Name)
}

func TestAuthChangeClosesWindows(t *testing.T) {
	h := newHarness(t)
	h.app.OpenSession("S-1", &api.SessionInfo{ID: "S-1"})
	h.app.OpenUser("U-bob", &api.User{ID: "U-bob"}, &api.UserStatus{})

	h.login(t)

	assert.Nil(t, h.app.SessionWindow())
	assert.Nil(t, h.app.UserWindow())
}

func TestTickRefreshesAndSweeps(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t)
	h.login(t)
	const url = "https://assets.example.com/avatar.png"

	_, ok := h.app.Texture(url)
	assert.False(ok)
	h.settle()
	tex, ok := h.app.Texture(url)
	require.True(t, ok)
	assert.Equal(4, tex.Width())

	h.app.Tick(h.now)
	data, _ := h.lanes.pending()
	assert.Equal(3, data)
	assert.True(h.app.Loading().Is(KindFriends))
	assert.Equal(cache.StateReady, h.assets.State("avatar.png"))
	h.settle()
	assert.Equal(h.now, h.app.LastRefresh())

	// not due yet
	h.now = h.now.Add(time.Second)
	h.app.Tick(h.now)
	data, _ = h.lanes.pending()
	assert.Zero(data)

	// not requested since the previous sweep
	h.now = h.now.Add(DefaultRefreshFrequency)
	h.app.Tick(h.now)
	assert.Equal(cache.StateAbsent, h.assets.State("avatar.png"))
	assert.EqualValues(1, h.assets.Stats().Evicted)
}

func TestTickLoggedOutIsIdle(t *testing.T) {
	h := newHarness(t)

	h.app.Tick(h.now)
	data, auth := h.lanes.pending()
	assert.Zero(t, data)
	assert.Zero(t, auth)
}

func TestTickSweepsWhileLoggedOut(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t)
	h.login(t)
	const url = "https://assets.example.com/avatar.png"

	h.app.Texture(url)
	h.settle()
	h.app.Tick(h.now)
	h.settle()
	require.Equal(t, cache.StateReady, h.assets.State("avatar.png"))

	h.app.Logout()
	h.settle()
	require.False(t, h.app.IsAuthenticated())

	h.now = h.now.Add(DefaultRefreshFrequency)
	h.app.Tick(h.now)
	assert.Equal(cache.StateAbsent, h.assets.State("avatar.png"))
	data, auth := h.lanes.pending()
	assert.Zero(data)
	assert.Zero(auth)
}

func TestTickExpiresStaleLoading(t *testing.T) {
	h := newHarnessWithConfig(t, &Config{LoadingTimeout: time.Minute})
	h.login(t)
	h.app.Tick(h.now)
	require.True(t, h.app.Loading().Is(KindFriends))

	h.now = h.now.Add(30 * time.Second)
	h.app.Tick(h.now)
	assert.True(t, h.app.Loading().Is(KindFriends))

	h.now = h.now.Add(time.Minute)
	h.app.Tick(h.now)
	assert.False(t, h.app.Loading().Any())
}

func TestTextureInvalidURL(t *testing.T) {
	h := newHarness(t)

	_, ok := h.app.Texture("")
	assert.False(t, ok)
	_, ok = h.app.Texture("ftp://example.com/a.png")
	assert.False(t, ok)
	data, _ := h.lanes.pending()
	assert.Zero(t, data)
}

func TestSnapshot(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t)

	s := h.app.Snapshot()
	assert.False(s.Authenticated)
	assert.Equal("unauthenticated", s.Auth)

	h.app.Login(api.Credentials{Identifier: "ada"})
	h.app.Reconcile()
	s = h.app.Snapshot()
	assert.True(s.Busy)
	assert.Equal(string(LoginOpLoggingIn), s.Auth)

	h.settle()
	s = h.app.Snapshot()
	assert.True(s.Authenticated)
	assert.Equal("authenticated as U-ada", s.Auth)
}
