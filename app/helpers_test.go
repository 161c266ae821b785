package app

import (
	"bytes"
	"image"
	"image/png"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chrisvdg/peeps/api"
	"github.com/chrisvdg/peeps/cache"
	"github.com/chrisvdg/peeps/channels"
	"github.com/chrisvdg/peeps/lanes"
	"github.com/stretchr/testify/require"
)

// fakeLanes queues jobs until they are run by the test
type fakeLanes struct {
	m    sync.Mutex
	data []lanes.Job
	auth []lanes.Job
}

func (l *fakeLanes) SpawnData(job lanes.Job) {
	l.m.Lock()
	defer l.m.Unlock()
	l.data = append(l.data, job)
}

func (l *fakeLanes) SpawnAuth(job lanes.Job) {
	l.m.Lock()
	defer l.m.Unlock()
	l.auth = append(l.auth, job)
}

func (l *fakeLanes) pending() (data, auth int) {
	l.m.Lock()
	defer l.m.Unlock()
	return len(l.data), len(l.auth)
}

// runAll runs the queued auth jobs in order, then the data jobs
func (l *fakeLanes) runAll() {
	l.m.Lock()
	auth, data := l.auth, l.data
	l.auth, l.data = nil, nil
	l.m.Unlock()

	for _, job := range auth {
		job()
	}
	for _, job := range data {
		job()
	}
}

// runAuth runs the queued auth jobs and leaves the data jobs queued
func (l *fakeLanes) runAuth() {
	l.m.Lock()
	auth := l.auth
	l.auth = nil
	l.m.Unlock()

	for _, job := range auth {
		job()
	}
}

// takeData removes the queued data jobs without running them
func (l *fakeLanes) takeData() []lanes.Job {
	l.m.Lock()
	defer l.m.Unlock()
	data := l.data
	l.data = nil
	return data
}

// fakeService represents the remote service, errs maps a method name to the error it returns
type fakeService struct {
	m        sync.Mutex
	friends  []api.Friend
	sessions []api.SessionInfo
	messages []api.Message
	users    map[string]api.User
	statuses map[string]api.UserStatus
	errs     map[string]error
	calls    map[string]int
}

func newFakeService() *fakeService {
	return &fakeService{
		users:    map[string]api.User{},
		statuses: map[string]api.UserStatus{},
		errs:     map[string]error{},
		calls:    map[string]int{},
	}
}

func (f *fakeService) call(name string) error {
	f.m.Lock()
	defer f.m.Unlock()
	f.calls[name]++
	return f.errs[name]
}

func (f *fakeService) setErr(name string, err error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.errs[name] = err
}

func (f *fakeService) callCount(name string) int {
	f.m.Lock()
	defer f.m.Unlock()
	return f.calls[name]
}

func (f *fakeService) Login(c api.Credentials) (api.UserSession, error) {
	if err := f.call("Login"); err != nil {
		return api.UserSession{}, err
	}
	return api.UserSession{UserID: "U-" + c.Identifier, Token: "token", MachineID: "machine"}, nil
}

func (f *fakeService) User(id string) (api.User, error) {
	if err := f.call("User"); err != nil {
		return api.User{}, err
	}
	f.m.Lock()
	defer f.m.Unlock()
	u, ok := f.users[id]
	if !ok {
		return api.User{}, api.ErrNotFound
	}
	return u, nil
}

func (f *fakeService) UserStatus(id string) (api.UserStatus, error) {
	if err := f.call("UserStatus"); err != nil {
		return api.UserStatus{}, err
	}
	f.m.Lock()
	defer f.m.Unlock()
	return f.statuses[id], nil
}

func (f *fakeService) Session(id string) (api.SessionInfo, error) {
	if err := f.call("Session"); err != nil {
		return api.SessionInfo{}, err
	}
	f.m.Lock()
	defer f.m.Unlock()
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return api.SessionInfo{}, api.ErrNotFound
}

func (f *fakeService) SearchUsers(query string) ([]api.User, error) {
	if err := f.call("SearchUsers"); err != nil {
		return nil, err
	}
	f.m.Lock()
	defer f.m.Unlock()
	var found []api.User
	for _, u := range f.users {
		if strings.Contains(u.Username, query) {
			found = append(found, u)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found, nil
}

func (f *fakeService) Authenticate(s api.UserSession) api.AuthClient {
	return &fakeAuth{fakeService: f, session: s}
}

// fakeAuth represents the remote service with a user session
type fakeAuth struct {
	*fakeService
	session api.UserSession
}

func (f *fakeAuth) UserSession() api.UserSession {
	return f.session
}

func (f *fakeAuth) Friends() ([]api.Friend, error) {
	if err := f.call("Friends"); err != nil {
		return nil, err
	}
	f.m.Lock()
	defer f.m.Unlock()
	return append([]api.Friend(nil), f.friends...), nil
}

func (f *fakeAuth) Sessions() ([]api.SessionInfo, error) {
	if err := f.call("Sessions"); err != nil {
		return nil, err
	}
	f.m.Lock()
	defer f.m.Unlock()
	return append([]api.SessionInfo(nil), f.sessions...), nil
}

func (f *fakeAuth) Messages(limit int) ([]api.Message, error) {
	if err := f.call("Messages"); err != nil {
		return nil, err
	}
	f.m.Lock()
	defer f.m.Unlock()
	ms := append([]api.Message(nil), f.messages...)
	if len(ms) > limit {
		ms = ms[:limit]
	}
	return ms, nil
}

func (f *fakeAuth) SendMessage(m api.Message) (api.Message, error) {
	if err := f.call("SendMessage"); err != nil {
		return api.Message{}, err
	}
	return m, nil
}

func (f *fakeAuth) AddFriend(id string) error {
	if err := f.call("AddFriend"); err != nil {
		return err
	}
	f.m.Lock()
	defer f.m.Unlock()
	f.friends = append(f.friends, api.Friend{ID: id, Username: f.users[id].Username})
	return nil
}

func (f *fakeAuth) RemoveFriend(id string) error {
	if err := f.call("RemoveFriend"); err != nil {
		return err
	}
	f.m.Lock()
	defer f.m.Unlock()
	kept := f.friends[:0]
	for _, fr := range f.friends {
		if fr.ID != id {
			kept = append(kept, fr)
		}
	}
	f.friends = kept
	return nil
}

func (f *fakeAuth) ExtendSession() error {
	return f.call("ExtendSession")
}

func (f *fakeAuth) Logout() error {
	return f.call("Logout")
}

func (f *fakeAuth) Downgrade() api.Client {
	return f.fakeService
}

// fakeFetcher serves the same PNG for every asset
type fakeFetcher struct {
	data []byte
}

func (f *fakeFetcher) Fetch(a cache.Asset) ([]byte, error) {
	return f.data, nil
}

func pngBytes(t *testing.T) []byte {
	buf := &bytes.Buffer{}
	err := png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)
	return buf.Bytes()
}

type harness struct {
	app      *App
	lanes    *fakeLanes
	svc      *fakeService
	assets   *cache.Cache
	now      time.Time
	repaints int
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithConfig(t, &Config{AssetBaseURL: "https://assets.example.com/"})
}

func newHarnessWithConfig(t *testing.T, c *Config) *harness {
	prefs, err := LoadPreferences(filepath.Join(t.TempDir(), "peeps", "prefs.yaml"))
	require.NoError(t, err)

	h := &harness{
		lanes: &fakeLanes{},
		svc:   newFakeService(),
		now:   time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	ch := channels.NewSet()
	h.assets = cache.NewWithFetcher(&fakeFetcher{data: pngBytes(t)}, h.lanes, ch.Images, 0)
	h.app = New(c, h.lanes, ch, h.assets, h.svc, prefs)
	h.app.now = func() time.Time { return h.now }
	h.app.SetRepainter(RepaintFunc(func() { h.repaints++ }))

	return h
}

// settle runs every queued job then reconciles their results
func (h *harness) settle() bool {
	h.lanes.runAll()
	return h.app.Reconcile()
}

func (h *harness) login(t *testing.T) {
	h.app.Login(api.Credentials{Identifier: "ada", Password: "hunter2"})
	h.settle()
	require.True(t, h.app.IsAuthenticated())
}
