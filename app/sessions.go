package app

import (
	"sort"

	"github.com/chrisvdg/peeps/api"
	"github.com/chrisvdg/peeps/channels"
)

// RefreshSessions fetches the public sessions in the background, the most populated first
func (a *App) RefreshSessions() {
	ac, ok := a.authClient()
	if !ok {
		return
	}
	a.loading.start(KindSessions, a.now())
	out, gen := a.ch.Sessions, a.authGen

	a.lanes.SpawnData(func() {
		sessions, err := ac.Sessions()
		if err == nil {
			sort.SliceStable(sessions, func(i, j int) bool {
				return sessions[i].ActiveUsers > sessions[j].ActiveUsers
			})
		}
		out.Send(channels.From(sessions, err).Tag(gen))
	})
}

// GetSession looks up a session for the session window
func (a *App) GetSession(id string) {
	client, ok := a.client()
	if !ok {
		return
	}
	a.loading.start(KindSession, a.now())
	out := a.ch.Session

	a.lanes.SpawnData(func() {
		out.Send(channels.From(client.Session(id)))
	})
}

// OpenSession opens the session window, an unknown session is looked up
func (a *App) OpenSession(id string, session *api.SessionInfo) {
	a.sessionWindow = &SessionWindow{ID: id, Session: session}
	if session == nil {
		a.GetSession(id)
	}
}

// CloseSession closes the session window
func (a *App) CloseSession() {
	a.sessionWindow = nil
}

// FindSession returns the session from the sessions list
func (a *App) FindSession(id string) (api.SessionInfo, bool) {
	for _, s := range a.sessions {
		if s.ID == id {
			return s, true
		}
	}

	return api.SessionInfo{}, false
}
