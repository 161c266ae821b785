package app

import (
	"github.com/chrisvdg/peeps/api"
	"github.com/chrisvdg/peeps/channels"
	log "github.com/sirupsen/logrus"
)

// takeAuth moves the auth state out, leaving the app busy until Reconcile receives its replacement
func (a *App) takeAuth() (*api.AuthState, bool) {
	state := a.auth
	if state == nil {
		return nil, false
	}
	a.auth = nil
	a.authErr = nil

	return state, true
}

// TryUseSession authenticates with a stored user session, extending it on the service
func (a *App) TryUseSession(s api.UserSession) {
	state, ok := a.takeAuth()
	if !ok {
		return
	}
	a.loginOp = LoginOpLoggingIn
	client := state.Downgrade().Client()
	authCh, sessionCh := a.ch.Auth, a.ch.UserSession

	a.lanes.SpawnAuth(func() {
		ac := client.Authenticate(s)
		err := ac.ExtendSession()
		if err != nil {
			log.WithError(err).Warn("Stored user session is no longer valid")
			authCh.Send(channels.AuthMsg{State: api.Unauthenticated(client), Err: err})
			sessionCh.Send(nil)
			return
		}
		log.WithField("user", s.UserID).Info("Resumed user session")
		authCh.Send(channels.AuthMsg{State: api.Authenticated(ac)})
	})
	a.requestRepaint()
}

// Login exchanges credentials for a user session, the session is persisted when RememberMe is set
func (a *App) Login(c api.Credentials) {
	state, ok := a.takeAuth()
	if !ok {
		return
	}
	a.loginOp = LoginOpLoggingIn
	a.prefs.Identifier = c.Identifier
	client := state.Downgrade().Client()
	authCh, sessionCh := a.ch.Auth, a.ch.UserSession

	a.lanes.SpawnAuth(func() {
		s, err := client.Login(c)
		if err != nil {
			log.WithError(err).Warn("Login failed")
			authCh.Send(channels.AuthMsg{State: api.Unauthenticated(client), Err: err})
			return
		}
		log.WithField("user", s.UserID).Info("Logged in")
		authCh.Send(channels.AuthMsg{State: api.Authenticated(client.Authenticate(s))})
		if c.RememberMe {
			sessionCh.Send(&s)
		}
	})
	a.requestRepaint()
}

// Logout invalidates the user session, the app is logged out locally even when the service call fails
func (a *App) Logout() {
	if !a.IsAuthenticated() {
		return
	}
	state, _ := a.takeAuth()
	ac, _ := state.Auth()
	a.loginOp = LoginOpLoggingOut
	authCh, sessionCh := a.ch.Auth, a.ch.UserSession

	a.lanes.SpawnAuth(func() {
		err := ac.Logout()
		if err != nil {
			log.WithError(err).Warn("Failed to invalidate user session")
		}
		authCh.Send(channels.AuthMsg{State: api.Unauthenticated(ac.Downgrade())})
		sessionCh.Send(nil)
	})
	a.requestRepaint()
}
