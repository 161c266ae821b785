package channels

import (
	"github.com/chrisvdg/peeps/api"
	"github.com/chrisvdg/peeps/texture"
)

// ImageMsg represents a finished image fetch, Texture is nil when the fetch failed
type ImageMsg struct {
	ID      string
	Texture *texture.Texture
}

// AuthMsg represents the outcome of an auth transition.
// State is always set, Err explains why the transition fell back to unauthenticated.
type AuthMsg struct {
	State *api.AuthState
	Err   error
}

// UserStatusMsg represents a looked up user status
type UserStatusMsg struct {
	UserID string
	Status api.UserStatus
}

// NewSet returns one channel per operation kind
func NewSet() *Set {
	return &Set{
		Friends:     NewQueue[Result[[]api.Friend]](),
		Sessions:    NewQueue[Result[[]api.SessionInfo]](),
		Users:       NewLatest[Result[[]api.User]](),
		Messages:    NewQueue[Result[[]api.Message]](),
		User:        NewQueue[Result[api.User]](),
		UserStatus:  NewQueue[Result[UserStatusMsg]](),
		Session:     NewQueue[Result[api.SessionInfo]](),
		SentMessage: NewQueue[Result[api.Message]](),
		Auth:        NewQueue[AuthMsg](),
		UserSession: NewQueue[*api.UserSession](),
		Images:      NewQueue[ImageMsg](),
	}
}

// Set represents the channels workers report their results on.
// Searches only keep the latest result. Refreshes are queued so a result from
// a previous session can't supersede one from the current session.
type Set struct {
	// Friends background refresh
	Friends *Queue[Result[[]api.Friend]]
	// Sessions background refresh
	Sessions *Queue[Result[[]api.SessionInfo]]
	// Users search
	Users *Latest[Result[[]api.User]]
	// Messages background refresh
	Messages *Queue[Result[[]api.Message]]
	// User window lookups
	User *Queue[Result[api.User]]
	// User window status lookups
	UserStatus *Queue[Result[UserStatusMsg]]
	// Session window lookups
	Session *Queue[Result[api.SessionInfo]]
	// Messages sent from the chat
	SentMessage *Queue[Result[api.Message]]
	// Login, logout and session extension results
	Auth *Queue[AuthMsg]
	// New user session to persist, nil clears the stored one
	UserSession *Queue[*api.UserSession]
	// Decoded image assets
	Images *Queue[ImageMsg]
}
