package api

// Client represents the unauthenticated remote service.
// All calls block until the service answered and are safe for concurrent use.
type Client interface {
	// Login exchanges credentials for a user session
	Login(c Credentials) (UserSession, error)
	// User looks up a user by id
	User(id string) (User, error)
	// UserStatus looks up the presence of a user
	UserStatus(id string) (UserStatus, error)
	// Session looks up a session by id
	Session(id string) (SessionInfo, error)
	// SearchUsers looks up users by name
	SearchUsers(query string) ([]User, error)
	// Authenticate returns a client using the provided session
	Authenticate(s UserSession) AuthClient
}

// AuthClient represents the remote service with a user session
type AuthClient interface {
	Client

	// UserSession returns the session the client authenticates with
	UserSession() UserSession
	Friends() ([]Friend, error)
	Sessions() ([]SessionInfo, error)
	// Messages returns the latest messages of the user, at most limit of them
	Messages(limit int) ([]Message, error)
	SendMessage(m Message) (Message, error)
	AddFriend(id string) error
	RemoveFriend(id string) error
	// ExtendSession checks the session is still valid and extends its lifetime
	ExtendSession() error
	// Logout invalidates the session on the service
	Logout() error
	// Downgrade returns the client without its session
	Downgrade() Client
}

// Unauthenticated returns an auth state without a user session
func Unauthenticated(c Client) *AuthState {
	return &AuthState{client: c}
}

// Authenticated returns an auth state with a user session
func Authenticated(c AuthClient) *AuthState {
	return &AuthState{client: c, auth: c}
}

// AuthState is either unauthenticated (client only) or authenticated (client with session).
// It is never mutated, transitions produce a new value.
type AuthState struct {
	client Client
	auth   AuthClient
}

// Client returns the client usable for unauthenticated calls
func (s *AuthState) Client() Client {
	return s.client
}

// Auth returns the authenticated client if there is one
func (s *AuthState) Auth() (AuthClient, bool) {
	return s.auth, s.auth != nil
}

// IsAuthenticated returns true when the state carries a user session
func (s *AuthState) IsAuthenticated() bool {
	return s.auth != nil
}

// Downgrade returns the unauthenticated form of the state
func (s *AuthState) Downgrade() *AuthState {
	if s.auth == nil {
		return s
	}

	return Unauthenticated(s.auth.Downgrade())
}

// String returns a loggable description without secrets
func (s *AuthState) String() string {
	if s.auth == nil {
		return "unauthenticated"
	}

	return "authenticated as " + s.auth.UserSession().UserID
}
