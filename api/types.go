package api

import (
	"strings"
	"time"
)

// OnlineStatus represents the presence of a user
type OnlineStatus string

const (
	// StatusOffline represents a user that is not connected
	StatusOffline OnlineStatus = "Offline"
	// StatusInvisible represents a connected user that appears offline
	StatusInvisible OnlineStatus = "Invisible"
	// StatusAway represents a connected but idle user
	StatusAway OnlineStatus = "Away"
	// StatusBusy represents a connected user that does not want to be disturbed
	StatusBusy OnlineStatus = "Busy"
	// StatusOnline represents a connected user
	StatusOnline OnlineStatus = "Online"
)

// AccessLevel represents who can join a session, higher is more open
type AccessLevel int

const (
	AccessPrivate AccessLevel = iota
	AccessLAN
	AccessFriends
	AccessFriendsOfFriends
	AccessRegisteredUsers
	AccessAnyone
)

// UserProfile represents the public profile of a user
type UserProfile struct {
	IconURL string `json:"iconUrl,omitempty" yaml:"icon_url,omitempty"`
}

// User represents a user account
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	RegisteredAt time.Time    `json:"registrationDate"`
	Profile      *UserProfile `json:"profile,omitempty"`
}

// UserStatus represents the current presence of a user
type UserStatus struct {
	OnlineStatus              OnlineStatus  `json:"onlineStatus"`
	LastStatusChange          time.Time     `json:"lastStatusChange"`
	CurrentSessionAccessLevel AccessLevel   `json:"currentSessionAccessLevel"`
	CurrentSessionID          string        `json:"currentSessionId,omitempty"`
	ActiveSessions            []SessionInfo `json:"activeSessions,omitempty"`
}

// Friend represents a contact of the authenticated user
type Friend struct {
	ID           string       `json:"id"`
	Username     string       `json:"friendUsername"`
	FriendStatus string       `json:"friendStatus"`
	Status       UserStatus   `json:"userStatus"`
	Profile      *UserProfile `json:"profile,omitempty"`
}

// SessionUser represents a user in a session
type SessionUser struct {
	ID        string `json:"userID,omitempty"`
	Username  string `json:"username"`
	IsPresent bool   `json:"isPresent"`
}

// SessionInfo represents a world instance users can join
type SessionInfo struct {
	ID           string        `json:"sessionId"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	HostUsername string        `json:"hostUsername"`
	ThumbnailURL string        `json:"thumbnail,omitempty"`
	ActiveUsers  int           `json:"activeUsers"`
	MaxUsers     int           `json:"maxUsers"`
	AccessLevel  AccessLevel   `json:"accessLevel"`
	Users        []SessionUser `json:"sessionUsers,omitempty"`
}

// StrippedName returns the session name without rich text tags
func (s SessionInfo) StrippedName() string {
	var b strings.Builder
	depth := 0
	for _, r := range s.Name {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// UserSession represents the minimal authentication token that is persisted between runs
type UserSession struct {
	UserID    string    `json:"userId" yaml:"user_id"`
	Token     string    `json:"token" yaml:"token"`
	MachineID string    `json:"secretMachineId" yaml:"machine_id"`
	Expire    time.Time `json:"expire" yaml:"expire"`
}

// Credentials represents a login request
type Credentials struct {
	// Identifier is either a username or an email address
	Identifier string `json:"-"`
	Password   string `json:"password"`
	TOTP       string `json:"-"`
	RememberMe bool   `json:"rememberMe"`
}

// MessageType represents the content kind of a message
type MessageType string

const (
	MessageText           MessageType = "Text"
	MessageSessionInvite  MessageType = "SessionInvite"
	MessageObject         MessageType = "Object"
	MessageSound          MessageType = "Sound"
	MessageCreditTransfer MessageType = "CreditTransfer"
)

// Message represents a direct message between two users
type Message struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"ownerId"`
	SenderID    string      `json:"senderId"`
	RecipientID string      `json:"recipientId"`
	Type        MessageType `json:"messageType"`
	Content     string      `json:"content"`
	SendTime    time.Time   `json:"sendTime"`
	ReadTime    *time.Time  `json:"readTime,omitempty"`
}

// Peer returns the id of the user on the other side of the conversation
func (m Message) Peer() string {
	if m.SenderID == m.OwnerID {
		return m.RecipientID
	}

	return m.SenderID
}
