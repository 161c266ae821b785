package app

import (
	"sort"
	"time"
)

// Kind represents an operation kind with its own loading flag
type Kind string

const (
	KindFriends    Kind = "friends"
	KindSessions   Kind = "sessions"
	KindUsers      Kind = "users"
	KindMessages   Kind = "messages"
	KindUser       Kind = "user"
	KindUserStatus Kind = "user status"
	KindSession    Kind = "session"
)

// LoginOp represents the auth transition in progress
type LoginOp string

const (
	LoginOpNone       LoginOp = ""
	LoginOpLoggingIn  LoginOp = "logging in"
	LoginOpLoggingOut LoginOp = "logging out"
)

func newLoading() *Loading {
	return &Loading{since: make(map[Kind]time.Time)}
}

// Loading tracks which operations wait for a result.
// It is owned by the UI goroutine.
type Loading struct {
	since map[Kind]time.Time
}

// Is returns true while an operation of the kind is loading
func (l *Loading) Is(k Kind) bool {
	_, ok := l.since[k]
	return ok
}

// Any returns true while any operation is loading
func (l *Loading) Any() bool {
	return len(l.since) > 0
}

// Kinds returns the loading kinds sorted by name
func (l *Loading) Kinds() []Kind {
	kinds := make([]Kind, 0, len(l.since))
	for k := range l.since {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}

func (l *Loading) start(k Kind, now time.Time) {
	if _, ok := l.since[k]; !ok {
		l.since[k] = now
	}
}

func (l *Loading) done(k Kind) {
	delete(l.since, k)
}

// expire clears the flags set before now-timeout and returns them
func (l *Loading) expire(timeout time.Duration, now time.Time) []Kind {
	var expired []Kind
	for k, since := range l.since {
		if now.Sub(since) >= timeout {
			expired = append(expired, k)
			delete(l.since, k)
		}
	}

	return expired
}
