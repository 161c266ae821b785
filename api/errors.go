package api

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrRateLimited represents a request refused because of the service rate limit
	ErrRateLimited = errors.New("rate limited")
	// ErrNotFound represents a lookup for something the service does not know
	ErrNotFound = errors.New("not found")
)

// StatusError represents a response with a non success status code
type StatusError struct {
	Code   int
	Method string
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s wasn't successful (%d)", e.Method, e.Path, e.Code)
}

// IsNotFound returns true if the error is caused by a 404 response
func IsNotFound(err error) bool {
	if errors.Cause(err) == ErrNotFound {
		return true
	}
	se, ok := errors.Cause(err).(*StatusError)

	return ok && se.Code == 404
}
