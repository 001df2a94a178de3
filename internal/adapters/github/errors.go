package github

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUsername is returned for names GitHub would never accept.
	ErrInvalidUsername = errors.New("invalid github username")
	// ErrUserNotFound is returned when GitHub answers 404.
	ErrUserNotFound = errors.New("github user not found")
	// ErrRateLimited is returned when GitHub answers 403 or 429.
	ErrRateLimited = errors.New("github rate limit exceeded")
)

// Error describes an unexpected upstream failure.
type Error struct {
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("github: GET %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("github: GET %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
