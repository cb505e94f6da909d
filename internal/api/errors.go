package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable wraps transport-level failures: the request never got a
	// response. There is no retry; the caller sees the first failure.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized marks HTTP 401 responses. By the time the caller sees
	// it the session has already been cleared, except on the login call.
	ErrUnauthorized = errors.New("unauthorized")
)

// ServerError carries a failure reported by the API itself: a non-2xx status
// with a JSON body. The server message passes through to the user untouched.
type ServerError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
