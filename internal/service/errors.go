package service

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when a task is not present in the local collection.
var ErrNotFound = errors.New("not found")

// NetworkError reports a transport failure before any response arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response.
type HTTPError struct {
	Status     int
	StatusText string
	Body       string
}

func (e *HTTPError) Error() string {
	text := e.StatusText
	if text == "" {
		text = http.StatusText(e.Status)
	}
	return fmt.Sprintf("api error: %d %s", e.Status, text)
}

// IsNotFound reports whether the server answered 404.
func (e *HTTPError) IsNotFound() bool { return e.Status == http.StatusNotFound }

// IsUnauthorized reports whether the server rejected the session.
func (e *HTTPError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// ValidationError reports a client-side precondition failure.
// It never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsNotFound reports whether err means the task does not exist, locally or remotely.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.IsNotFound()
}

// IsUnauthorized reports whether err is a 401/403 response.
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.IsUnauthorized()
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
