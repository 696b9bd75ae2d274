package client

import (
	"errors"
	"fmt"
)

// FallbackMessage is used when a failed response carries no readable reason.
const FallbackMessage = "Request failed"

var (
	// ErrUnauthenticated matches errors for 401 responses that already sent
	// the user to the login view. Callers should not surface them again.
	ErrUnauthenticated = errors.New("client: not authenticated")

	// ErrTransport matches failures below HTTP: dial, TLS, cancellation.
	ErrTransport = errors.New("client: transport failure")
)

// HTTPError is a non-2xx response with its best-effort decoded reason.
type HTTPError struct {
	Status  int
	Message string

	redirected bool
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports ErrUnauthenticated only for 401s that triggered the login
// redirect; a rejected login attempt is an ordinary HTTPError.
func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthenticated && e.redirected
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

// TransportError wraps a failure to exchange a request with the backend.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("client: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Message is the text to show a person for err. Errors that were already
// handled by a redirect yield "".
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return ""
	case errors.Is(err, ErrTransport):
		return "Network error: server unreachable"
	default:
		return err.Error()
	}
}
