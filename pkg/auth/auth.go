// Package auth wraps login, logout and the session status check.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/entry"
)

const (
	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"
	statusPath = "/auth/status"

	// MinPasswordLength mirrors the backend's check.
	MinPasswordLength = 6
)

var (
	ErrMissingCredentials = errors.New("Username and password are required")
	ErrShortPassword      = errors.New("Password must be at least 6 characters")
)

// Credentials are sent to the login endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate applies the same rules the backend enforces.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	if len(c.Password) < MinPasswordLength {
		return ErrShortPassword
	}
	return nil
}

// Service talks to the auth endpoints.
type Service struct {
	R client.Requester
}

func New(r client.Requester) *Service {
	return &Service{R: r}
}

// Login establishes a session. A 401 here is a credential error and is
// returned to the caller rather than redirected.
func (s *Service) Login(ctx context.Context, username, password string) (*entry.User, error) {
	c := Credentials{Username: strings.TrimSpace(username), Password: password}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var resp struct {
		Message string      `json:"message"`
		User    *entry.User `json:"user"`
	}
	err := client.Call(ctx, s.R, loginPath, client.Options{
		Method:   http.MethodPost,
		Body:     c,
		Fallback: "Login failed",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.User == nil {
		return &entry.User{Username: c.Username}, nil
	}
	return resp.User, nil
}

// Logout ends the session.
func (s *Service) Logout(ctx context.Context) error {
	_, err := s.R.Request(ctx, logoutPath, client.Options{
		Method:   http.MethodPost,
		Fallback: "Logout failed",
	})
	return err
}

// Status reports whether the session is valid. Any failure, including an
// unreachable server, reads as signed out.
func (s *Service) Status(ctx context.Context) entry.Status {
	var st entry.Status
	if err := client.Call(ctx, s.R, statusPath, client.Options{}, &st); err != nil {
		return entry.Status{}
	}
	if !st.Authenticated {
		st.User = nil
	}
	return st
}
