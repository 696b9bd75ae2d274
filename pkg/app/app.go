// Package app wires the API clients, the saved session and the native bridge
// into the Service shared by the TUI, the CLI and the MCP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"tableflip.dev/daybook/pkg/auth"
	"tableflip.dev/daybook/pkg/calendar"
	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/config"
	"tableflip.dev/daybook/pkg/export"
	"tableflip.dev/daybook/pkg/journal"
	"tableflip.dev/daybook/pkg/logging"
	"tableflip.dev/daybook/pkg/native"
	"tableflip.dev/daybook/pkg/session"
)

// Service bundles the API clients, the session and the native bridge so the
// TUI, the CLI and the MCP server share one wiring.
type Service struct {
	Config   *config.Config
	Client   *client.Client
	Session  *session.Jar
	Journal  *journal.Service
	Auth     *auth.Service
	Calendar *calendar.Service
	Export   *export.Service
	Bridge   *native.Bridge
	Log      logging.Logger
}

var ErrNoConfig = errors.New("app: no configuration")

type options struct {
	nav    client.Navigator
	jar    http.CookieJar
	opener native.Opener
	log    logging.Logger
}

// Option customizes New.
type Option func(*options)

// WithNavigator receives the login redirect on a rejected session.
func WithNavigator(nav client.Navigator) Option {
	return func(o *options) { o.nav = nav }
}

// WithJar replaces the on-disk session with jar.
func WithJar(jar http.CookieJar) Option {
	return func(o *options) { o.jar = jar }
}

func WithOpener(op native.Opener) Option {
	return func(o *options) { o.opener = op }
}

func WithLogger(log logging.Logger) Option {
	return func(o *options) { o.log = log }
}

// New wires a Service from cfg.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, ErrNoConfig
	}
	o := options{log: logging.Discard(), opener: native.SystemOpener}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{Config: cfg, Log: o.log}

	jar := o.jar
	if jar == nil {
		sj, err := session.Open(cfg.SessionPath, session.WithLogger(o.log))
		if err != nil {
			return nil, fmt.Errorf("app: open session: %w", err)
		}
		s.Session = sj
		jar = sj
	}

	copts := []client.Option{
		client.WithJar(jar),
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(o.log),
	}
	if o.nav != nil {
		copts = append(copts, client.WithNavigator(o.nav))
	}
	s.Client = client.New(cfg.Server, copts...)

	s.Journal = journal.New(s.Client)
	s.Auth = auth.New(s.Client)
	s.Calendar = calendar.New(s.Client)
	s.Export = export.New(s.Client)
	s.Bridge = native.New(
		native.WithOpener(o.opener),
		native.WithTimeout(cfg.HandoffTimeout),
		native.WithLogger(o.log),
	)
	return s, nil
}

// Logout ends the server session and forgets the saved cookie even when the
// server could not be reached.
func (s *Service) Logout(ctx context.Context) error {
	err := s.Auth.Logout(ctx)
	if s.Session != nil {
		if cerr := s.Session.Clear(); cerr != nil {
			s.Log.Warn(ctx, "clear session", "err", cerr)
		}
	}
	if errors.Is(err, client.ErrUnauthenticated) {
		return nil
	}
	return err
}

// ExportResult is the outcome of an export handed to the notes app.
type ExportResult struct {
	URL    string `json:"url"`
	Opened bool   `json:"opened"`
}

// ExportEntries asks for an export of ids and, when open is set, hands the
// URL to the native bridge. One id uses the single-entry endpoint.
func (s *Service) ExportEntries(ctx context.Context, ids []int64, open bool) (*ExportResult, error) {
	var (
		url string
		err error
	)
	if len(ids) == 1 {
		url, err = s.Export.Entry(ctx, ids[0])
	} else {
		url, err = s.Export.Entries(ctx, ids)
	}
	if err != nil {
		return nil, err
	}
	res := &ExportResult{URL: url}
	if open {
		res.Opened = s.Bridge.Open(ctx, url)
	}
	return res, nil
}
