// Package mockserver is an in-memory journal backend speaking the same JSON
// API as the real one. It backs the dev-server command and the tests of every
// client package.
package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/logging"
)

const (
	// SessionCookie carries the session id.
	SessionCookie = "session"

	// Prefix is where the API is mounted.
	Prefix = "/api"

	defaultLimit = 50
	maxLimit     = 100
)

type account struct {
	user     entry.User
	password string
}

type record struct {
	owner int64
	entry entry.JournalEntry
}

// Request is a call the server has seen.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// Server is the in-memory backend. The zero value is not usable; call New.
type Server struct {
	log logging.Logger
	now func() time.Time

	mu        sync.Mutex
	accounts  map[string]*account
	sessions  map[string]int64
	entries   map[int64]*record
	nextUser  int64
	nextEntry int64
	failSync  map[int64]bool
	bareList  bool
	requests  []Request
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(log logging.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithClock fixes the time used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithBareList makes the list endpoint answer with a bare JSON array.
func WithBareList() Option {
	return func(s *Server) { s.bareList = true }
}

func New(opts ...Option) *Server {
	s := &Server{
		log:      logging.Discard(),
		now:      time.Now,
		accounts: make(map[string]*account),
		sessions: make(map[string]int64),
		entries:  make(map[int64]*record),
		failSync: make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddUser registers an account and returns it.
func (s *Server) AddUser(username, password string) entry.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[username]; ok {
		a.password = password
		return a.user
	}
	s.nextUser++
	u := entry.User{ID: s.nextUser, Username: username}
	s.accounts[username] = &account{user: u, password: password}
	return u
}

// Seed stores e for the named user and returns it with an id assigned.
func (s *Server) Seed(username string, e entry.JournalEntry) entry.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[username]
	if !ok {
		panic("mockserver: unknown user " + username)
	}
	s.nextEntry++
	e.ID = s.nextEntry
	now := entry.Timestamp{Time: s.now()}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = now
	}
	if e.SyncStatus == "" {
		e.SyncStatus = entry.SyncNone
	}
	s.entries[e.ID] = &record{owner: a.user.ID, entry: e}
	return e
}

// FailSync makes calendar sync fail for entry id.
func (s *Server) FailSync(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSync[id] = true
}

// Entry returns the stored copy of id.
func (s *Server) Entry(id int64) (entry.JournalEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.entries[id]
	if !ok {
		return entry.JournalEntry{}, false
	}
	return r.entry, true
}

// Requests returns every API call seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Expire drops every session, as a server restart would.
func (s *Server) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]int64)
}

// Handler returns the routes mounted under Prefix.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Route(Prefix, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Get("/status", s.status)
			r.With(s.requireAuth).Post("/logout", s.logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/journal/entries", s.listEntries)
			r.Post("/journal/entries", s.createEntry)
			r.Post("/journal/entries/batch-export", s.batchExport)
			r.Get("/journal/entries/{id}", s.getEntry)
			r.Put("/journal/entries/{id}", s.updateEntry)
			r.Delete("/journal/entries/{id}", s.deleteEntry)
			r.Post("/journal/entries/{id}/export", s.exportEntry)
			r.Post("/journal/entries/{id}/sync", s.syncEntry)

			r.Post("/calendar/sync", s.syncAll)
			r.Get("/calendar/events", s.events)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
	s.log.Info(ctx, "dev server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) newSession(userID int64) string {
	id := uuid.NewString()
	s.sessions[id] = userID
	return id
}

func (s *Server) userFor(r *http.Request) (entry.User, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return entry.User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[c.Value]
	if !ok {
		return entry.User{}, false
	}
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a.user, true
		}
	}
	return entry.User{}, false
}

// owned returns the user's entries, newest date first.
func (s *Server) owned(userID int64) []entry.JournalEntry {
	var out []entry.JournalEntry
	for _, r := range s.entries {
		if r.owner == userID {
			out = append(out, r.entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[j].Date.Before(out[i].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
