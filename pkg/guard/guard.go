// Package guard resolves view paths and checks the session before every
// protected navigation.
package guard

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/logging"
)

// Route names.
const (
	Login    = "login"
	Home     = "home"
	Detail   = "entry"
	Settings = "settings"
)

// LoginPath is where unauthenticated navigations are sent.
const LoginPath = "/login"

// Route is a resolved view.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool

	// EntryID is set for /entry/{id}. Zero with New set means /entry/new.
	EntryID int64
	New     bool
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allow    bool
	Redirect string
}

// StatusChecker reports the current session.
type StatusChecker interface {
	Status(ctx context.Context) entry.Status
}

// StatusFunc adapts a function to StatusChecker.
type StatusFunc func(ctx context.Context) entry.Status

func (f StatusFunc) Status(ctx context.Context) entry.Status { return f(ctx) }

// Guard asks the backend on every protected navigation. Nothing is cached.
type Guard struct {
	Checker StatusChecker
	Log     logging.Logger
}

// Before decides whether navigation to to may proceed.
func (g *Guard) Before(ctx context.Context, to Route) Decision {
	if !to.RequiresAuth {
		return Decision{Allow: true}
	}
	if g.Checker.Status(ctx).Authenticated {
		return Decision{Allow: true}
	}
	if g.Log != nil {
		g.Log.Info(ctx, "navigation blocked, not signed in", "to", to.Path)
	}
	return Decision{Redirect: LoginPath}
}

// Resolve maps a path onto the route table. Unknown paths resolve to home.
func Resolve(path string) Route {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	clean := "/" + strings.Trim(path, "/")

	switch {
	case clean == LoginPath:
		return Route{Name: Login, Path: LoginPath}
	case clean == "/settings":
		return Route{Name: Settings, Path: clean, RequiresAuth: true}
	case clean == "/entry" || clean == "/entry/new":
		return Route{Name: Detail, Path: "/entry/new", RequiresAuth: true, New: true}
	case strings.HasPrefix(clean, "/entry/"):
		id, err := strconv.ParseInt(strings.TrimPrefix(clean, "/entry/"), 10, 64)
		if err != nil || id <= 0 {
			break
		}
		return Route{Name: Detail, Path: clean, RequiresAuth: true, EntryID: id}
	}
	return Route{Name: Home, Path: "/", RequiresAuth: true}
}

// EntryPath is the detail path for id, or the new-entry path for zero.
func EntryPath(id int64) string {
	if id == 0 {
		return "/entry/new"
	}
	return "/entry/" + strconv.FormatInt(id, 10)
}

// Router combines resolution with the guard and keeps a back stack. It is
// safe for concurrent use; the status check runs outside the lock.
type Router struct {
	Guard *Guard

	mu      sync.Mutex
	current Route
	history []Route
}

func NewRouter(checker StatusChecker, log logging.Logger) *Router {
	return &Router{Guard: &Guard{Checker: checker, Log: log}}
}

// Current returns the last route navigation landed on.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate resolves path, runs the guard and, when allowed, makes the
// route current. A refused navigation lands on the login route instead.
func (r *Router) Navigate(ctx context.Context, path string) (Route, Decision) {
	return r.navigate(ctx, path, true)
}

// Back re-navigates to the previous route, through the guard. With an empty
// history it goes home.
func (r *Router) Back(ctx context.Context) (Route, Decision) {
	path := "/"
	r.mu.Lock()
	if n := len(r.history); n > 0 {
		path = r.history[n-1].Path
		r.history = r.history[:n-1]
	}
	r.mu.Unlock()
	return r.navigate(ctx, path, false)
}

func (r *Router) navigate(ctx context.Context, path string, push bool) (Route, Decision) {
	to := Resolve(path)
	d := r.Guard.Before(ctx, to)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !d.Allow {
		to = Resolve(d.Redirect)
		r.history = nil
	} else if push && r.current.Path != "" && r.current.Path != to.Path && r.current.Name != Login {
		r.history = append(r.history, r.current)
	}
	r.current = to
	return to, d
}
