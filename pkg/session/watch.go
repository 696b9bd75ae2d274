package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"tableflip.dev/daybook/pkg/logging"
)

// Event reports that the stored session may have changed. Key is the site
// key that was touched, or empty when the change could not be attributed.
type Event struct {
	Key string
}

// Watch streams change events for the jar's directory until ctx is
// cancelled. Callers should drain the channel; events are dropped rather
// than block the watcher. Pair each event with Reload to learn whether the
// change came from another process.
func (j *Jar) Watch(ctx context.Context, log logging.Logger) (<-chan Event, error) {
	if log == nil {
		log = logging.Discard()
	}
	base := j.BasePath()
	if err := os.MkdirAll(base, 0o700); err != nil {
		return nil, fmt.Errorf("session: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("session: create watcher: %w", err)
	}
	if err := watcher.Add(base); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("session: watch %s: %w", base, err)
	}

	events := make(chan Event, 16)

	go func() {
		var mu sync.Mutex
		closed := false
		defer func() {
			mu.Lock()
			closed = true
			close(events)
			mu.Unlock()
		}()
		defer func() {
			if err := watcher.Close(); err != nil {
				log.Warn(ctx, "session watcher close", "err", err)
			}
		}()

		// A throttled flush can race shutdown; never send once closed.
		send := func(ev Event) {
			mu.Lock()
			defer mu.Unlock()
			if closed {
				return
			}
			select {
			case events <- ev:
			default:
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Debug(ctx, "session watcher error", "err", err)
				throttle.Enqueue(Event{}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				throttle.Enqueue(Event{Key: keyForPath(base, evt.Name)}, send)
			}
		}
	}()

	return events, nil
}

func keyForPath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." || filepath.Dir(rel) != "." {
		return ""
	}
	return rel
}

// eventThrottle coalesces bursts of filesystem activity into one event per
// key per delay window.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	t.pending[ev.Key] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	for key := range pending {
		send(Event{Key: key})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
