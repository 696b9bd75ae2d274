// Package native hands URLs to other applications through OS URL schemes
// and guesses whether one actually opened.
//
// The guess is a race: a fixed timer says "no", losing focus says "yes".
// Both outcomes are advisory.
package native

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/browser"

	"tableflip.dev/daybook/pkg/logging"
)

// DefaultTimeout is how long to wait for focus loss after opening a URL.
const DefaultTimeout = 2 * time.Second

// Opener invokes a URL with the operating system.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// SystemOpener asks the desktop environment to open the URL.
var SystemOpener Opener = OpenerFunc(browser.OpenURL)

// Timer is the subset of time.Timer the race needs.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

type realTimer struct{ t *time.Timer }

func (r realTimer) C() <-chan time.Time { return r.t.C }
func (r realTimer) Stop() bool          { return r.t.Stop() }

func newRealTimer(d time.Duration) Timer {
	return realTimer{t: time.NewTimer(d)}
}

// Bridge opens URLs and waits for a focus-loss signal delivered by Blur.
type Bridge struct {
	opener   Opener
	timeout  time.Duration
	newTimer func(time.Duration) Timer
	log      logging.Logger

	mu      sync.Mutex
	next    uint64
	waiters map[uint64]chan struct{}
}

// Option configures a Bridge.
type Option func(*Bridge)

func WithOpener(o Opener) Option {
	return func(b *Bridge) { b.opener = o }
}

func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithTimerFunc replaces the timer source.
func WithTimerFunc(fn func(time.Duration) Timer) Option {
	return func(b *Bridge) { b.newTimer = fn }
}

func WithLogger(log logging.Logger) Option {
	return func(b *Bridge) { b.log = log }
}

func New(opts ...Option) *Bridge {
	b := &Bridge{
		opener:   SystemOpener,
		timeout:  DefaultTimeout,
		newTimer: newRealTimer,
		log:      logging.Discard(),
		waiters:  make(map[uint64]chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open invokes url and reports whether focus was lost before the timeout.
// A url without a scheme is never handed to the opener. Exactly one outcome is returned; the listener and the timer are released
// on every path.
func (b *Bridge) Open(ctx context.Context, url string) bool {
	if !Valid(url) {
		b.log.Warn(ctx, "refusing to open url", "url", url)
		return false
	}

	blurred, release := b.listen()
	defer release()

	if err := b.opener.Open(url); err != nil {
		b.log.Warn(ctx, "open url failed", "url", url, "err", err)
		return false
	}

	t := b.newTimer(b.timeout)
	defer t.Stop()

	select {
	case <-blurred:
		b.log.Debug(ctx, "native app took focus", "url", url)
		return true
	case <-t.C():
		b.log.Debug(ctx, "native app did not take focus", "url", url, "timeout", b.timeout)
		return false
	case <-ctx.Done():
		return false
	}
}

// Blur reports that this program lost focus. It wakes every pending Open.
func (b *Bridge) Blur() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.waiters {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Waiting returns the number of Open calls currently listening for Blur.
func (b *Bridge) Waiting() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.waiters)
}

func (b *Bridge) listen() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.next++
	id := b.next
	b.waiters[id] = ch
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.waiters, id)
		b.mu.Unlock()
	}
}
