// Package session keeps the backend session cookie on disk so it survives
// between invocations, and reports when another process changes it.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/daybook/pkg/logging"
)

// stored is the on-disk form of one cookie.
type stored struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
}

// site is everything saved for one origin.
type site struct {
	URL     string   `json:"url"`
	Cookies []stored `json:"cookies"`
}

// Jar is an http.CookieJar backed by an in-memory jar that is written
// through to a diskv store.
type Jar struct {
	d   *diskv.Diskv
	now func() time.Time
	log logging.Logger

	mu   sync.Mutex
	mem  *cookiejar.Jar
	sums map[string][32]byte
}

// Option configures a Jar.
type Option func(*Jar)

// WithLogger reports cookies that could not be read or saved.
func WithLogger(log logging.Logger) Option {
	return func(j *Jar) { j.log = log }
}

// Open loads the jar stored under basePath.
func Open(basePath string, opts ...Option) (*Jar, error) {
	if basePath == "" {
		return nil, errors.New("session: base path is required")
	}
	j := &Jar{
		// No cache: other processes write the same files.
		d: diskv.New(diskv.Options{
			BasePath:  basePath,
			Transform: func(string) []string { return []string{} },
			FilePerm:  0o600,
			PathPerm:  0o700,
		}),
		now: time.Now,
		log: logging.Discard(),
	}
	for _, opt := range opts {
		opt(j)
	}
	if _, err := j.Reload(); err != nil {
		return nil, err
	}
	return j, nil
}

// BasePath is the directory holding the store.
func (j *Jar) BasePath() string { return j.d.BasePath }

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.mem.Cookies(u)
}

// SetCookies implements http.CookieJar and persists the origin's cookies.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.mem.SetCookies(u, cookies)

	key := siteKey(u)
	s := j.readSite(key)
	s.URL = u.Scheme + "://" + u.Host
	for _, c := range cookies {
		s.Cookies = merge(s.Cookies, c, j.now())
	}
	j.writeSite(key, s)
}

// Clear forgets every saved cookie.
func (j *Jar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for key := range j.d.Keys(nil) {
		if err := j.d.Erase(key); err != nil {
			return fmt.Errorf("session: clear %s: %w", key, err)
		}
	}
	j.mem, _ = cookiejar.New(nil)
	j.sums = map[string][32]byte{}
	return nil
}

// Reload rebuilds the in-memory jar from disk and reports whether anything
// changed since the jar last read or wrote it.
func (j *Jar) Reload() (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	mem, err := cookiejar.New(nil)
	if err != nil {
		return false, fmt.Errorf("session: new jar: %w", err)
	}
	sums := map[string][32]byte{}
	now := j.now()
	for key := range j.d.Keys(nil) {
		raw, err := j.d.Read(key)
		if err != nil {
			j.log.Warn(context.Background(), "read session", "key", key, "err", err)
			continue
		}
		sums[key] = sha256.Sum256(raw)
		var s site
		if err := json.Unmarshal(raw, &s); err != nil {
			j.log.Warn(context.Background(), "decode session", "key", key, "err", err)
			continue
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			continue
		}
		var live []*http.Cookie
		for _, c := range s.Cookies {
			if !c.Expires.IsZero() && !c.Expires.After(now) {
				continue
			}
			live = append(live, &http.Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Path:     c.Path,
				Domain:   c.Domain,
				Expires:  c.Expires,
				Secure:   c.Secure,
				HttpOnly: c.HttpOnly,
			})
		}
		mem.SetCookies(u, live)
	}

	changed := j.mem == nil || !sameSums(j.sums, sums)
	j.mem, j.sums = mem, sums
	return changed, nil
}

func (j *Jar) readSite(key string) site {
	var s site
	if !j.d.Has(key) {
		return s
	}
	raw, err := j.d.Read(key)
	if err != nil {
		j.log.Warn(context.Background(), "read session", "key", key, "err", err)
		return s
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		j.log.Warn(context.Background(), "decode session", "key", key, "err", err)
		return site{}
	}
	return s
}

func (j *Jar) writeSite(key string, s site) {
	ctx := context.Background()
	if len(s.Cookies) == 0 {
		if j.d.Has(key) {
			if err := j.d.Erase(key); err != nil {
				j.log.Warn(ctx, "erase session", "key", key, "err", err)
			}
		}
		delete(j.sums, key)
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		j.log.Warn(ctx, "encode session", "key", key, "err", err)
		return
	}
	if err := j.d.Write(key, raw); err != nil {
		j.log.Warn(ctx, "save session", "key", key, "err", err)
		return
	}
	j.sums[key] = sha256.Sum256(raw)
}

// merge replaces c in list by name and path, dropping it when it expires.
func merge(list []stored, c *http.Cookie, now time.Time) []stored {
	path := c.Path
	if path == "" {
		path = "/"
	}
	out := list[:0:0]
	for _, s := range list {
		if s.Name == c.Name && s.Path == path {
			continue
		}
		out = append(out, s)
	}

	expires := c.Expires
	switch {
	case c.MaxAge < 0:
		return out
	case c.MaxAge > 0:
		expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	}
	if !expires.IsZero() && !expires.After(now) {
		return out
	}
	return append(out, stored{
		Name:     c.Name,
		Value:    c.Value,
		Path:     path,
		Domain:   c.Domain,
		Expires:  expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	})
}

// siteKey flattens an origin into a diskv key.
func siteKey(u *url.URL) string {
	r := strings.NewReplacer(":", "_", "/", "_", "[", "_", "]", "_")
	return r.Replace(strings.ToLower(u.Scheme + "_" + u.Host))
}

func sameSums(a, b map[string][32]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || v != w {
			return false
		}
	}
	return true
}
