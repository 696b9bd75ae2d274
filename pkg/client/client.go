// Package client is the single request path to the journal backend. Every
// call carries JSON headers and the session cookie jar, and every failure is
// decoded the same way. A 401 outside of login and status checks sends the
// user to the login view from here and nowhere else.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"tableflip.dev/daybook/pkg/logging"
)

const (
	// LoginPath is where unauthenticated users are sent.
	LoginPath = "/login"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 15 * time.Second

	maxErrorBody = 1 << 20
)

// Navigator changes the current view. The TUI and CLI provide their own.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Options describes one request. Header values override the defaults.
type Options struct {
	Method string
	Header http.Header
	Query  url.Values
	Body   any

	// Fallback replaces FallbackMessage for this request.
	Fallback string
}

// Client talks JSON to the backend rooted at a base URL such as
// http://127.0.0.1:5001/api.
type Client struct {
	base string
	hc   *http.Client
	nav  Navigator
	log  logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying client. A client without a jar gets
// a fresh in-memory one so credentials are always included.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithJar sets the cookie jar holding the session.
func WithJar(jar http.CookieJar) Option {
	return func(c *Client) { c.hc.Jar = jar }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

// WithNavigator installs the handler for the 401 redirect.
func WithNavigator(nav Navigator) Option {
	return func(c *Client) { c.nav = nav }
}

func WithLogger(log logging.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Jar: jar, Timeout: DefaultTimeout},
		log:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc.Jar == nil {
		j, _ := cookiejar.New(nil)
		c.hc.Jar = j
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.base }

// Jar exposes the session cookie jar.
func (c *Client) Jar() http.CookieJar { return c.hc.Jar }

// Do sends a request and decodes the response into out when both exist.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.Request(ctx, path, Options{Method: method, Body: body})
	if err != nil {
		return err
	}
	return decode(path, raw, out)
}

// Request sends one request and returns the raw JSON body. A 204 response,
// or a 2xx response without a body, returns nil.
func (c *Client) Request(ctx context.Context, path string, o Options) (json.RawMessage, error) {
	method := o.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.base + path
	if len(o.Query) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		target += sep + o.Query.Encode()
	}

	var body io.Reader
	if o.Body != nil {
		b, err := json.Marshal(o.Body)
		if err != nil {
			return nil, fmt.Errorf("client: encode %s body: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, vs := range o.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "err", err)
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()
	c.log.Debug(ctx, "request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.failure(ctx, path, resp, o.Fallback)
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read " + path, Err: err}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	return json.RawMessage(b), nil
}

func (c *Client) failure(ctx context.Context, path string, resp *http.Response, fallback string) error {
	if fallback == "" {
		fallback = FallbackMessage
	}
	herr := &HTTPError{Status: resp.StatusCode, Message: errorMessage(resp.Body, fallback)}

	if resp.StatusCode == http.StatusUnauthorized && !isAuthCheck(path) {
		herr.redirected = true
		c.log.Info(ctx, "session rejected, redirecting to login", "path", path)
		if c.nav != nil {
			c.nav.Navigate(LoginPath)
		}
	}
	return herr
}

// errorMessage reads {"error": "..."} from body.
func errorMessage(body io.Reader, fallback string) string {
	b, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return fallback
	}
	var payload struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return fallback
	}
	if payload.Error == nil || strings.TrimSpace(*payload.Error) == "" {
		return fallback
	}
	return *payload.Error
}

// isAuthCheck matches the calls that must never trigger the login redirect.
func isAuthCheck(path string) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.HasSuffix(path, "/auth/login") || strings.HasSuffix(path, "/auth/status")
}

func decode(path string, raw json.RawMessage, out any) error {
	if raw == nil || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

// Requester is the part of Client the domain services depend on.
type Requester interface {
	Request(ctx context.Context, path string, o Options) (json.RawMessage, error)
}

// Call runs a request through r and decodes the body into out.
func Call(ctx context.Context, r Requester, path string, o Options, out any) error {
	raw, err := r.Request(ctx, path, o)
	if err != nil {
		return err
	}
	return decode(path, raw, out)
}
