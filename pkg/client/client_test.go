package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	paths []string
}

func (r *recordingNavigator) Navigate(path string) {
	r.paths = append(r.paths, path)
}

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestRequestSetsJSONHeadersAndBody(t *testing.T) {
	var gotType, gotAccept, gotBody, gotMethod string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	c := New(srv.URL)
	var out struct{ OK bool }
	err := c.Do(context.Background(), http.MethodPost, "/things", map[string]int{"n": 1}, &out)
	require.NoError(t, err)
	require.True(t, out.OK)
	require.Equal(t, "application/json", gotType)
	require.Equal(t, "application/json", gotAccept)
	require.Equal(t, http.MethodPost, gotMethod)
	require.JSONEq(t, `{"n":1}`, gotBody)
}

func TestRequestHeaderOverride(t *testing.T) {
	var gotType string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	})

	c := New(srv.URL)
	_, err := c.Request(context.Background(), "/x", Options{Header: http.Header{"Content-Type": {"text/plain"}}})
	require.NoError(t, err)
	require.Equal(t, "text/plain", gotType)
}

func TestNoContentReturnsNil(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c := New(srv.URL)
	raw, err := c.Request(context.Background(), "/journal/entries/1", Options{Method: http.MethodDelete})
	require.NoError(t, err)
	require.Nil(t, raw)

	out := struct{ ID int }{ID: 42}
	require.NoError(t, c.Do(context.Background(), http.MethodDelete, "/journal/entries/1", nil, &out))
	require.Equal(t, 42, out.ID, "204 must not touch the output value")
}

func TestErrorBodyMessage(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Journal entry not found"}`))
	})

	_, err := New(srv.URL).Request(context.Background(), "/journal/entries/9", Options{})
	require.Error(t, err)
	require.Equal(t, "Journal entry not found", err.Error())
	require.Equal(t, http.StatusNotFound, StatusOf(err))
	require.False(t, errors.Is(err, ErrUnauthenticated))
}

func TestErrorFallbackMessage(t *testing.T) {
	bodies := []string{"", "<html>oops</html>", `{"message":"no error field"}`, `{"error":""}`, `{"error":null}`}
	for _, body := range bodies {
		body := body
		t.Run(body, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(body))
			})
			_, err := New(srv.URL).Request(context.Background(), "/calendar/sync", Options{Method: http.MethodPost})
			require.Error(t, err)
			require.Equal(t, FallbackMessage, err.Error())
		})
	}
}

func TestPerRequestFallback(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := New(srv.URL).Request(context.Background(), "/auth/logout", Options{Method: http.MethodPost, Fallback: "Logout failed"})
	require.EqualError(t, err, "Logout failed")
}

func TestUnauthorizedRedirectsOnce(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
	})

	nav := &recordingNavigator{}
	c := New(srv.URL, WithNavigator(nav))
	_, err := c.Request(context.Background(), "/journal/entries", Options{})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnauthenticated))
	require.Equal(t, []string{LoginPath}, nav.paths)
	require.Equal(t, "", Message(err))
}

func TestUnauthorizedOnAuthChecksDoesNotRedirect(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid username or password"}`))
	})

	nav := &recordingNavigator{}
	c := New(srv.URL, WithNavigator(nav))
	for _, path := range []string{"/auth/login", "/auth/status", "/auth/status?probe=1"} {
		_, err := c.Request(context.Background(), path, Options{Method: http.MethodPost})
		require.Error(t, err)
		require.False(t, errors.Is(err, ErrUnauthenticated), path)
	}
	require.Empty(t, nav.paths)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).Request(context.Background(), "/auth/status", Options{})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTransport))
	var te *TransportError
	require.True(t, errors.As(err, &te))
	require.True(t, strings.HasPrefix(Message(err), "Network error"))
}

func TestCookiesAreSentBack(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			_, _ = w.Write([]byte(`{}`))
		default:
			c, err := r.Cookie("session")
			if err != nil || c.Value != "abc" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"authenticated":true}`))
		}
	})

	c := New(srv.URL)
	require.NoError(t, c.Do(context.Background(), http.MethodPost, "/auth/login", nil, nil))
	var st struct{ Authenticated bool }
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/journal/entries", nil, &st))
	require.True(t, st.Authenticated)
}

func TestQueryIsAppended(t *testing.T) {
	var got string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	})
	_, err := New(srv.URL).Request(context.Background(), "/journal/entries", Options{Query: map[string][]string{"date": {"2024-01-15"}}})
	require.NoError(t, err)
	require.Equal(t, "date=2024-01-15", got)
}
