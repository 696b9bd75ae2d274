package mockserver

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// Start runs s on a loopback listener for the duration of the test and
// returns the API base URL.
func Start(t testing.TB, s *Server) string {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv.URL + Prefix
}

// Authorize opens a session for username and stores its cookie in jar as if
// the user had logged in against base.
func (s *Server) Authorize(jar http.CookieJar, base, username string) {
	s.mu.Lock()
	a, ok := s.accounts[username]
	if !ok {
		s.mu.Unlock()
		panic("mockserver: unknown user " + username)
	}
	sid := s.newSession(a.user.ID)
	s.mu.Unlock()

	u, err := url.Parse(base)
	if err != nil {
		panic(err)
	}
	jar.SetCookies(u, []*http.Cookie{{Name: SessionCookie, Value: sid, Path: "/"}})
}
