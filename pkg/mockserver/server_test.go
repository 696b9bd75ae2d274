package mockserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tableflip.dev/daybook/pkg/entry"
)

func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func post(t *testing.T, hc *http.Client, url string, body any) *http.Response {
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := hc.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLoginValidation(t *testing.T) {
	s := New()
	s.AddUser("alice", "secret1")
	base := Start(t, s)
	hc := newClient(t)

	cases := map[string]struct {
		body   map[string]string
		status int
	}{
		"missing password": {map[string]string{"username": "alice"}, http.StatusBadRequest},
		"short password":   {map[string]string{"username": "alice", "password": "abc"}, http.StatusBadRequest},
		"wrong password":   {map[string]string{"username": "alice", "password": "wrong-one"}, http.StatusUnauthorized},
		"ok":               {map[string]string{"username": "alice", "password": "secret1"}, http.StatusOK},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := post(t, hc, base+"/auth/login", tc.body)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	s := New()
	base := Start(t, s)
	resp, err := http.Get(base + "/journal/entries")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Authentication required", body["error"])
}

func TestListOrdersAndPages(t *testing.T) {
	s := New()
	s.AddUser("alice", "secret1")
	s.Seed("alice", entry.JournalEntry{Title: "old", Date: entry.MustDate("2024-01-01")})
	s.Seed("alice", entry.JournalEntry{Title: "new", Date: entry.MustDate("2024-02-01")})
	s.Seed("alice", entry.JournalEntry{Title: "mid", Date: entry.MustDate("2024-01-15")})
	base := Start(t, s)
	hc := newClient(t)
	s.Authorize(hc.Jar, base, "alice")

	resp, err := hc.Get(base + "/journal/entries?limit=2&offset=1")
	require.NoError(t, err)
	defer resp.Body.Close()

	var page entry.Page
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Equal(t, 3, page.Total)
	require.Len(t, page.Entries, 2)
	require.Equal(t, "mid", page.Entries[0].Title)
	require.Equal(t, "old", page.Entries[1].Title)
}

func TestEntriesAreScopedToOwner(t *testing.T) {
	s := New()
	s.AddUser("alice", "secret1")
	s.AddUser("bob", "secret2")
	e := s.Seed("alice", entry.JournalEntry{Title: "mine", Date: entry.MustDate("2024-01-01")})
	base := Start(t, s)
	hc := newClient(t)
	s.Authorize(hc.Jar, base, "bob")

	resp, err := hc.Get(base + "/journal/entries/" + itoa(e.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSyncAllCounts(t *testing.T) {
	s := New()
	s.AddUser("alice", "secret1")
	s.Seed("alice", entry.JournalEntry{Title: "a", Date: entry.MustDate("2024-01-01")})
	bad := s.Seed("alice", entry.JournalEntry{Title: "b", Date: entry.MustDate("2024-01-02")})
	s.Seed("alice", entry.JournalEntry{Title: "c", Date: entry.MustDate("2024-01-03"), SyncStatus: entry.Synced})
	s.FailSync(bad.ID)
	base := Start(t, s)
	hc := newClient(t)
	s.Authorize(hc.Jar, base, "alice")

	resp := post(t, hc, base+"/calendar/sync", map[string]any{})
	var res entry.SyncResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.Equal(t, entry.SyncResult{Message: "Sync completed", Success: 1, Failed: 1, Skipped: 1}, res)

	got, ok := s.Entry(bad.ID)
	require.True(t, ok)
	require.Equal(t, entry.SyncError, got.SyncStatus)
}

func TestNoteText(t *testing.T) {
	got := NoteText([]entry.JournalEntry{
		{Title: "A", Content: "one", Date: entry.MustDate("2024-01-01")},
		{Title: "B", Content: "two", Date: entry.MustDate("2024-01-02")},
	})
	require.Equal(t, "A\n\none\n\nDate: 2024-01-01\n\n---\n\nB\n\ntwo\n\nDate: 2024-01-02", got)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
