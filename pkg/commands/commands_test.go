package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/mockserver"
	"tableflip.dev/daybook/pkg/native"
)

type harness struct {
	t       *testing.T
	srv     *mockserver.Server
	base    string
	session string

	mu     sync.Mutex
	opened []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("DAYBOOK_HANDOFF_TIMEOUT", "1ms")
	t.Setenv("DAYBOOK_CONFIG_PATH", t.TempDir())

	srv := mockserver.New()
	srv.AddUser("alice", "secret1")
	h := &harness{
		t:       t,
		srv:     srv,
		base:    mockserver.Start(t, srv),
		session: t.TempDir(),
	}
	extra = []app.Option{app.WithOpener(native.OpenerFunc(func(url string) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.opened = append(h.opened, url)
		return nil
	}))}
	t.Cleanup(func() { extra = nil })
	return h
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--server", h.base, "--session-path", h.session, "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) login() {
	h.t.Helper()
	out, err := h.run("login", "-u", "alice", "-p", "secret1")
	require.NoError(h.t, err)
	require.Contains(h.t, out, "Signed in as alice")
}

func TestLoginPersistsSession(t *testing.T) {
	h := newHarness(t)
	h.srv.Seed("alice", entry.JournalEntry{Title: "first", Content: "body", Date: entry.MustDate("2024-01-15")})

	_, err := h.run("list")
	require.ErrorIs(t, err, options.ErrNotSignedIn)

	h.login()

	out, err := h.run("list", "--json")
	require.NoError(t, err)
	var page struct {
		Entries []struct {
			Title string `json:"title"`
		} `json:"entries"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Equal(t, 1, page.Total)
	require.Equal(t, "first", page.Entries[0].Title)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("login", "-u", "alice", "-p", "wrongpass")
	require.EqualError(t, err, "Invalid username or password")

	_, err = h.run("login", "-u", "alice", "-p", "short")
	require.EqualError(t, err, "Password must be at least 6 characters")
}

func TestAddSendsExactFields(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("add", "--title", "测试日志标题", "--content", "这是测试日志内容", "--on", "2024-01-15")
	require.NoError(t, err)
	require.Contains(t, out, "Entry created")
	require.Contains(t, out, "测试日志标题")

	reqs := h.srv.Requests()
	last := reqs[len(reqs)-1]
	require.Equal(t, "POST", last.Method)
	require.JSONEq(t, `{"title":"测试日志标题","content":"这是测试日志内容","date":"2024-01-15"}`, string(last.Body))

	out, err = h.run("list", "--on", "2024-1-15")
	require.NoError(t, err)
	require.Contains(t, out, "测试日志标题")
}

func TestAddUsesArgumentsAsContent(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, err := h.run("add", "walked", "to", "the", "lake", "--on", "2024-01-15")
	require.NoError(t, err)

	e, ok := h.srv.Entry(1)
	require.True(t, ok)
	require.Equal(t, "walked to the lake", e.Content)
}

func TestAddValidatesLocally(t *testing.T) {
	h := newHarness(t)
	h.login()
	before := len(h.srv.Requests())

	_, err := h.run("add", "--on", "2024-01-15")
	require.ErrorIs(t, err, entry.ErrEmptyDraft)

	_, err = h.run("add", "text", "--on", "15.01.2024")
	require.Error(t, err)

	require.Len(t, h.srv.Requests(), before)
}

func TestListEmptyDay(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("list", "--on", "2024-01-15")
	require.NoError(t, err)
	require.Contains(t, out, "No entries for 2024-01-15")

	reqs := h.srv.Requests()
	require.Contains(t, reqs[len(reqs)-1].Query, "date=2024-01-15")
}

func TestEditKeepsOmittedFields(t *testing.T) {
	h := newHarness(t)
	h.login()
	e := h.srv.Seed("alice", entry.JournalEntry{Title: "before", Content: "body", Date: entry.MustDate("2024-01-15")})

	out, err := h.run("edit", "1", "--title", "after")
	require.NoError(t, err)
	require.Contains(t, out, "Entry updated")

	got, ok := h.srv.Entry(e.ID)
	require.True(t, ok)
	require.Equal(t, "after", got.Title)
	require.Equal(t, "body", got.Content)
	require.Equal(t, "2024-01-15", got.Date.String())
}

func TestShowAndDelete(t *testing.T) {
	h := newHarness(t)
	h.login()
	e := h.srv.Seed("alice", entry.JournalEntry{Title: "gone soon", Content: "body", Date: entry.MustDate("2024-01-15")})

	out, err := h.run("show", "1")
	require.NoError(t, err)
	require.Contains(t, out, "gone soon")
	require.Contains(t, out, "January 15, 2024")

	out, err = h.run("delete", "1")
	require.NoError(t, err)
	require.Contains(t, out, `Deleted #1 "gone soon"`)
	require.Contains(t, out, "No entries for 2024-01-15")

	_, ok := h.srv.Entry(e.ID)
	require.False(t, ok)

	_, err = h.run("show", "1")
	require.EqualError(t, err, "Journal entry not found")

	_, err = h.run("show", "abc")
	require.Error(t, err)
}

func TestSyncAllAndSome(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.srv.Seed("alice", entry.JournalEntry{Title: "a", Date: entry.MustDate("2024-01-15")})
	bad := h.srv.Seed("alice", entry.JournalEntry{Title: "b", Date: entry.MustDate("2024-01-14")})
	h.srv.FailSync(bad.ID)

	out, err := h.run("sync", "--all")
	require.NoError(t, err)
	require.Contains(t, out, "Sync completed: 1 succeeded, 1 failed")

	out, err = h.run("sync", "1", "2")
	require.Error(t, err)
	require.Contains(t, out, "#1:")
	require.Contains(t, out, "#2:")

	_, err = h.run("sync")
	require.Error(t, err)

	_, err = h.run("sync", "1", "--all")
	require.Error(t, err)
}

func TestExportPrintsLink(t *testing.T) {
	h := newHarness(t)
	h.login()
	for i := 0; i < 3; i++ {
		h.srv.Seed("alice", entry.JournalEntry{Title: "e", Content: "c", Date: entry.MustDate("2024-01-15")})
	}

	out, err := h.run("export", "1", "2", "3")
	require.NoError(t, err)
	require.Contains(t, out, "shortcuts://run-shortcut?name=AddToNotes")

	reqs := h.srv.Requests()
	last := reqs[len(reqs)-1]
	require.True(t, strings.HasSuffix(last.Path, "/journal/entries/batch-export"))
	require.Equal(t, `{"entry_ids":[1,2,3]}`, string(last.Body))
	require.Empty(t, h.opened)

	out, err = h.run("export", "2", "--open")
	require.NoError(t, err)
	require.Len(t, h.opened, 1)
	require.True(t, strings.HasPrefix(h.opened[0], "shortcuts://"))
	require.Contains(t, out, "Open Notes to finish the export")
}

func TestOpenCalendar(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("open", "calendar", "2024-1-15")
	require.NoError(t, err)
	_, err = h.run("open", "notes")
	require.NoError(t, err)

	require.Equal(t, []string{"calshow://20240115", "mobilenotes://"}, h.opened)
}

func TestStatusAndLogout(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("status", "--json")
	require.NoError(t, err)
	require.Contains(t, out, `"authenticated": true`)
	require.Contains(t, out, `"username": "alice"`)

	out, err = h.run("logout")
	require.NoError(t, err)
	require.Contains(t, out, "Signed out")

	out, err = h.run("status", "--json")
	require.NoError(t, err)
	require.Contains(t, out, `"authenticated": false`)
}

func TestMonthMarksDays(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.srv.Seed("alice", entry.JournalEntry{Title: "jan", Date: entry.MustDate("2024-01-15")})
	h.srv.Seed("alice", entry.JournalEntry{Title: "feb", Date: entry.MustDate("2024-02-01")})

	out, err := h.run("month", "--on", "2024-1-1", "--day")
	require.NoError(t, err)
	require.Contains(t, out, "January 2024")
	require.Contains(t, out, "Su Mo Tu We Th Fr Sa")
	require.Contains(t, out, "No entries for 2024-01-01")
}

func TestVersionAndKey(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("version", "--short")
	require.NoError(t, err)
	require.Contains(t, out, "dev")

	out, err = h.run("key")
	require.NoError(t, err)
	require.Contains(t, out, "Meaning")
}
