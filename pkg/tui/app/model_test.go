package teaui

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/ansi"
	"github.com/stretchr/testify/require"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/config"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/guard"
	"tableflip.dev/daybook/pkg/listview"
	"tableflip.dev/daybook/pkg/mockserver"
)

var testNow = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.Local)

type openRecorder struct {
	mu   sync.Mutex
	urls []string
}

func (o *openRecorder) Open(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls = append(o.urls, url)
	return nil
}

func (o *openRecorder) opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.urls...)
}

type harness struct {
	m         *Model
	srv       *mockserver.Server
	svc       *app.Service
	opener    *openRecorder
	redirects Redirects
}

func newHarness(t *testing.T, signedIn bool, handoff time.Duration) *harness {
	t.Helper()
	srv := mockserver.New()
	srv.AddUser("alice", "secret1")
	base := mockserver.Start(t, srv)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	if signedIn {
		srv.Authorize(jar, base, "alice")
	}

	h := &harness{srv: srv, opener: &openRecorder{}, redirects: NewRedirects()}
	cfg := &config.Config{
		Server:         base,
		Timeout:        5 * time.Second,
		HandoffTimeout: handoff,
		PageSize:       50,
	}
	h.svc, err = app.New(cfg, app.WithJar(jar), app.WithOpener(h.opener), app.WithNavigator(h.redirects))
	require.NoError(t, err)
	h.m = New(h.svc, WithRedirects(h.redirects), WithClock(func() time.Time { return testNow }))
	h.m.termWidth, h.m.termHeight = 100, 40
	h.m.applySizes()
	return h
}

// settle runs cmd and every command its messages produce, feeding results
// back into m, until nothing more arrives for a short while. Commands that
// wait on timers or channels are left behind.
func settle(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	msgs := make(chan tea.Msg, 64)
	done := make(chan struct{})
	defer close(done)

	pending := 0
	launch := func(c tea.Cmd) {
		if c == nil {
			return
		}
		pending++
		go func() {
			msg := c()
			select {
			case msgs <- msg:
			case <-done:
			}
		}()
	}

	launch(cmd)
	for pending > 0 {
		select {
		case msg := <-msgs:
			pending--
			switch msg := msg.(type) {
			case nil:
			case tea.BatchMsg:
				for _, c := range msg {
					launch(c)
				}
			default:
				_, next := m.Update(msg)
				launch(next)
			}
		case <-time.After(300 * time.Millisecond):
			return
		}
	}
}

func keyMsg(k string) tea.KeyPressMsg {
	switch k {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	}
	if strings.HasPrefix(k, "ctrl+") {
		return tea.KeyPressMsg{Code: rune(k[len(k)-1]), Mod: tea.ModCtrl}
	}
	r := []rune(k)[0]
	return tea.KeyPressMsg{Code: r, Text: k}
}

func (h *harness) press(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := h.m.Update(keyMsg(k))
		settle(t, h.m, cmd)
	}
}

func (h *harness) goTo(t *testing.T, path string) {
	t.Helper()
	settle(t, h.m, h.m.navigate(path))
}

func (h *harness) view() string {
	return stripANSI(h.m.View())
}

func stripANSI(s string) string {
	var b strings.Builder
	inSeq := false
	for _, r := range s {
		if r == ansi.Marker {
			inSeq = true
			continue
		}
		if inSeq {
			if ansi.IsTerminator(r) {
				inSeq = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestStartWithoutSessionShowsLogin(t *testing.T) {
	h := newHarness(t, false, 10*time.Millisecond)
	h.goTo(t, "/")

	require.Equal(t, viewLogin, h.m.view)
	require.Equal(t, guard.Login, h.m.router.Current().Name)
	require.Contains(t, h.view(), "Sign in")
}

func TestLoginLandsOnHome(t *testing.T) {
	h := newHarness(t, false, 10*time.Millisecond)
	h.srv.Seed("alice", entry.JournalEntry{Title: "First", Content: "hello", Date: entry.MustDate("2024-01-14")})
	h.goTo(t, "/")

	h.m.login.username.SetValue("alice")
	h.m.login.password.SetValue("secret1")
	h.m.login.focused = 1
	h.press(t, "enter")

	require.Equal(t, viewHome, h.m.view)
	require.Len(t, h.m.home.Entries, 1)
	require.Contains(t, h.view(), "First")
	require.Equal(t, "alice", h.m.settings.user.Username)
}

func TestLoginValidationStaysLocal(t *testing.T) {
	h := newHarness(t, false, 10*time.Millisecond)
	h.goTo(t, "/")

	h.m.login.username.SetValue("alice")
	h.m.login.password.SetValue("abc")
	h.m.login.focused = 1
	h.press(t, "enter")

	require.Equal(t, "Password must be at least 6 characters", h.m.login.err)
	for _, r := range h.srv.Requests() {
		require.False(t, strings.HasSuffix(r.Path, "/auth/login"), "login must not be sent")
	}
}

func TestBadCredentialsShownInline(t *testing.T) {
	h := newHarness(t, false, 10*time.Millisecond)
	h.goTo(t, "/")

	h.m.login.username.SetValue("alice")
	h.m.login.password.SetValue("wrong-password")
	h.m.login.focused = 1
	h.press(t, "enter")

	require.Equal(t, viewLogin, h.m.view)
	require.Equal(t, "Invalid username or password", h.m.login.err)
	require.False(t, h.m.login.busy)
	require.Contains(t, h.view(), "Invalid username or password")
}

func TestBatchToggleClearsSelection(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	h.srv.Seed("alice", entry.JournalEntry{Title: "one", Date: entry.MustDate("2024-01-15")})
	h.srv.Seed("alice", entry.JournalEntry{Title: "two", Date: entry.MustDate("2024-01-14")})
	h.goTo(t, "/")
	require.Len(t, h.m.home.Entries, 2)

	h.press(t, "b", "space")
	require.Len(t, h.m.home.SelectedIDs(), 1)
	require.Contains(t, h.view(), "[x]")

	h.press(t, "b", "b")
	require.True(t, h.m.home.Batch)
	require.Empty(t, h.m.home.SelectedIDs())
}

func TestBatchExportOpensReturnedURL(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	for i := 0; i < 3; i++ {
		h.srv.Seed("alice", entry.JournalEntry{Title: "e", Content: "c", Date: entry.MustDate("2024-01-15")})
	}
	h.goTo(t, "/")

	h.press(t, "e")
	require.Len(t, h.opener.opened(), 1, "outside batch mode e exports the entry under the cursor")

	h.press(t, "b", "e")
	require.Equal(t, listview.MsgNoSelection, h.m.alert)

	h.press(t, "a", "e")
	urls := h.opener.opened()
	require.Len(t, urls, 2)
	require.True(t, strings.HasPrefix(urls[1], "shortcuts://run-shortcut?name=AddToNotes"), urls[1])
	// Nothing blurs the terminal, so the handoff times out.
	require.Equal(t, listview.MsgNoHandoff, h.m.alert)
	require.Empty(t, h.m.home.SelectedIDs())
	require.False(t, h.m.home.Busy())
}

func TestDateTabShowsDateEmptyText(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	h.srv.Seed("alice", entry.JournalEntry{Title: "old", Date: entry.MustDate("2024-01-10")})
	h.goTo(t, "/")

	h.press(t, "3")
	require.Equal(t, listview.TabDate, h.m.home.Tab)
	require.Contains(t, h.view(), "No entries for 2024-01-15")

	h.press(t, "left")
	require.Equal(t, entry.MustDate("2024-01-14"), h.m.home.Query.Date)
	last := h.srv.Requests()[len(h.srv.Requests())-1]
	require.Contains(t, last.Query, "date=2024-01-14")
}

func TestSingleSelectionUsesBatchExport(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	h.srv.Seed("alice", entry.JournalEntry{Title: "one", Content: "c", Date: entry.MustDate("2024-01-15")})
	h.srv.Seed("alice", entry.JournalEntry{Title: "two", Content: "c", Date: entry.MustDate("2024-01-15")})
	h.goTo(t, "/")

	h.press(t, "b", "space", "e")

	var exports []mockserver.Request
	for _, r := range h.srv.Requests() {
		if strings.Contains(r.Path, "export") {
			exports = append(exports, r)
		}
	}
	require.Len(t, exports, 1)
	require.True(t, strings.HasSuffix(exports[0].Path, "/journal/entries/batch-export"), exports[0].Path)
	require.JSONEq(t, fmt.Sprintf(`{"entry_ids":[%d]}`, h.m.home.Entries[0].ID), string(exports[0].Body))
}

func TestDatePickerJumpsToTypedDay(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	h.srv.Seed("alice", entry.JournalEntry{Title: "new year", Date: entry.MustDate("2024-01-03")})
	h.goTo(t, "/")

	h.press(t, "g")
	require.Nil(t, h.m.picker, "g only opens the picker in the date tab")

	h.press(t, "3", "g")
	require.NotNil(t, h.m.picker)
	for _, r := range "2024-01-03" {
		h.press(t, string(r))
	}
	h.press(t, "enter")

	require.Nil(t, h.m.picker)
	require.Equal(t, entry.MustDate("2024-01-03"), h.m.home.Date)
	last := h.srv.Requests()[len(h.srv.Requests())-1]
	require.Contains(t, last.Query, "date=2024-01-03")
	require.Contains(t, h.view(), "new year")
}

func TestDatePickerRejectsBadInput(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	h.goTo(t, "/")
	h.press(t, "3", "g", "1", "5", "enter")

	require.NotNil(t, h.m.picker)
	require.Equal(t, "Date must be YYYY-MM-DD", h.m.alert)
	require.Equal(t, entry.MustDate("2024-01-15"), h.m.home.Date)

	h.press(t, "esc")
	require.Nil(t, h.m.picker)
}

func TestExpiredSessionRedirectsToLogin(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	h.goTo(t, "/")
	require.Equal(t, viewHome, h.m.view)

	h.srv.Expire()
	h.press(t, "r")

	select {
	case path := <-h.redirects:
		require.Equal(t, guard.LoginPath, path)
		_, cmd := h.m.Update(redirectMsg{path: path})
		settle(t, h.m, cmd)
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a login redirect")
	}
	require.Equal(t, viewLogin, h.m.view)
	require.Empty(t, h.m.alert)
}

func TestCreateEntryGoesToNewEntry(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	h.goTo(t, "/")
	h.press(t, "n")
	require.Equal(t, viewDetail, h.m.view)
	require.Equal(t, "2024-01-15", h.m.detail.date.Value())

	h.m.detail.title.SetValue("测试日志标题")
	h.m.detail.content.SetValue("这是测试日志内容")
	h.press(t, "ctrl+s")

	require.Equal(t, viewDetail, h.m.view)
	require.NotZero(t, h.m.detail.id)
	require.Equal(t, guard.EntryPath(h.m.detail.id), h.m.route.Path)
	stored, ok := h.srv.Entry(h.m.detail.id)
	require.True(t, ok)
	require.Equal(t, "测试日志标题", stored.Title)
	require.Equal(t, "这是测试日志内容", stored.Content)
}

func TestSaveRejectsBadDate(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	h.goTo(t, guard.EntryPath(0))

	h.m.detail.title.SetValue("t")
	h.m.detail.date.SetValue("15/01/2024")
	h.press(t, "ctrl+s")

	require.Equal(t, ErrBadDate.Error(), h.m.detail.err)
	require.Empty(t, h.m.detail.busy)
}

func TestUpdateEntryReturnsHome(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	e := h.srv.Seed("alice", entry.JournalEntry{Title: "before", Date: entry.MustDate("2024-01-15")})
	h.goTo(t, "/")
	h.press(t, "enter")
	require.Equal(t, viewDetail, h.m.view)
	require.Equal(t, "before", h.m.detail.title.Value())

	h.m.detail.title.SetValue("after")
	h.press(t, "ctrl+s")

	require.Equal(t, viewHome, h.m.view)
	stored, _ := h.srv.Entry(e.ID)
	require.Equal(t, "after", stored.Title)
	require.Equal(t, "after", h.m.home.Entries[0].Title)
}

func TestDeleteAsksFirst(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	e := h.srv.Seed("alice", entry.JournalEntry{Title: "doomed", Date: entry.MustDate("2024-01-15")})
	h.goTo(t, guard.EntryPath(e.ID))

	h.press(t, "ctrl+d")
	require.True(t, h.m.detail.confirm)
	require.Contains(t, h.view(), "Delete this entry?")
	h.press(t, "n")
	_, ok := h.srv.Entry(e.ID)
	require.True(t, ok)

	h.press(t, "ctrl+d", "y")
	_, ok = h.srv.Entry(e.ID)
	require.False(t, ok)
	require.Equal(t, viewHome, h.m.view)
}

func TestMissingEntryShowsError(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	h.goTo(t, guard.EntryPath(99))

	require.Equal(t, viewDetail, h.m.view)
	require.Equal(t, "Entry not found", h.m.detail.err)
}

func TestSettingsSyncAllShowsSummaryThenClears(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	h.srv.Seed("alice", entry.JournalEntry{Title: "a", Date: entry.MustDate("2024-01-15")})
	h.srv.Seed("alice", entry.JournalEntry{Title: "b", Date: entry.MustDate("2024-01-14")})
	h.goTo(t, "/")
	h.press(t, ",")
	require.Equal(t, viewSettings, h.m.view)

	h.press(t, "s")
	require.Equal(t, "Sync completed: 2 succeeded, 0 failed", h.m.settings.status)
	require.Len(t, h.m.settings.events, 2)
	for _, e := range h.m.home.Entries {
		require.Equal(t, entry.Synced, e.SyncStatus, "home list refreshed after the sync")
	}

	_, _ = h.m.Update(clearStatusMsg{gen: h.m.statusGen - 1})
	require.NotEmpty(t, h.m.settings.status, "a stale timer leaves the newer status")
	_, _ = h.m.Update(clearStatusMsg{gen: h.m.statusGen})
	require.Empty(t, h.m.settings.status)
}

func TestLogoutReturnsToLogin(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	h.goTo(t, "/")
	h.press(t, "L")

	require.Equal(t, viewLogin, h.m.view)
	require.False(t, h.svc.Auth.Status(context.Background()).Authenticated)
	require.Empty(t, h.m.home.Entries)
}

func TestBlurCompletesHandoff(t *testing.T) {
	h := newHarness(t, true, 5*time.Second)

	got := make(chan bool, 1)
	go func() { got <- h.svc.Bridge.Open(context.Background(), "calshow://") }()
	require.Eventually(t, func() bool { return h.svc.Bridge.Waiting() == 1 }, time.Second, 5*time.Millisecond)

	h.m.Update(tea.BlurMsg{})
	select {
	case ok := <-got:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatalf("handoff did not resolve on blur")
	}
}

func TestHelpOverlayTogglesOnHome(t *testing.T) {
	h := newHarness(t, true, 10*time.Millisecond)
	h.goTo(t, "/")
	h.m.Update(tea.WindowSizeMsg{Width: 100, Height: 80})

	h.press(t, "?")
	require.NotNil(t, h.m.keys)
	require.Contains(t, h.view(), "Sync symbols")

	// Keys go to the overlay, not the list.
	h.press(t, "b")
	require.False(t, h.m.home.Batch)

	h.press(t, "esc")
	require.Nil(t, h.m.keys)
	require.NotContains(t, h.view(), "Sync symbols")
}
