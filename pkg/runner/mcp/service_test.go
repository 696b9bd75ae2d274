package mcp

import (
	"context"
	"encoding/json"
	"net/http/cookiejar"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/config"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/mockserver"
)

func newTestService(t *testing.T, signedIn bool) (*Service, *mockserver.Server) {
	t.Helper()
	srv := mockserver.New()
	srv.AddUser("alice", "secret1")
	base := mockserver.Start(t, srv)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	if signedIn {
		srv.Authorize(jar, base, "alice")
	}
	a, err := app.New(&config.Config{Server: base, Timeout: 5 * time.Second, HandoffTimeout: time.Millisecond, PageSize: 50},
		app.WithJar(jar))
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	return NewService(a), srv
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	var text string
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			text += tc.Text
		}
	}
	return res, text
}

func strPtr(s string) *string { return &s }

func TestServiceCreateAndList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)

	dto, err := svc.CreateEntry(ctx, EntryInput{
		Title:   strPtr("测试日志标题"),
		Content: strPtr("这是测试日志内容"),
		Date:    strPtr("2024-01-15"),
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if dto.ID == 0 {
		t.Fatalf("expected generated id")
	}
	if dto.SyncStatus != string(entry.SyncNone) || dto.SyncSymbol != "○" {
		t.Fatalf("expected unsynced entry, got %s %s", dto.SyncStatus, dto.SyncSymbol)
	}

	entries, total, err := svc.ListEntries(ctx, ListOptions{Date: "2024-01-15", Limit: 10})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if total != 1 || len(entries) != 1 || entries[0].Title != "测试日志标题" {
		t.Fatalf("expected the new entry listed, got %+v (total %d)", entries, total)
	}

	if _, _, err := svc.ListEntries(ctx, ListOptions{Date: "15.01.2024"}); err == nil {
		t.Fatalf("expected a bad date to be rejected")
	}
}

func TestServiceUpdateKeepsOmittedFields(t *testing.T) {
	ctx := context.Background()
	svc, srv := newTestService(t, true)
	e := srv.Seed("alice", entry.JournalEntry{Title: "before", Content: "body", Date: entry.MustDate("2024-01-15")})

	dto, err := svc.UpdateEntry(ctx, e.ID, EntryInput{Title: strPtr("after")})
	if err != nil {
		t.Fatalf("UpdateEntry failed: %v", err)
	}
	if dto.Title != "after" || dto.Content != "body" || dto.Date != "2024-01-15" {
		t.Fatalf("expected only the title to change, got %+v", dto)
	}
}

func TestParseID(t *testing.T) {
	for _, raw := range []string{"", "0", "-2", "abc"} {
		if _, err := ParseID(raw); err != ErrInvalidID {
			t.Fatalf("expected ErrInvalidID for %q, got %v", raw, err)
		}
	}
	if id, err := ParseID(" 42 "); err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
}

func TestCreateEntryToolRequiresDate(t *testing.T) {
	svc, srv := newTestService(t, true)

	res, text := call(t, createEntryHandler(svc), map[string]any{"title": "no date"})
	if !res.IsError || !strings.Contains(text, "Date is required") {
		t.Fatalf("expected a date error, got %q", text)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Fatalf("expected no request to be sent, got %d", n)
	}
}

func TestGetEntryToolNotFound(t *testing.T) {
	svc, _ := newTestService(t, true)

	res, text := call(t, getEntryHandler(svc), map[string]any{"id": 99})
	if !res.IsError || !strings.Contains(text, "Journal entry not found") {
		t.Fatalf("expected not found, got %q", text)
	}
}

func TestExportToolReturnsLink(t *testing.T) {
	svc, srv := newTestService(t, true)
	var ids []any
	for i := 0; i < 3; i++ {
		e := srv.Seed("alice", entry.JournalEntry{Title: "e", Content: "c", Date: entry.MustDate("2024-01-15")})
		ids = append(ids, e.ID)
	}

	res, text := call(t, exportEntriesHandler(svc), map[string]any{"ids": ids})
	if res.IsError {
		t.Fatalf("export failed: %s", text)
	}
	var out struct {
		URL   string `json:"url"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("decode result %q: %v", text, err)
	}
	if out.Count != 3 || !strings.HasPrefix(out.URL, "shortcuts://run-shortcut?name=AddToNotes") {
		t.Fatalf("unexpected export result %+v", out)
	}

	reqs := srv.Requests()
	last := reqs[len(reqs)-1]
	if !strings.HasSuffix(last.Path, "/journal/entries/batch-export") {
		t.Fatalf("expected batch export, got %s", last.Path)
	}
	if string(last.Body) != `{"entry_ids":[1,2,3]}` {
		t.Fatalf("unexpected body %s", last.Body)
	}
}

func TestSyncAllToolSummarizes(t *testing.T) {
	svc, srv := newTestService(t, true)
	srv.Seed("alice", entry.JournalEntry{Title: "a", Date: entry.MustDate("2024-01-15")})
	bad := srv.Seed("alice", entry.JournalEntry{Title: "b", Date: entry.MustDate("2024-01-14")})
	srv.FailSync(bad.ID)

	res, text := call(t, syncAllHandler(svc), nil)
	if res.IsError {
		t.Fatalf("sync_all failed: %s", text)
	}
	if !strings.Contains(text, "Sync completed: 1 succeeded, 1 failed") {
		t.Fatalf("expected summary in %q", text)
	}
}

func TestToolsReportMissingSession(t *testing.T) {
	svc, _ := newTestService(t, false)

	res, text := call(t, listEntriesHandler(svc), nil)
	if !res.IsError || !strings.Contains(text, "daybook login") {
		t.Fatalf("expected a sign-in hint, got %q", text)
	}
}
