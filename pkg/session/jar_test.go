package session

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"tableflip.dev/daybook/pkg/logging"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestJarPersistsAcrossOpens(t *testing.T) {
	base := t.TempDir()
	u := mustURL(t, "http://127.0.0.1:5001/api/auth/login")

	j, err := Open(base)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	j.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}})

	again, err := Open(base)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := again.Cookies(mustURL(t, "http://127.0.0.1:5001/api/journal/entries"))
	if len(got) != 1 || got[0].Value != "abc" {
		t.Fatalf("expected the session cookie, got %v", got)
	}
}

func TestExpiredCookieIsForgotten(t *testing.T) {
	base := t.TempDir()
	u := mustURL(t, "http://127.0.0.1:5001/api")

	j, err := Open(base)
	if err != nil {
		t.Fatal(err)
	}
	j.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}})
	j.SetCookies(u, []*http.Cookie{{Name: "session", Value: "", Path: "/", MaxAge: -1}})

	again, err := Open(base)
	if err != nil {
		t.Fatal(err)
	}
	if got := again.Cookies(u); len(got) != 0 {
		t.Fatalf("expected no cookies, got %v", got)
	}
}

func TestReloadDetectsForeignChanges(t *testing.T) {
	base := t.TempDir()
	u := mustURL(t, "http://127.0.0.1:5001/api")

	mine, err := Open(base)
	if err != nil {
		t.Fatal(err)
	}
	mine.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}})
	if changed, _ := mine.Reload(); changed {
		t.Fatalf("expected own write not to count as a change")
	}

	other, err := Open(base)
	if err != nil {
		t.Fatal(err)
	}
	if err := other.Clear(); err != nil {
		t.Fatal(err)
	}

	changed, err := mine.Reload()
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatalf("expected foreign logout to be noticed")
	}
	if got := mine.Cookies(u); len(got) != 0 {
		t.Fatalf("expected cookies gone, got %v", got)
	}
}

func TestWatchEmitsOnWrite(t *testing.T) {
	base := t.TempDir()
	j, err := Open(base)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := j.Watch(ctx, nil)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	j.SetCookies(mustURL(t, "http://127.0.0.1:5001/api"), []*http.Cookie{{Name: "session", Value: "x", Path: "/"}})

	select {
	case evt := <-ch:
		if evt.Key != "" && evt.Key != "http_127.0.0.1_5001" {
			t.Fatalf("unexpected key %q", evt.Key)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a session event")
	}
}

func TestCorruptSessionIsReportedAndReplaced(t *testing.T) {
	var logs bytes.Buffer
	u := mustURL(t, "http://127.0.0.1:5001/api/auth/login")

	j, err := Open(t.TempDir(), WithLogger(logging.New(&logs, "warn")))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := j.d.Write(siteKey(u), []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	j.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}})
	if !bytes.Contains(logs.Bytes(), []byte("decode session")) {
		t.Fatalf("expected a decode warning, got %q", logs.String())
	}

	again, err := Open(j.BasePath())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := again.Cookies(mustURL(t, "http://127.0.0.1:5001/api/journal/entries"))
	if len(got) != 1 || got[0].Value != "abc" {
		t.Fatalf("expected the corrupt file to be rewritten, got %v", got)
	}
}
