package options

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"tableflip.dev/daybook/pkg/client"
)

func TestParseDay(t *testing.T) {
	now := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.Local)
	tests := map[string]string{
		"2024-01-15": "2024-01-15",
		"2024-1-5":   "2024-01-05",
		"1/15":       "2024-01-15",
		"12/31":      "2024-12-31",
	}
	for in, want := range tests {
		got, err := ParseDay(in, now)
		if err != nil {
			t.Fatalf("ParseDay(%q) failed: %v", in, err)
		}
		if got.String() != want {
			t.Fatalf("ParseDay(%q): expected %s, got %s", in, want, got)
		}
	}
	if _, err := ParseDay("15.01.2024", now); err == nil {
		t.Fatalf("expected an error for an unknown layout")
	}
}

func TestGetOn(t *testing.T) {
	now := func() time.Time { return time.Date(2024, time.January, 15, 12, 0, 0, 0, time.Local) }

	o := &OnOptions{Now: now}
	if d, err := o.GetOn(); err != nil || d != nil {
		t.Fatalf("expected no date, got %v (%v)", d, err)
	}
	if d, err := o.GetOnOrToday(); err != nil || d.String() != "2024-01-15" {
		t.Fatalf("expected today, got %v (%v)", d, err)
	}

	o = &OnOptions{Now: now, Today: true, OnString: "1/2"}
	if _, err := o.GetOn(); err == nil {
		t.Fatalf("expected --today and --on to conflict")
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs([]string{"3", "#1", " 2 "})
	if err != nil {
		t.Fatalf("ParseIDs failed: %v", err)
	}
	if fmt.Sprint(ids) != "[3 1 2]" {
		t.Fatalf("expected order kept, got %v", ids)
	}
	for _, bad := range []string{"0", "-1", "x"} {
		if _, err := ParseID(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestExplain(t *testing.T) {
	if err := Explain(fmt.Errorf("list: %w", client.ErrUnauthenticated)); err != ErrNotSignedIn {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
	transport := &client.TransportError{Op: "GET /x", Err: errors.New("dial tcp: refused")}
	if err := Explain(transport); err.Error() != "Network error: server unreachable" {
		t.Fatalf("expected the network message, got %v", err)
	}
	wrapped := fmt.Errorf("journal: entry not found: %w", &client.HTTPError{Status: 404, Message: "Journal entry not found"})
	if err := Explain(wrapped); err.Error() != "Journal entry not found" {
		t.Fatalf("expected the server's message, got %v", err)
	}
	plain := errors.New("boom")
	if err := Explain(plain); err != plain {
		t.Fatalf("expected other errors unchanged, got %v", err)
	}
}

func TestWrap(t *testing.T) {
	if got := Wrap("aaa bbb ccc", 7); got != "aaa bbb\nccc" {
		t.Fatalf("unexpected wrap %q", got)
	}
}
