package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/daybook/pkg/entry"
)

func init() {
	color.NoColor = true
}

func TestSnippet(t *testing.T) {
	long := strings.Repeat("a", 150)
	got := Snippet(long, SnippetWidth)
	if len(got) != SnippetWidth {
		t.Fatalf("expected %d chars, got %d", SnippetWidth, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected an ellipsis, got %q", got)
	}
	if got := Snippet("line one\n\nline   two", SnippetWidth); got != "line one line two" {
		t.Fatalf("expected flattened text, got %q", got)
	}
}

func TestEntriesPrintsRows(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf, ShowID: true}
	pp.Entries(
		entry.JournalEntry{ID: 3, Title: "Walk", Content: "by the sea", Date: entry.MustDate("2024-01-15"), SyncStatus: entry.Synced},
		entry.JournalEntry{ID: 4, Date: entry.MustDate("2024-01-16")},
	)
	out := buf.String()
	for _, want := range []string{"3", "●", "2024-01-15", "Walk", "by the sea", "Untitled", "○"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestEntriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Entries()
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("expected placeholder, got %q", buf.String())
	}
}

func TestMonthGrid(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	then := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	pp.Month(then, entry.Date{}, entry.JournalEntry{Date: entry.MustDate("2024-02-10")})
	out := buf.String()
	if !strings.Contains(out, "February 2024") {
		t.Fatalf("expected heading, got:\n%s", out)
	}
	if !strings.Contains(out, "29") || strings.Contains(out, "30") {
		t.Fatalf("expected a 29 day month, got:\n%s", out)
	}
}

func TestDaysIn(t *testing.T) {
	if got := DaysIn(time.Date(2023, time.February, 10, 0, 0, 0, 0, time.UTC)); got != 28 {
		t.Fatalf("expected 28, got %d", got)
	}
	if got := StartDay(time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)); got != time.Monday {
		t.Fatalf("expected Monday, got %s", got)
	}
}
