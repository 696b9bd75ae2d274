package native

import (
	"context"
	"net/url"
	"strings"

	"tableflip.dev/daybook/pkg/entry"
)

const (
	calendarScheme = "calshow://"
	notesURL       = "mobilenotes://"
	shortcutsRun   = "shortcuts://run-shortcut"
)

// CalendarURL opens the calendar at d, or at today when d is unset.
func CalendarURL(d *entry.Date) string {
	if d == nil || d.IsZero() {
		return calendarScheme
	}
	return calendarScheme + d.Compact()
}

// NotesURL opens the notes application. It cannot address a single note.
func NotesURL() string {
	return notesURL
}

// ShortcutURL runs the named shortcut, passing text as its input when set.
func ShortcutURL(name, text string) string {
	u := shortcutsRun + "?name=" + escape(name)
	if text != "" {
		u += "&input=text&text=" + escape(text)
	}
	return u
}

// escape percent-encodes a query value using %20 for spaces.
func escape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// Valid reports whether u looks like something an OS could open.
func Valid(u string) bool {
	u = strings.TrimSpace(u)
	if u == "" {
		return false
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return parsed.Scheme != ""
}

// OpenCalendar opens the calendar at d.
func (b *Bridge) OpenCalendar(ctx context.Context, d *entry.Date) bool {
	return b.Open(ctx, CalendarURL(d))
}

// OpenNotes opens the notes application.
func (b *Bridge) OpenNotes(ctx context.Context) bool {
	return b.Open(ctx, NotesURL())
}
