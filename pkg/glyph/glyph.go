// Package glyph maps sync status onto the symbols shown in lists.
package glyph

import (
	"fmt"

	"tableflip.dev/daybook/pkg/entry"
)

type Glyph struct {
	Status  entry.SyncStatus
	Symbol  string
	Meaning string
	Order   int
}

const (
	escape        = "\x1b"
	resetCode     = 0
	boldCode      = 1
	underlineCode = 4
)

func Bold(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, boldCode, in, escape, resetCode)
}

func Underline(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, underlineCode, in, escape, resetCode)
}

// Default returns the sync glyphs in legend order.
func Default() []Glyph {
	return []Glyph{
		{Status: entry.SyncNone, Symbol: "○", Meaning: "not synced to the calendar", Order: 0},
		{Status: entry.SyncPending, Symbol: "◐", Meaning: "sync pending", Order: 1},
		{Status: entry.Synced, Symbol: "●", Meaning: "synced to the calendar", Order: 2},
		{Status: entry.SyncError, Symbol: "✘", Meaning: "sync failed, try again", Order: 3},
	}
}

// For returns the glyph for s. Unknown values read as not synced.
func For(s entry.SyncStatus) Glyph {
	all := Default()
	for _, g := range all {
		if g.Status == s {
			return g
		}
	}
	return all[0]
}

// ByOrder sorts glyphs for display.
type ByOrder []Glyph

func (a ByOrder) Len() int           { return len(a) }
func (a ByOrder) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ByOrder) Less(i, j int) bool { return a[i].Order < a[j].Order }
