// Package listview is the home list as a pure state machine. Update takes
// the current State and one Event and returns the next State together with
// the Commands the host must run. Nothing here performs I/O.
package listview

import (
	"fmt"

	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/journal"
)

// Tab selects which entries the list shows.
type Tab int

const (
	TabAll Tab = iota
	TabToday
	TabDate
)

func (t Tab) String() string {
	switch t {
	case TabToday:
		return "today"
	case TabDate:
		return "date"
	default:
		return "all"
	}
}

// ParseTab is the inverse of Tab.String. Unknown names select TabAll.
func ParseTab(s string) Tab {
	switch s {
	case "today":
		return TabToday
	case "date":
		return TabDate
	default:
		return TabAll
	}
}

// Query is rebuilt from the tab and picker on every change.
type Query struct {
	Tab  Tab
	Date entry.Date
}

// Options converts q into a list request.
func (q Query) Options(limit int) journal.ListOptions {
	o := journal.ListOptions{Limit: limit}
	if q.Tab != TabAll && !q.Date.IsZero() {
		d := q.Date
		o.Date = &d
	}
	return o
}

// Op is the mutation currently in flight.
type Op int

const (
	OpNone Op = iota
	OpExport
	OpBatchExport
	OpSync
	OpSyncAll
)

// State is everything the home list renders from.
type State struct {
	Tab   Tab
	Date  entry.Date
	Query Query

	Batch    bool
	Selected map[int64]bool

	Entries []entry.JournalEntry
	Total   int
	Loading bool
	LoadErr string

	// Status is the last non-error outcome, such as a sync summary.
	Status string

	// Pending is non-zero while a mutation runs; controls are disabled.
	Pending Op

	// Seq is the id of the latest fetch issued.
	Seq      uint64
	PageSize int
}

// DefaultPageSize matches the backend's default limit.
const DefaultPageSize = 50

// New returns the initial state: the all tab, nothing loaded.
func New(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{PageSize: pageSize, Selected: map[int64]bool{}}
}

// Busy reports whether a mutation is in flight.
func (s State) Busy() bool { return s.Pending != OpNone }

// IsSelected reports whether id is part of the batch selection.
func (s State) IsSelected(id int64) bool { return s.Selected[id] }

// SelectedIDs returns the selection in list order.
func (s State) SelectedIDs() []int64 {
	var ids []int64
	for _, e := range s.Entries {
		if s.Selected[e.ID] {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// EmptyMessage is shown when a load succeeded with no entries.
func EmptyMessage(s State) string {
	switch s.Query.Tab {
	case TabDate:
		return fmt.Sprintf("No entries for %s", s.Query.Date)
	case TabToday:
		return "Nothing written today"
	default:
		return "No entries yet"
	}
}

// Placeholder returns the text shown instead of the list, or "" when the
// entries should be rendered.
func Placeholder(s State) string {
	switch {
	case s.Loading:
		return "Loading…"
	case s.LoadErr != "":
		return "Failed to load: " + s.LoadErr
	case len(s.Entries) == 0:
		return EmptyMessage(s)
	}
	return ""
}
