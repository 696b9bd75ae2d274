package listview

import (
	"errors"

	"tableflip.dev/daybook/pkg/calendar"
	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/export"
)

// User-facing messages produced by the machine itself.
const (
	MsgNoSelection = "Select at least one entry to export"
	MsgNoLink      = "Export returned no link"
	MsgNoHandoff   = "The other app did not appear to open"
)

// Update applies ev to s.
func Update(s State, ev Event) (State, []Command) {
	switch ev := ev.(type) {
	case SelectTab:
		s.Tab = ev.Tab
		if ev.Tab == TabDate && s.Date.IsZero() {
			s.Date = ev.Today
		}
		s.Query = Query{Tab: ev.Tab}
		switch ev.Tab {
		case TabToday:
			s.Query.Date = ev.Today
		case TabDate:
			s.Query.Date = s.Date
		}
		return fetch(s)

	case SetDate:
		if s.Tab != TabDate || ev.Date.IsZero() {
			return s, nil
		}
		s.Date = ev.Date
		s.Query = Query{Tab: TabDate, Date: s.Date}
		return fetch(s)

	case ShiftDate:
		if s.Tab != TabDate || s.Date.IsZero() || ev.Days == 0 {
			return s, nil
		}
		s.Date = s.Date.AddDays(ev.Days)
		s.Query = Query{Tab: TabDate, Date: s.Date}
		return fetch(s)

	case Refresh:
		return fetch(s)

	case ToggleBatch:
		s.Batch = !s.Batch
		s.Selected = map[int64]bool{}
		return s, nil

	case ToggleSelect:
		if !s.Batch || !s.has(ev.ID) {
			return s, nil
		}
		sel := s.cloneSelected()
		if sel[ev.ID] {
			delete(sel, ev.ID)
		} else {
			sel[ev.ID] = true
		}
		s.Selected = sel
		return s, nil

	case SelectAll:
		if !s.Batch {
			return s, nil
		}
		sel := make(map[int64]bool, len(s.Entries))
		for _, e := range s.Entries {
			sel[e.ID] = true
		}
		s.Selected = sel
		return s, nil

	case DeselectAll:
		s.Selected = map[int64]bool{}
		return s, nil

	case Loaded:
		if ev.Seq != s.Seq {
			return s, nil
		}
		s.Loading = false
		s.LoadErr = ""
		s.Entries, s.Total = nil, 0
		if ev.Page != nil {
			s.Entries, s.Total = ev.Page.Entries, ev.Page.Total
		}
		s.Selected = s.prune()
		return s, nil

	case LoadFailed:
		if ev.Seq != s.Seq {
			return s, nil
		}
		s.Loading = false
		s.LoadErr = client.Message(ev.Err)
		return s, nil

	case ExportSelected:
		if s.Busy() || !s.Batch {
			return s, nil
		}
		ids := s.SelectedIDs()
		if len(ids) == 0 {
			return s, []Command{Alert{Message: MsgNoSelection}}
		}
		s.Pending = OpBatchExport
		return s, []Command{Export{IDs: ids, Batch: true}}

	case ExportOne:
		if s.Busy() {
			return s, nil
		}
		s.Pending = OpExport
		return s, []Command{Export{IDs: []int64{ev.ID}}}

	case Exported:
		batch := s.Pending == OpBatchExport
		s.Pending = OpNone
		if ev.URL == "" {
			return s, []Command{Alert{Message: MsgNoLink}}
		}
		if batch {
			s.Selected = map[int64]bool{}
		}
		return s, []Command{OpenURL{URL: ev.URL}}

	case ExportFailed:
		s.Pending = OpNone
		return s, alert(ev.Err)

	case HandoffResult:
		if ev.OK {
			return s, nil
		}
		return s, []Command{Alert{Message: MsgNoHandoff}}

	case SyncOne:
		if s.Busy() {
			return s, nil
		}
		s.Pending = OpSync
		return s, []Command{Sync{ID: ev.ID}}

	case SyncAll:
		if s.Busy() {
			return s, nil
		}
		s.Pending = OpSyncAll
		return s, []Command{Sync{}}

	case Synced:
		s.Pending = OpNone
		switch {
		case ev.All != nil:
			s.Status = calendar.Summary(ev.All)
		case ev.One != nil && ev.One.Message != "":
			s.Status = ev.One.Message
		}
		return fetch(s)

	case ClearStatus:
		s.Status = ""
		return s, nil

	case SyncFailed:
		s.Pending = OpNone
		next, cmds := fetch(s)
		return next, append(alert(ev.Err), cmds...)
	}
	return s, nil
}

// Start issues the first fetch for s.
func Start(s State) (State, []Command) {
	return fetch(s)
}

func fetch(s State) (State, []Command) {
	s.Seq++
	s.Loading = true
	s.LoadErr = ""
	return s, []Command{Fetch{Seq: s.Seq, Query: s.Query, Options: s.Query.Options(s.PageSize)}}
}

// alert turns err into a user message. A redirected 401 has already been
// handled and produces nothing.
func alert(err error) []Command {
	if err == nil || errors.Is(err, client.ErrUnauthenticated) {
		return nil
	}
	var msg string
	switch {
	case errors.Is(err, export.ErrNoURL):
		msg = MsgNoLink
	case errors.Is(err, export.ErrNoEntries):
		msg = MsgNoSelection
	default:
		msg = client.Message(err)
	}
	if msg == "" {
		return nil
	}
	return []Command{Alert{Message: msg}}
}

func (s State) has(id int64) bool {
	for _, e := range s.Entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (s State) cloneSelected() map[int64]bool {
	out := make(map[int64]bool, len(s.Selected))
	for id := range s.Selected {
		out[id] = true
	}
	return out
}

// prune keeps only selections still present in the entries.
func (s State) prune() map[int64]bool {
	out := map[int64]bool{}
	for _, e := range s.Entries {
		if s.Selected[e.ID] {
			out[e.ID] = true
		}
	}
	return out
}
