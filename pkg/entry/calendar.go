package entry

import (
	"bytes"
	"encoding/json"
)

// SyncResult summarizes a sync-all run.
type SyncResult struct {
	Message string `json:"message"`
	Success int    `json:"success"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
}

// EntrySyncResult is returned when a single entry is pushed to the calendar.
type EntrySyncResult struct {
	Message string        `json:"message"`
	Entry   *JournalEntry `json:"entry,omitempty"`
}

// CalendarEvent mirrors an event the backend synchronized.
type CalendarEvent struct {
	ID               int64     `json:"id"`
	ExternalEventID  string    `json:"external_event_id"`
	JournalEntryID   *int64    `json:"journal_entry_id,omitempty"`
	Title            string    `json:"title"`
	Start            Timestamp `json:"start_datetime"`
	End              Timestamp `json:"end_datetime"`
	Description      string    `json:"description,omitempty"`
	CompletionStatus string    `json:"completion_status,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	SyncDirection    string    `json:"sync_direction,omitempty"`
	LastSyncedAt     Timestamp `json:"last_synced_at"`
}

// EventPage accepts {"events": [...], "total": n} or a bare array.
type EventPage struct {
	Events []CalendarEvent `json:"events"`
	Total  int             `json:"total"`
}

func (p *EventPage) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.HasPrefix(b, []byte("[")) {
		var list []CalendarEvent
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		p.Events = list
		p.Total = len(list)
		return nil
	}
	type plain EventPage
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = EventPage(v)
	if p.Total < len(p.Events) {
		p.Total = len(p.Events)
	}
	return nil
}
