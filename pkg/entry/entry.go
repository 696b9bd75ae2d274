// Package entry holds the journal data model shared by the API clients, the
// list state machine and the renderers. The server owns every value here; the
// client only keeps transient copies for display.
package entry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"
)

// SyncStatus reports where an entry is in calendar synchronization.
type SyncStatus string

const (
	SyncNone    SyncStatus = "none"
	SyncPending SyncStatus = "sync_pending"
	Synced      SyncStatus = "synced"
	SyncError   SyncStatus = "sync_error"
)

// ParseSyncStatus maps the backend vocabulary onto SyncStatus. Unknown values
// are treated as not synced.
func ParseSyncStatus(v string) SyncStatus {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "sync_pending", "pending":
		return SyncPending
	case "synced":
		return Synced
	case "sync_error", "sync_conflict", "error":
		return SyncError
	default:
		return SyncNone
	}
}

func (s SyncStatus) String() string {
	if s == "" {
		return string(SyncNone)
	}
	return string(s)
}

// Label is the human form used in lists.
func (s SyncStatus) Label() string {
	switch s {
	case SyncPending:
		return "pending"
	case Synced:
		return "synced"
	case SyncError:
		return "sync failed"
	default:
		return "not synced"
	}
}

func (s *SyncStatus) UnmarshalJSON(b []byte) error {
	var v *string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*s = SyncNone
		return nil
	}
	*s = ParseSyncStatus(*v)
	return nil
}

// JournalEntry is a single journal record as returned by the backend.
type JournalEntry struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Content          string     `json:"content"`
	Date             Date       `json:"date"`
	SyncStatus       SyncStatus `json:"sync_status"`
	CalendarEventID  string     `json:"calendar_event_id,omitempty"`
	CompletionStatus string     `json:"completion_status,omitempty"`
	CreatedAt        Timestamp  `json:"created_at"`
	UpdatedAt        Timestamp  `json:"updated_at"`
}

// DisplayTitle falls back to a placeholder for untitled entries.
func (e *JournalEntry) DisplayTitle() string {
	if t := strings.TrimSpace(e.Title); t != "" {
		return t
	}
	return "Untitled"
}

// MaxTitleLength is the longest title the backend accepts, in runes.
const MaxTitleLength = 200

var (
	ErrDateRequired = errors.New("entry: date is required")
	ErrEmptyDraft   = errors.New("entry: title or content is required")
	ErrTitleTooLong = errors.New("entry: title must be 200 characters or fewer")
)

// Draft is the writable part of an entry, sent on create and full-replace
// update. Title and Content are always sent, empty when unset.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    Date   `json:"date"`
}

// DraftOf copies the writable fields of e.
func DraftOf(e *JournalEntry) Draft {
	return Draft{Title: e.Title, Content: e.Content, Date: e.Date}
}

// Validate checks the draft before it is sent.
func (d Draft) Validate() error {
	if d.Date.IsZero() {
		return ErrDateRequired
	}
	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == "" {
		return ErrEmptyDraft
	}
	if utf8.RuneCountInString(d.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// Page is one listing of entries. The backend answers either with
// {"entries": [...], "total": n} or with a bare array; both decode here.
type Page struct {
	Entries []JournalEntry `json:"entries"`
	Total   int            `json:"total"`
}

func (p *Page) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.HasPrefix(b, []byte("[")) {
		var list []JournalEntry
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		p.Entries = list
		p.Total = len(list)
		return nil
	}
	type plain Page
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Page(v)
	if p.Total < len(p.Entries) {
		p.Total = len(p.Entries)
	}
	return nil
}

// IDs returns the entry identifiers in listing order.
func (p *Page) IDs() []int64 {
	if p == nil {
		return nil
	}
	ids := make([]int64, 0, len(p.Entries))
	for _, e := range p.Entries {
		ids = append(ids, e.ID)
	}
	return ids
}

// User identifies the account behind a session.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Status is the answer of the auth status check.
type Status struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}
