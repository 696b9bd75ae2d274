// Package mcp provides the Model Context Protocol server integration for daybook.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/glyph"
	"tableflip.dev/daybook/pkg/journal"
)

// Service adapts the journal clients to the shapes the MCP tools return.
type Service struct {
	App *app.Service
}

// ErrInvalidID is returned for identifiers that are not positive integers.
var ErrInvalidID = errors.New("entry id must be a positive integer")

// EntryDTO is a transport-friendly projection of an entry.
type EntryDTO struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Content         string `json:"content,omitempty"`
	Date            string `json:"date"`
	SyncStatus      string `json:"syncStatus"`
	SyncSymbol      string `json:"syncSymbol"`
	SyncMeaning     string `json:"syncMeaning"`
	CalendarEventID string `json:"calendarEventId,omitempty"`
	CreatedISO      string `json:"created,omitempty"`
	UpdatedISO      string `json:"updated,omitempty"`
}

// ListOptions filters list_entries.
type ListOptions struct {
	Date   string
	Limit  int
	Offset int
}

// EntryInput carries the writable fields. Nil fields keep their current
// value on update; on create Date is required.
type EntryInput struct {
	Title   *string
	Content *string
	Date    *string
}

// NewService builds a service wrapper around the shared app wiring.
func NewService(a *app.Service) *Service {
	return &Service{App: a}
}

// ParseID accepts the textual forms MCP clients send for ids.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// ListEntries returns one page of entries and the total the backend reports.
func (s *Service) ListEntries(ctx context.Context, opts ListOptions) ([]EntryDTO, int, error) {
	lo := journal.ListOptions{Limit: opts.Limit, Offset: opts.Offset}
	if d := strings.TrimSpace(opts.Date); d != "" {
		date, err := entry.ParseDate(d)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid date %q: use YYYY-MM-DD", d)
		}
		lo.Date = &date
	}
	page, err := s.App.Journal.List(ctx, lo)
	if err != nil {
		return nil, 0, err
	}
	return toDTOs(page.Entries), page.Total, nil
}

// EntryByID fetches a single entry.
func (s *Service) EntryByID(ctx context.Context, id int64) (*EntryDTO, error) {
	e, err := s.App.Journal.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*e)
	return &dto, nil
}

// CreateEntry stores a new entry.
func (s *Service) CreateEntry(ctx context.Context, in EntryInput) (*EntryDTO, error) {
	var d entry.Draft
	if err := in.apply(&d); err != nil {
		return nil, err
	}
	e, err := s.App.Journal.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*e)
	return &dto, nil
}

// UpdateEntry overlays in on the stored entry and replaces it. The backend
// only accepts full replacements, so the current copy is read first.
func (s *Service) UpdateEntry(ctx context.Context, id int64, in EntryInput) (*EntryDTO, error) {
	cur, err := s.App.Journal.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := entry.DraftOf(cur)
	if err := in.apply(&d); err != nil {
		return nil, err
	}
	e, err := s.App.Journal.Update(ctx, id, d)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*e)
	return &dto, nil
}

// DeleteEntry removes an entry.
func (s *Service) DeleteEntry(ctx context.Context, id int64) error {
	return s.App.Journal.Delete(ctx, id)
}

// SyncEntry pushes one entry to the calendar.
func (s *Service) SyncEntry(ctx context.Context, id int64) (string, *EntryDTO, error) {
	res, err := s.App.Calendar.SyncEntry(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if res.Entry == nil {
		return res.Message, nil, nil
	}
	dto := toDTO(*res.Entry)
	return res.Message, &dto, nil
}

// SyncAll pushes every entry to the calendar.
func (s *Service) SyncAll(ctx context.Context) (*entry.SyncResult, error) {
	return s.App.Calendar.SyncAll(ctx)
}

// Events lists the calendar events the backend has synced.
func (s *Service) Events(ctx context.Context) ([]entry.CalendarEvent, error) {
	page, err := s.App.Calendar.Events(ctx)
	if err != nil {
		return nil, err
	}
	return page.Events, nil
}

// Export returns the notes link for ids. Opening it is left to the caller;
// an MCP server has no screen to hand off from.
func (s *Service) Export(ctx context.Context, ids []int64) (string, error) {
	res, err := s.App.ExportEntries(ctx, ids, false)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

// Session reports who the server is signed in as.
func (s *Service) Session(ctx context.Context) entry.Status {
	return s.App.Auth.Status(ctx)
}

func (in EntryInput) apply(d *entry.Draft) error {
	if in.Title != nil {
		d.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		d.Content = *in.Content
	}
	if in.Date != nil {
		date, err := entry.ParseDate(strings.TrimSpace(*in.Date))
		if err != nil {
			return fmt.Errorf("invalid date %q: use YYYY-MM-DD", *in.Date)
		}
		d.Date = date
	}
	return nil
}

func toDTOs(entries []entry.JournalEntry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toDTO(e))
	}
	return out
}

func toDTO(e entry.JournalEntry) EntryDTO {
	g := glyph.For(e.SyncStatus)
	dto := EntryDTO{
		ID:              e.ID,
		Title:           e.Title,
		Content:         e.Content,
		Date:            e.Date.String(),
		SyncStatus:      string(e.SyncStatus),
		SyncSymbol:      g.Symbol,
		SyncMeaning:     g.Meaning,
		CalendarEventID: e.CalendarEventID,
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedISO = e.CreatedAt.String()
	}
	if !e.UpdatedAt.IsZero() {
		dto.UpdatedISO = e.UpdatedAt.String()
	}
	return dto
}
