// Package journal wraps the journal entry endpoints.
package journal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/entry"
)

const entriesPath = "/journal/entries"

var ErrNotFound = errors.New("journal: entry not found")

// ListOptions filters a listing. Zero values are not sent.
type ListOptions struct {
	Date   *entry.Date
	Limit  int
	Offset int
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Date != nil && !o.Date.IsZero() {
		q.Set("date", o.Date.String())
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}

// Service is the journal entry client. It holds no state of its own.
type Service struct {
	R client.Requester
}

func New(r client.Requester) *Service {
	return &Service{R: r}
}

// EntryPath is the resource path for id.
func EntryPath(id int64) string {
	return entriesPath + "/" + strconv.FormatInt(id, 10)
}

// List returns entries matching o.
func (s *Service) List(ctx context.Context, o ListOptions) (*entry.Page, error) {
	page := &entry.Page{}
	if err := client.Call(ctx, s.R, entriesPath, client.Options{Query: o.query()}, page); err != nil {
		return nil, err
	}
	if page.Entries == nil {
		page.Entries = []entry.JournalEntry{}
	}
	return page, nil
}

// Get fetches one entry.
func (s *Service) Get(ctx context.Context, id int64) (*entry.JournalEntry, error) {
	e := &entry.JournalEntry{}
	if err := client.Call(ctx, s.R, EntryPath(id), client.Options{}, e); err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// Create stores a new entry and returns it with its assigned id.
func (s *Service) Create(ctx context.Context, d entry.Draft) (*entry.JournalEntry, error) {
	if d.Date.IsZero() {
		return nil, entry.ErrDateRequired
	}
	e := &entry.JournalEntry{}
	err := client.Call(ctx, s.R, entriesPath, client.Options{Method: http.MethodPost, Body: d}, e)
	if err != nil {
		return nil, err
	}
	if e.ID == 0 {
		return nil, fmt.Errorf("journal: create returned no id")
	}
	return e, nil
}

// Update replaces title, content and date of entry id.
func (s *Service) Update(ctx context.Context, id int64, d entry.Draft) (*entry.JournalEntry, error) {
	if d.Date.IsZero() {
		return nil, entry.ErrDateRequired
	}
	e := &entry.JournalEntry{}
	err := client.Call(ctx, s.R, EntryPath(id), client.Options{Method: http.MethodPut, Body: d}, e)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// Delete removes entry id. The backend answers 204.
func (s *Service) Delete(ctx context.Context, id int64) error {
	_, err := s.R.Request(ctx, EntryPath(id), client.Options{Method: http.MethodDelete})
	return notFound(err)
}

// notFound keeps the server's message but lets callers match ErrNotFound.
func notFound(err error) error {
	if err != nil && client.StatusOf(err) == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
