// Package calendar wraps the calendar sync endpoints.
package calendar

import (
	"context"
	"fmt"
	"net/http"

	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/journal"
)

const (
	syncPath   = "/calendar/sync"
	eventsPath = "/calendar/events"
)

type Service struct {
	R client.Requester
}

func New(r client.Requester) *Service {
	return &Service{R: r}
}

// SyncEntry pushes one entry to the calendar.
func (s *Service) SyncEntry(ctx context.Context, id int64) (*entry.EntrySyncResult, error) {
	res := &entry.EntrySyncResult{}
	if err := client.Call(ctx, s.R, journal.EntryPath(id)+"/sync", client.Options{Method: http.MethodPost}, res); err != nil {
		return nil, err
	}
	return res, nil
}

// SyncAll pushes every unsynced entry of the current user.
func (s *Service) SyncAll(ctx context.Context) (*entry.SyncResult, error) {
	res := &entry.SyncResult{}
	if err := client.Call(ctx, s.R, syncPath, client.Options{Method: http.MethodPost}, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Events lists the calendar events the backend has mirrored.
func (s *Service) Events(ctx context.Context) (*entry.EventPage, error) {
	page := &entry.EventPage{}
	if err := client.Call(ctx, s.R, eventsPath, client.Options{}, page); err != nil {
		return nil, err
	}
	if page.Events == nil {
		page.Events = []entry.CalendarEvent{}
	}
	return page, nil
}

// Summary is the status line shown after a sync-all run.
func Summary(r *entry.SyncResult) string {
	return fmt.Sprintf("Sync completed: %d succeeded, %d failed", r.Success, r.Failed)
}
