// Package export asks the backend for notes-app export URLs.
package export

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/journal"
)

const batchPath = "/journal/entries/batch-export"

var (
	ErrNoEntries = errors.New("export: no entries selected")
	ErrNoURL     = errors.New("export: response carried no shortcuts url")
)

type result struct {
	URL string `json:"shortcuts_url"`
}

type Service struct {
	R client.Requester
}

func New(r client.Requester) *Service {
	return &Service{R: r}
}

// Entry exports a single entry and returns the shortcuts URL verbatim.
func (s *Service) Entry(ctx context.Context, id int64) (string, error) {
	return s.call(ctx, journal.EntryPath(id)+"/export", nil)
}

// Entries exports several entries into one note, in the order given.
func (s *Service) Entries(ctx context.Context, ids []int64) (string, error) {
	if len(ids) == 0 {
		return "", ErrNoEntries
	}
	body := struct {
		EntryIDs []int64 `json:"entry_ids"`
	}{EntryIDs: ids}
	return s.call(ctx, batchPath, body)
}

func (s *Service) call(ctx context.Context, path string, body any) (string, error) {
	var res result
	if err := client.Call(ctx, s.R, path, client.Options{Method: http.MethodPost, Body: body}, &res); err != nil {
		return "", err
	}
	if strings.TrimSpace(res.URL) == "" {
		return "", ErrNoURL
	}
	return res.URL, nil
}
