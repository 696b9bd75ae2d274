// Package add provides the runners that write journal entries.
package add

import (
	"context"
	"errors"
	"io"
	"strings"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/printers"
)

var errNoService = errors.New("can not add, no service")

// Add creates an entry for On.
type Add struct {
	App     *app.Service
	Title   string
	Content string
	On      entry.Date
	JSON    bool
	Out     io.Writer
}

// Do validates the draft locally, stores it and prints the stored entry.
func (n *Add) Do(ctx context.Context) error {
	if n.App == nil {
		return errNoService
	}
	d := entry.Draft{
		Title:   strings.TrimSpace(n.Title),
		Content: n.Content,
		Date:    n.On,
	}
	if err := d.Validate(); err != nil {
		return err
	}
	e, err := n.App.Journal.Create(ctx, d)
	if err != nil {
		return err
	}
	return printEntry(n.Out, n.JSON, "Entry created", e)
}

// Edit changes an entry. Nil fields keep their stored value; the backend
// takes full replacements, so the entry is read first.
type Edit struct {
	App     *app.Service
	ID      int64
	Title   *string
	Content *string
	On      *entry.Date
	JSON    bool
	Out     io.Writer
}

// Do overlays the given fields and replaces the entry.
func (n *Edit) Do(ctx context.Context) error {
	if n.App == nil {
		return errNoService
	}
	cur, err := n.App.Journal.Get(ctx, n.ID)
	if err != nil {
		return err
	}
	d := entry.DraftOf(cur)
	if n.Title != nil {
		d.Title = strings.TrimSpace(*n.Title)
	}
	if n.Content != nil {
		d.Content = *n.Content
	}
	if n.On != nil {
		d.Date = *n.On
	}
	if err := d.Validate(); err != nil {
		return err
	}
	e, err := n.App.Journal.Update(ctx, n.ID, d)
	if err != nil {
		return err
	}
	return printEntry(n.Out, n.JSON, "Entry updated", e)
}

func printEntry(out io.Writer, asJSON bool, status string, e *entry.JournalEntry) error {
	pp := printers.PrettyPrint{Out: out, ShowID: true}
	if asJSON {
		return pp.JSON(e)
	}
	pp.NewLine()
	pp.Status(status)
	pp.Entries(*e)
	return nil
}
