// Package get provides the runners that read journal entries.
package get

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/journal"
	"tableflip.dev/daybook/pkg/printers"
)

var errNoService = errors.New("can not get, no service")

// Get lists one page of entries, optionally for a single day.
type Get struct {
	App    *app.Service
	On     *entry.Date
	Limit  int
	Offset int
	ShowID bool
	JSON   bool
	Out    io.Writer
}

// Do fetches the page and prints it.
func (n *Get) Do(ctx context.Context) error {
	if n.App == nil {
		return errNoService
	}
	page, err := n.App.Journal.List(ctx, journal.ListOptions{
		Date:   n.On,
		Limit:  n.Limit,
		Offset: n.Offset,
	})
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{Out: n.Out, ShowID: n.ShowID}
	if n.JSON {
		return pp.JSON(page)
	}

	pp.NewLine()
	if n.On != nil {
		pp.TitleWithCount(n.On.Long(), page.Total)
		if len(page.Entries) == 0 {
			pp.Empty(fmt.Sprintf("No entries for %s", n.On.String()))
			return nil
		}
	} else {
		pp.TitleWithCount("Entries", page.Total)
		if len(page.Entries) == 0 {
			pp.Empty("No entries yet")
			return nil
		}
	}
	pp.Entries(page.Entries...)
	if shown := n.Offset + len(page.Entries); shown < page.Total {
		pp.Warn(fmt.Sprintf("showing %d-%d of %d, use --offset %d for more", n.Offset+1, shown, page.Total, shown))
	}
	return nil
}

// Show prints a single entry in full.
type Show struct {
	App  *app.Service
	ID   int64
	JSON bool
	Out  io.Writer
}

// Do fetches the entry and prints it.
func (n *Show) Do(ctx context.Context) error {
	if n.App == nil {
		return errNoService
	}
	e, err := n.App.Journal.Get(ctx, n.ID)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out, ShowID: true}
	if n.JSON {
		return pp.JSON(e)
	}
	pp.NewLine()
	pp.Entry(e)
	return nil
}
