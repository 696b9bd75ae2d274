// Package remove provides the runner that deletes journal entries.
package remove

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/journal"
	"tableflip.dev/daybook/pkg/printers"
)

// Remove deletes an entry and reprints what is left on its day.
type Remove struct {
	App *app.Service
	ID  int64
	Out io.Writer
}

// Do runs the delete.
func (n *Remove) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not delete, no service")
	}
	e, err := n.App.Journal.Get(ctx, n.ID)
	if err != nil {
		return err
	}
	if err := n.App.Journal.Delete(ctx, n.ID); err != nil {
		return err
	}

	pp := printers.PrettyPrint{Out: n.Out, ShowID: true}
	pp.NewLine()
	pp.Status(fmt.Sprintf("Deleted #%d %q", n.ID, e.DisplayTitle()))

	page, err := n.App.Journal.List(ctx, journal.ListOptions{Date: &e.Date})
	if err != nil {
		return err
	}
	pp.NewLine()
	pp.TitleWithCount(e.Date.Long(), page.Total)
	if len(page.Entries) == 0 {
		pp.Empty(fmt.Sprintf("No entries for %s", e.Date.String()))
		return nil
	}
	pp.Entries(page.Entries...)
	return nil
}
