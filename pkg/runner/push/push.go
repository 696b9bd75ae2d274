// Package push provides the runner that syncs entries to the calendar.
package push

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/calendar"
	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/printers"
)

// ErrNothingToSync is returned when neither ids nor All were given.
var ErrNothingToSync = errors.New("push: give entry ids or --all")

// Push sends entries to the calendar, one at a time for IDs or in a single
// call for All.
type Push struct {
	App  *app.Service
	IDs  []int64
	All  bool
	JSON bool
	Out  io.Writer
}

// Outcome is the result for a single id.
type Outcome struct {
	ID      int64               `json:"id"`
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
	Entry   *entry.JournalEntry `json:"entry,omitempty"`
}

// Do runs the sync and prints what happened. One failed id does not stop
// the rest; the last failure is returned.
func (n *Push) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not sync, no service")
	}
	pp := printers.PrettyPrint{Out: n.Out, ShowID: true}

	if n.All {
		res, err := n.App.Calendar.SyncAll(ctx)
		if err != nil {
			return err
		}
		if n.JSON {
			return pp.JSON(res)
		}
		pp.NewLine()
		pp.Status(calendar.Summary(res))
		if res.Skipped > 0 {
			pp.Warn(fmt.Sprintf("%d skipped", res.Skipped))
		}
		return nil
	}

	if len(n.IDs) == 0 {
		return ErrNothingToSync
	}

	var (
		outcomes []Outcome
		last     error
	)
	for _, id := range n.IDs {
		res, err := n.App.Calendar.SyncEntry(ctx, id)
		if err != nil {
			if errors.Is(err, client.ErrUnauthenticated) {
				return err
			}
			last = err
			outcomes = append(outcomes, Outcome{ID: id, Error: client.Message(err)})
			continue
		}
		outcomes = append(outcomes, Outcome{ID: id, Message: res.Message, Entry: res.Entry})
	}

	if n.JSON {
		if err := pp.JSON(outcomes); err != nil {
			return err
		}
		return last
	}

	pp.NewLine()
	var synced []entry.JournalEntry
	for _, o := range outcomes {
		if o.Error != "" {
			pp.Warn(fmt.Sprintf("#%d: %s", o.ID, o.Error))
			continue
		}
		pp.Status(fmt.Sprintf("#%d: %s", o.ID, o.Message))
		if o.Entry != nil {
			synced = append(synced, *o.Entry)
		}
	}
	if len(synced) > 0 {
		pp.NewLine()
		pp.Entries(synced...)
	}
	return last
}
