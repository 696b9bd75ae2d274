// Package log provides the day and month views of the journal.
package log

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/journal"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/runner/get"
)

// pageSize is the largest page the backend hands out.
const pageSize = 100

// Log prints the month grid around On, and with Day the entries of On too.
type Log struct {
	App   *app.Service
	On    entry.Date
	Today entry.Date
	Day   bool
	Out   io.Writer
}

func (n *Log) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not log, no service")
	}

	entries, err := Month(ctx, n.App.Journal, n.On)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{Out: n.Out}
	pp.NewLine()
	pp.Month(n.On.Time(), n.Today, entries...)

	if n.Day {
		on := n.On
		g := get.Get{App: n.App, On: &on, Out: n.Out}
		return g.Do(ctx)
	}
	return nil
}

// Month collects every entry dated in the month of on, paging through the
// full listing.
func Month(ctx context.Context, j *journal.Service, on entry.Date) ([]entry.JournalEntry, error) {
	var out []entry.JournalEntry
	for offset := 0; ; {
		page, err := j.List(ctx, journal.ListOptions{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, e := range page.Entries {
			if e.Date.Year == on.Year && e.Date.Month == on.Month {
				out = append(out, e)
			}
		}
		offset += len(page.Entries)
		if len(page.Entries) == 0 || offset >= page.Total {
			return out, nil
		}
	}
}
