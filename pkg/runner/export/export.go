// Package export provides the runners that hand entries and dates to the
// native notes and calendar apps.
package export

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/native"
	"tableflip.dev/daybook/pkg/printers"
)

var errNoService = errors.New("can not export, no service")

// Export asks the backend for a notes link for IDs. The link is printed; with
// Open it is also handed to the system.
type Export struct {
	App  *app.Service
	IDs  []int64
	Open bool
	JSON bool
	Out  io.Writer
}

func (n *Export) Do(ctx context.Context) error {
	if n.App == nil {
		return errNoService
	}
	if len(n.IDs) == 0 {
		return errors.New("export: no entries given")
	}
	res, err := n.App.ExportEntries(ctx, n.IDs, n.Open)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{Out: n.Out}
	if n.JSON {
		return pp.JSON(res)
	}
	pp.NewLine()
	pp.Status(res.URL)
	if n.Open && !res.Opened {
		pp.Warn("Export link created. Open Notes to finish the export.")
	}
	return nil
}

// Target names a native app the Open runner can launch.
type Target string

const (
	Calendar Target = "calendar"
	Notes    Target = "notes"
)

// Open launches the calendar, optionally at On, or the notes app.
type Open struct {
	App    *app.Service
	Target Target
	On     *entry.Date
	Out    io.Writer
}

func (n *Open) Do(ctx context.Context) error {
	if n.App == nil {
		return errNoService
	}
	var (
		url    string
		opened bool
	)
	switch n.Target {
	case Calendar:
		url = native.CalendarURL(n.On)
		opened = n.App.Bridge.OpenCalendar(ctx, n.On)
	case Notes:
		url = native.NotesURL()
		opened = n.App.Bridge.OpenNotes(ctx)
	default:
		return errors.New("open: expected calendar or notes")
	}

	pp := printers.PrettyPrint{Out: n.Out}
	if !opened {
		pp.Warn("Could not confirm the app opened: " + url)
		return nil
	}
	pp.Status("Opened " + url)
	return nil
}
