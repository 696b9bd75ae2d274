// Package events provides the runner that lists synced calendar events.
package events

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/printers"
)

type Events struct {
	App  *app.Service
	JSON bool
	Out  io.Writer
}

func (n *Events) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not list events, no service")
	}
	page, err := n.App.Calendar.Events(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	if n.JSON {
		return pp.JSON(page)
	}
	pp.NewLine()
	pp.TitleWithCount("Calendar events", page.Total)
	pp.Events(page.Events...)
	return nil
}
