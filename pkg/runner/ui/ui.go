// Package ui starts the terminal user interface.
package ui

import (
	"context"
	"errors"
	"os"

	"github.com/mattn/go-isatty"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/config"
	"tableflip.dev/daybook/pkg/logging"
	teaui "tableflip.dev/daybook/pkg/tui/app"
)

// ErrNotATerminal is returned when stdout cannot host the interface.
var ErrNotATerminal = errors.New("ui: stdout is not a terminal")

// UI wires a Service for interactive use and runs the program. Logs go to
// the configured file because the screen belongs to the interface.
type UI struct {
	Config *config.Config
}

func (u *UI) Do(ctx context.Context) error {
	if u.Config == nil {
		return app.ErrNoConfig
	}
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return ErrNotATerminal
	}

	log, closer, err := logging.OpenFile(u.Config.LogFile, u.Config.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	redirects := teaui.NewRedirects()
	svc, err := app.New(u.Config,
		app.WithNavigator(redirects),
		app.WithLogger(log),
	)
	if err != nil {
		return err
	}

	log.Info(ctx, "ui starting", "server", u.Config.Server)
	defer log.Info(ctx, "ui stopped")
	return teaui.Run(ctx, svc, teaui.WithRedirects(redirects))
}
