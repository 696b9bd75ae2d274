package options

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/entry"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOShort = "1/2"
)

// OnOptions
type OnOptions struct {
	OnString string
	Today    bool

	// Now defaults to time.Now.
	Now func() time.Time
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Specify a date, example: --on="2024-1-15" or --on="1/15".`)
}

func AddTodayArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().BoolVar(&o.Today, "today", false,
		"Use today's date.")
}

func (o *OnOptions) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// GetOn returns the requested day, or nil when none was given.
func (o *OnOptions) GetOn() (*entry.Date, error) {
	if o.Today && o.OnString != "" {
		return nil, errors.New("use either --today or --on")
	}
	if o.Today {
		d := entry.Today(o.now)
		return &d, nil
	}
	if o.OnString == "" {
		return nil, nil
	}
	d, err := ParseDay(o.OnString, o.now())
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetOnOrToday is GetOn falling back to today.
func (o *OnOptions) GetOnOrToday() (entry.Date, error) {
	d, err := o.GetOn()
	if err != nil {
		return entry.Date{}, err
	}
	if d == nil {
		return entry.Today(o.now), nil
	}
	return *d, nil
}

// ParseDay accepts YYYY-M-D, or M/D in the year of now.
func ParseDay(s string, now time.Time) (entry.Date, error) {
	t, err := time.Parse(layoutISO, strings.TrimSpace(s))
	if err == nil {
		return entry.DateOf(t), nil
	}
	t, err = time.Parse(layoutISOShort, strings.TrimSpace(s))
	if err != nil {
		return entry.Date{}, fmt.Errorf(`invalid date %q, use "2024-1-15" or "1/15"`, s)
	}
	return entry.Date{Year: now.Year(), Month: t.Month(), Day: t.Day()}, nil
}
