package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/daybook/pkg/entry"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Month prints a month grid; days with at least one entry are bold and today
// is underlined.
func (pp *PrettyPrint) Month(then time.Time, today entry.Date, entries ...entry.JournalEntry) {
	days := DaysIn(then)
	count := make([]int, days)
	for _, e := range entries {
		if e.Date.Year == then.Year() && e.Date.Month == then.Month() {
			count[e.Date.Day-1]++
		}
	}
	pp.MonthCount(then, today, count)
}

// MonthCount prints a month grid from per-day counts.
func (pp *PrettyPrint) MonthCount(then time.Time, today entry.Date, count []int) {
	w := pp.out()
	d := StartDay(then)

	tf := color.New(color.FgWhite, color.Italic)
	m := then.Month().String() + " " + fmt.Sprint(then.Year())
	mid := (width - len(m)) / 2
	_, _ = tf.Fprintf(w, "%s%s\n", strings.Repeat(" ", max(mid, 0)), m)

	_, _ = color.New(color.Faint).Fprintln(w, "Su Mo Tu We Th Fr Sa")

	for i := time.Sunday; i < d; i++ {
		_, _ = fmt.Fprint(w, "   ")
	}

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)

	for i := 0; i < len(count); i++ {
		printer := l1
		if count[i] > 0 {
			printer = l2
		}
		if today.Year == then.Year() && today.Month == then.Month() && today.Day == i+1 {
			printer = color.New(color.Underline, color.Bold)
		}
		_, _ = printer.Fprintf(w, "%2d ", i+1)

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(w, "\n")
		}
	}
	_, _ = fmt.Fprint(w, "\n\n")
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 1, 0, 0, 0, time.UTC).Weekday()
}
