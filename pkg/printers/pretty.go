package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/glyph"
)

// SnippetWidth is how much content a list row shows.
const SnippetWidth = 100

// Snippet flattens content onto one line and cuts it to width.
func Snippet(content string, width int) string {
	flat := strings.Join(strings.Fields(content), " ")
	if width <= 0 {
		return flat
	}
	return truncate.StringWithTail(flat, uint(width), "...")
}

type PrettyPrint struct {
	Out    io.Writer
	ShowID bool
	// Width wraps long text. Zero means 80.
	Width int
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) width() int {
	if pp.Width <= 0 {
		return 80
	}
	return pp.Width
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " entry")
	default:
		_, _ = c.Fprintln(pp.out(), " entries")
	}
}

// Empty prints msg the way an empty list reads.
func (pp *PrettyPrint) Empty(msg string) {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprintf(pp.out(), " %s\n\n", msg)
}

// Entries prints one row per entry: sync glyph, date, title, snippet.
func (pp *PrettyPrint) Entries(entries ...entry.JournalEntry) {
	if len(entries) == 0 {
		pp.Empty("none")
		return
	}

	y := color.New(color.FgHiYellow, color.Faint)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = uint(pp.width())
	for _, e := range entries {
		row := []interface{}{}
		if pp.ShowID {
			row = append(row, y.Sprint(strconv.FormatInt(e.ID, 10)))
		}
		row = append(row,
			glyph.For(e.SyncStatus).Symbol,
			e.Date.String(),
			e.DisplayTitle(),
			faint.Sprint(Snippet(e.Content, SnippetWidth/2)),
		)
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Entry prints a single entry in full. Content is rendered as markdown.
func (pp *PrettyPrint) Entry(e *entry.JournalEntry) {
	b := color.New(color.Bold)
	faint := color.New(color.Faint)
	g := glyph.For(e.SyncStatus)

	_, _ = b.Fprintln(pp.out(), e.DisplayTitle())
	_, _ = faint.Fprintf(pp.out(), "%s · %s %s", e.Date.Long(), g.Symbol, e.SyncStatus.Label())
	if pp.ShowID {
		_, _ = faint.Fprintf(pp.out(), " · #%d", e.ID)
	}
	_, _ = fmt.Fprintln(pp.out(), "")

	_, _ = fmt.Fprintln(pp.out(), pp.Markdown(e.Content))
}

// Markdown renders md for the terminal, falling back to wrapped plain text.
func (pp *PrettyPrint) Markdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return color.New(color.Faint, color.Italic).Sprint("(no content)") + "\n"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(pp.width()),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			return out
		}
	}
	return wordwrap.String(md, pp.width()) + "\n"
}

// Events prints calendar event mirrors.
func (pp *PrettyPrint) Events(events ...entry.CalendarEvent) {
	if len(events) == 0 {
		pp.Empty("no synced events")
		return
	}
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = uint(pp.width())
	tbl.AddRow(bold.Sprint("Start"), bold.Sprint("Title"), bold.Sprint("Entry"), bold.Sprint("Status"))
	for _, ev := range events {
		ref := ""
		if ev.JournalEntryID != nil {
			ref = "#" + strconv.FormatInt(*ev.JournalEntryID, 10)
		}
		tbl.AddRow(ev.Start.Format("2006-01-02"), ev.Title, ref, ev.CompletionStatus)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Status prints a one-line outcome.
func (pp *PrettyPrint) Status(msg string) {
	_, _ = color.New(color.FgGreen).Fprintln(pp.out(), msg)
}

// Warn prints a one-line problem that did not fail the command.
func (pp *PrettyPrint) Warn(msg string) {
	_, _ = color.New(color.FgYellow).Fprintln(pp.out(), msg)
}

// JSON prints v indented, for --json output.
func (pp *PrettyPrint) JSON(v any) error {
	enc := json.NewEncoder(pp.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table prints a prepared table followed by a blank line.
func (pp *PrettyPrint) Table(tbl *uitable.Table) {
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}
