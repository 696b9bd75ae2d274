package teaui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textarea"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/glyph"
	"tableflip.dev/daybook/pkg/guard"
	"tableflip.dev/daybook/pkg/journal"
	"tableflip.dev/daybook/pkg/listview"
)

const (
	fieldTitle = iota
	fieldDate
	fieldContent
	fieldCount
)

// ErrBadDate is shown when the date field does not parse.
var ErrBadDate = errors.New("Date must be YYYY-MM-DD")

type detailForm struct {
	id      int64
	entry   *entry.JournalEntry
	title   textinput.Model
	date    textinput.Model
	content textarea.Model
	focused int

	loading bool
	// busy names the action in flight; every control is disabled while set.
	busy    string
	confirm bool
	err     string
}

type entryLoadedMsg struct {
	id    int64
	entry *entry.JournalEntry
	err   error
}

type entrySavedMsg struct {
	entry   *entry.JournalEntry
	created bool
	err     error
}

type entryDeletedMsg struct{ err error }

type entryExportedMsg struct {
	result *app.ExportResult
	err    error
}

const (
	detailHelp  = "tab next field · ctrl+s save · ctrl+d delete · ctrl+e export · ctrl+o calendar · esc back"
	confirmHelp = "y delete · n cancel"
)

func newDetailForm() detailForm {
	ta := textarea.New()
	ta.Placeholder = "What happened today?"
	ta.ShowLineNumbers = false
	ta.SetHeight(8)
	return detailForm{
		title:   newInput("title", entry.MaxTitleLength),
		date:    newInput("YYYY-MM-DD", 10),
		content: ta,
	}
}

func (f *detailForm) setWidth(w int) {
	if w < 20 {
		w = 20
	}
	f.title.SetWidth(w)
	f.date.SetWidth(w)
	f.content.SetWidth(w)
}

func (f *detailForm) setHeight(h int) {
	if h < 3 {
		h = 3
	}
	f.content.SetHeight(h)
}

func (f *detailForm) fill(e *entry.JournalEntry, date entry.Date) {
	f.entry = e
	f.id = 0
	title, content := "", ""
	if e != nil {
		f.id = e.ID
		title, content, date = e.Title, e.Content, e.Date
	}
	f.title.SetValue(title)
	f.date.SetValue(date.String())
	f.content.SetValue(content)
}

func (f *detailForm) focus(i int) tea.Cmd {
	f.focused = i
	f.title.Blur()
	f.date.Blur()
	f.content.Blur()
	switch i {
	case fieldTitle:
		return f.title.Focus()
	case fieldDate:
		return f.date.Focus()
	default:
		return f.content.Focus()
	}
}

func (f *detailForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focused {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDate:
		f.date, cmd = f.date.Update(msg)
	default:
		f.content, cmd = f.content.Update(msg)
	}
	return cmd
}

// draft reads the form. The date must parse; the rest is validated by the
// journal client.
func (f *detailForm) draft() (entry.Draft, error) {
	d, err := entry.ParseDate(strings.TrimSpace(f.date.Value()))
	if err != nil {
		return entry.Draft{}, ErrBadDate
	}
	return entry.Draft{
		Title:   strings.TrimSpace(f.title.Value()),
		Content: f.content.Value(),
		Date:    d,
	}, nil
}

func (m *Model) openDetail(route guard.Route) tea.Cmd {
	f := &m.detail
	f.busy = ""
	f.confirm = false
	f.err = ""
	if route.New {
		f.loading = false
		f.fill(nil, m.today())
		return f.focus(fieldTitle)
	}
	f.loading = true
	f.fill(nil, entry.Date{})
	f.id = route.EntryID
	svc, ctx, id := m.svc, m.ctx, route.EntryID
	return func() tea.Msg {
		e, err := svc.Journal.Get(ctx, id)
		return entryLoadedMsg{id: id, entry: e, err: err}
	}
}

func (m *Model) entryLoaded(msg entryLoadedMsg) {
	f := &m.detail
	if m.view != viewDetail || msg.id != f.id {
		return
	}
	f.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, journal.ErrNotFound) {
			f.err = "Entry not found"
		} else {
			f.err = client.Message(msg.err)
		}
		return
	}
	f.fill(msg.entry, msg.entry.Date)
	f.focus(fieldTitle)
}

func (m *Model) detailKey(msg tea.KeyPressMsg) tea.Cmd {
	f := &m.detail
	key := msg.String()
	if f.busy != "" || f.loading {
		if key == "esc" && f.busy == "" {
			return m.back()
		}
		return nil
	}
	if f.confirm {
		switch key {
		case "y", "Y":
			f.confirm = false
			return m.deleteEntry()
		case "n", "N", "esc":
			f.confirm = false
		}
		return nil
	}

	switch key {
	case "esc":
		return m.back()
	case "tab":
		return f.focus((f.focused + 1) % fieldCount)
	case "shift+tab":
		return f.focus((f.focused + fieldCount - 1) % fieldCount)
	case "ctrl+s":
		return m.saveEntry()
	case "ctrl+d":
		if f.id != 0 {
			f.confirm = true
		}
		return nil
	case "ctrl+e":
		if f.id != 0 {
			return m.exportEntry()
		}
		return nil
	case "ctrl+o":
		d, err := entry.ParseDate(strings.TrimSpace(f.date.Value()))
		if err != nil {
			f.err = ErrBadDate.Error()
			return nil
		}
		bridge, ctx := m.svc.Bridge, m.ctx
		return m.handoffCmd(func() bool { return bridge.OpenCalendar(ctx, &d) })
	}
	f.err = ""
	return f.update(msg)
}

func (m *Model) saveEntry() tea.Cmd {
	f := &m.detail
	d, err := f.draft()
	if err == nil {
		err = d.Validate()
	}
	if err != nil {
		f.err = err.Error()
		return nil
	}
	f.busy = "Saving…"
	f.err = ""
	svc, ctx, id := m.svc, m.ctx, f.id
	return func() tea.Msg {
		if id == 0 {
			e, err := svc.Journal.Create(ctx, d)
			return entrySavedMsg{entry: e, created: true, err: err}
		}
		e, err := svc.Journal.Update(ctx, id, d)
		return entrySavedMsg{entry: e, err: err}
	}
}

// entrySaved goes to the new entry after a create and back home after an
// update.
func (m *Model) entrySaved(msg entrySavedMsg) tea.Cmd {
	f := &m.detail
	f.busy = ""
	if msg.err != nil {
		f.err = client.Message(msg.err)
		return nil
	}
	if msg.created {
		return m.navigate(guard.EntryPath(msg.entry.ID))
	}
	return m.navigate("/")
}

func (m *Model) deleteEntry() tea.Cmd {
	f := &m.detail
	f.busy = "Deleting…"
	svc, ctx, id := m.svc, m.ctx, f.id
	return func() tea.Msg {
		return entryDeletedMsg{err: svc.Journal.Delete(ctx, id)}
	}
}

func (m *Model) entryDeleted(msg entryDeletedMsg) tea.Cmd {
	f := &m.detail
	f.busy = ""
	if msg.err != nil {
		f.err = client.Message(msg.err)
		return nil
	}
	return m.navigate("/")
}

func (m *Model) exportEntry() tea.Cmd {
	f := &m.detail
	f.busy = "Exporting…"
	svc, ctx, id := m.svc, m.ctx, f.id
	return func() tea.Msg {
		res, err := svc.ExportEntries(ctx, []int64{id}, true)
		return entryExportedMsg{result: res, err: err}
	}
}

func (m *Model) entryExported(msg entryExportedMsg) {
	m.detail.busy = ""
	switch {
	case msg.err != nil:
		m.detail.err = client.Message(msg.err)
	case !msg.result.Opened:
		m.alert = listview.MsgNoHandoff
	}
}

func (m *Model) detailView() (string, string) {
	f := &m.detail
	t := m.theme.Form

	heading := "New entry"
	if f.id != 0 {
		heading = "Entry"
		if f.entry != nil {
			g := glyph.For(f.entry.SyncStatus)
			heading = "Entry " + g.Symbol + " " + f.entry.SyncStatus.Label()
		}
	}

	var b strings.Builder
	b.WriteString(m.theme.Modal.Title.Render(heading))
	b.WriteString("\n\n")
	if f.loading {
		b.WriteString(m.theme.List.Placeholder.Render("Loading…"))
		return b.String(), "esc back"
	}

	label := func(i int, s string) string {
		switch {
		case f.busy != "":
			return t.Disabled.Render(s)
		case f.focused == i:
			return t.FocusedLabel.Render(s)
		}
		return t.Label.Render(s)
	}
	b.WriteString(label(fieldTitle, "Title"))
	b.WriteString("\n")
	b.WriteString(t.Field.Render(f.title.View()))
	b.WriteString("\n")
	b.WriteString(label(fieldDate, "Date"))
	b.WriteString("\n")
	b.WriteString(t.Field.Render(f.date.View()))
	b.WriteString("\n")
	b.WriteString(label(fieldContent, "Content"))
	b.WriteString("\n")
	b.WriteString(t.Field.Render(f.content.View()))

	if f.busy != "" {
		b.WriteString("\n\n")
		b.WriteString(t.Disabled.Render(f.busy))
	}
	if f.err != "" {
		b.WriteString("\n\n")
		b.WriteString(t.Error.Render(f.err))
	}

	help := detailHelp
	if f.confirm {
		b.WriteString("\n\n")
		b.WriteString(m.theme.Modal.Frame.Render(m.theme.Modal.Body.Render("Delete this entry?")))
		help = confirmHelp
	}
	return b.String(), help
}
