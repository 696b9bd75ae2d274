package teaui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/glyph"
	"tableflip.dev/daybook/pkg/guard"
	"tableflip.dev/daybook/pkg/listview"
	"tableflip.dev/daybook/pkg/printers"
)

type listMsg struct{ ev listview.Event }

type clearStatusMsg struct{ gen int }

type handoffMsg struct{ ok bool }

const pickerHelp = "enter go · esc cancel"

const homeHelp = "1/2/3 tabs · ←/→ day · g go to date · j/k move · enter open · n new · b batch · space select · a/A all/none · e export · s/S sync · c calendar · o notes · , settings · ? keys · q quit"

// dispatch feeds ev through the list state machine and turns the resulting
// commands into tea commands.
func (m *Model) dispatch(ev listview.Event) tea.Cmd {
	next, cmds := listview.Update(m.home, ev)
	m.home = next
	m.clampCursor()
	return m.run(cmds)
}

func (m *Model) run(cmds []listview.Command) tea.Cmd {
	var out []tea.Cmd
	for _, c := range cmds {
		switch c := c.(type) {
		case listview.Fetch:
			out = append(out, m.fetchCmd(c))
		case listview.Export:
			out = append(out, m.exportCmd(c))
		case listview.OpenURL:
			out = append(out, m.openURLCmd(c.URL))
		case listview.Sync:
			out = append(out, m.syncCmd(c.ID))
		case listview.Alert:
			m.alert = c.Message
		}
	}
	return tea.Batch(out...)
}

func (m *Model) fetchCmd(f listview.Fetch) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		page, err := svc.Journal.List(ctx, f.Options)
		if err != nil {
			return listMsg{ev: listview.LoadFailed{Seq: f.Seq, Err: err}}
		}
		return listMsg{ev: listview.Loaded{Seq: f.Seq, Page: page}}
	}
}

func (m *Model) exportCmd(c listview.Export) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		var (
			url string
			err error
		)
		if c.Batch {
			url, err = svc.Export.Entries(ctx, c.IDs)
		} else {
			url, err = svc.Export.Entry(ctx, c.IDs[0])
		}
		if err != nil {
			return listMsg{ev: listview.ExportFailed{Err: err}}
		}
		return listMsg{ev: listview.Exported{URL: url}}
	}
}

func (m *Model) openURLCmd(url string) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return listMsg{ev: listview.HandoffResult{OK: svc.Bridge.Open(ctx, url)}}
	}
}

func (m *Model) syncCmd(id int64) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		if id == 0 {
			res, err := svc.Calendar.SyncAll(ctx)
			if err != nil {
				return listMsg{ev: listview.SyncFailed{Err: err}}
			}
			return listMsg{ev: listview.Synced{All: res}}
		}
		res, err := svc.Calendar.SyncEntry(ctx, id)
		if err != nil {
			return listMsg{ev: listview.SyncFailed{Err: err}}
		}
		return listMsg{ev: listview.Synced{One: res}}
	}
}

func (m *Model) handoffCmd(open func() bool) tea.Cmd {
	return func() tea.Msg {
		return handoffMsg{ok: open()}
	}
}

func (m *Model) current() *entry.JournalEntry {
	if m.cursor < 0 || m.cursor >= len(m.home.Entries) {
		return nil
	}
	return &m.home.Entries[m.cursor]
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.home.Entries) {
		m.cursor = len(m.home.Entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) homeKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.picker != nil {
		return m.pickerKey(msg)
	}
	switch msg.String() {
	case "q":
		m.stopWatch()
		return tea.Quit
	case "esc":
		m.alert = ""
	case "1":
		return m.dispatch(listview.SelectTab{Tab: listview.TabAll, Today: m.today()})
	case "2":
		return m.dispatch(listview.SelectTab{Tab: listview.TabToday, Today: m.today()})
	case "3":
		return m.dispatch(listview.SelectTab{Tab: listview.TabDate, Today: m.today()})
	case "tab":
		next := (m.home.Tab + 1) % 3
		return m.dispatch(listview.SelectTab{Tab: next, Today: m.today()})
	case "left", "h":
		return m.dispatch(listview.ShiftDate{Days: -1})
	case "right", "l":
		return m.dispatch(listview.ShiftDate{Days: 1})
	case "g":
		if m.home.Tab != listview.TabDate {
			return nil
		}
		in := newInput("YYYY-MM-DD", 10)
		m.picker = &in
		m.alert = ""
		return tea.Batch(m.picker.Focus(), textinput.Blink)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.home.Entries)-1 {
			m.cursor++
		}
	case "enter":
		if e := m.current(); e != nil {
			return m.navigate(guard.EntryPath(e.ID))
		}
	case "n":
		return m.navigate(guard.EntryPath(0))
	case "b":
		return m.dispatch(listview.ToggleBatch{})
	case "space", " ":
		if e := m.current(); e != nil {
			return m.dispatch(listview.ToggleSelect{ID: e.ID})
		}
	case "a":
		return m.dispatch(listview.SelectAll{})
	case "A":
		return m.dispatch(listview.DeselectAll{})
	case "e":
		if m.home.Batch {
			return m.dispatch(listview.ExportSelected{})
		}
		if e := m.current(); e != nil {
			return m.dispatch(listview.ExportOne{ID: e.ID})
		}
	case "s":
		if e := m.current(); e != nil {
			return m.dispatch(listview.SyncOne{ID: e.ID})
		}
	case "S":
		return m.dispatch(listview.SyncAll{})
	case "r":
		return m.dispatch(listview.Refresh{})
	case "c":
		d := m.today()
		if e := m.current(); e != nil {
			d = e.Date
		}
		bridge, ctx := m.svc.Bridge, m.ctx
		return m.handoffCmd(func() bool { return bridge.OpenCalendar(ctx, &d) })
	case "o":
		bridge, ctx := m.svc.Bridge, m.ctx
		return m.handoffCmd(func() bool { return bridge.OpenNotes(ctx) })
	case ",":
		return m.navigate("/settings")
	case "L":
		return m.logoutCmd()
	}
	return nil
}

// pickerKey edits the date picker. Enter jumps the date tab to the typed day.
func (m *Model) pickerKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.picker = nil
		return nil
	case "enter":
		d, err := entry.ParseDate(strings.TrimSpace(m.picker.Value()))
		if err != nil {
			m.alert = "Date must be YYYY-MM-DD"
			return nil
		}
		m.picker = nil
		m.alert = ""
		return m.dispatch(listview.SetDate{Date: d})
	}
	var cmd tea.Cmd
	*m.picker, cmd = m.picker.Update(msg)
	return cmd
}

func (m *Model) homeView() (string, string) {
	var b strings.Builder
	b.WriteString(m.tabsView())
	b.WriteString("\n\n")

	if p := listview.Placeholder(m.home); p != "" {
		b.WriteString(m.theme.List.Placeholder.Render(p))
	} else {
		for i, e := range m.home.Entries {
			b.WriteString(m.rowView(i, e))
			b.WriteString("\n")
		}
		if m.home.Total > len(m.home.Entries) {
			b.WriteString(m.theme.List.Snippet.Render(fmt.Sprintf("%d of %d entries", len(m.home.Entries), m.home.Total)))
			b.WriteString("\n")
		}
	}

	switch {
	case m.home.Busy():
		b.WriteString("\n")
		b.WriteString(m.theme.Footer.Status.Render(busyLabel(m.home.Pending)))
	case m.home.Status != "":
		b.WriteString("\n")
		b.WriteString(m.theme.Footer.Status.Render(m.home.Status))
	}
	if m.picker != nil {
		return b.String(), pickerHelp
	}
	return b.String(), homeHelp
}

func (m *Model) tabsView() string {
	tabs := []struct {
		tab   listview.Tab
		label string
	}{
		{listview.TabAll, "All"},
		{listview.TabToday, "Today"},
		{listview.TabDate, "By date"},
	}
	parts := make([]string, 0, len(tabs)+1)
	for _, t := range tabs {
		style := m.theme.Header.Tab
		if m.home.Tab == t.tab {
			style = m.theme.Header.ActiveTab
		}
		parts = append(parts, style.Render(t.label))
	}
	if m.home.Tab == listview.TabDate {
		parts = append(parts, m.theme.Header.Date.Render("‹ "+m.home.Date.Long()+" ›"))
		if m.picker != nil {
			parts = append(parts, "go to "+m.picker.View())
		}
	}
	if m.home.Batch {
		parts = append(parts, m.theme.List.Selected.Render(fmt.Sprintf("batch: %d selected", len(m.home.SelectedIDs()))))
	}
	return strings.Join(parts, " ")
}

func (m *Model) rowView(i int, e entry.JournalEntry) string {
	marker := "  "
	if i == m.cursor {
		marker = m.theme.List.Cursor.Render("→ ")
	}
	box := ""
	if m.home.Batch {
		box = "[ ] "
		if m.home.IsSelected(e.ID) {
			box = m.theme.List.Selected.Render("[x]") + " "
		}
	}
	row := fmt.Sprintf("%s%s%s %s  %s",
		marker,
		box,
		glyph.For(e.SyncStatus).Symbol,
		m.theme.List.Date.Render(e.Date.String()),
		e.DisplayTitle(),
	)
	if snip := printers.Snippet(e.Content, printers.SnippetWidth); snip != "" {
		row += "  " + m.theme.List.Snippet.Render(snip)
	}
	return row
}

func busyLabel(op listview.Op) string {
	switch op {
	case listview.OpExport, listview.OpBatchExport:
		return "Exporting…"
	case listview.OpSync:
		return "Syncing…"
	case listview.OpSyncAll:
		return "Syncing all entries…"
	}
	return ""
}
