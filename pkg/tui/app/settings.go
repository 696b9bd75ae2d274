package teaui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/daybook/pkg/calendar"
	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/listview"
)

type settingsPane struct {
	user    *entry.User
	events  []entry.CalendarEvent
	loading bool
	syncing bool
	status  string
	err     string
}

type settingsLoadedMsg struct {
	status entry.Status
	events *entry.EventPage
	err    error
}

type syncedAllMsg struct {
	result *entry.SyncResult
	err    error
}

const settingsHelp = "s sync all · r reload · L sign out · ? keys · esc back"

func (m *Model) openSettings() tea.Cmd {
	m.settings.loading = true
	m.settings.err = ""
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		st := svc.Auth.Status(ctx)
		events, err := svc.Calendar.Events(ctx)
		return settingsLoadedMsg{status: st, events: events, err: err}
	}
}

func (m *Model) settingsLoaded(msg settingsLoadedMsg) {
	p := &m.settings
	p.loading = false
	if msg.status.User != nil {
		p.user = msg.status.User
	}
	if msg.err != nil {
		p.err = client.Message(msg.err)
		return
	}
	p.events = msg.events.Events
}

func (m *Model) settingsKey(msg tea.KeyPressMsg) tea.Cmd {
	p := &m.settings
	switch msg.String() {
	case "esc", "q":
		return m.back()
	case "s":
		if p.syncing {
			return nil
		}
		p.syncing = true
		p.err = ""
		svc, ctx := m.svc, m.ctx
		return func() tea.Msg {
			res, err := svc.Calendar.SyncAll(ctx)
			return syncedAllMsg{result: res, err: err}
		}
	case "r":
		if !p.loading {
			return m.openSettings()
		}
	case "L":
		return m.logoutCmd()
	}
	return nil
}

// syncedAll shows the summary for a while and refreshes the home list
// behind the settings view.
func (m *Model) syncedAll(msg syncedAllMsg) tea.Cmd {
	p := &m.settings
	p.syncing = false
	if msg.err != nil {
		p.err = client.Message(msg.err)
		return nil
	}
	p.status = calendar.Summary(msg.result)
	cmds := []tea.Cmd{m.clearStatusLater()}
	if m.started {
		cmds = append(cmds, m.dispatch(listview.Refresh{}))
	}
	cmds = append(cmds, m.openSettings())
	return tea.Batch(cmds...)
}

func (m *Model) settingsView() (string, string) {
	p := &m.settings
	t := m.theme.Form

	var b strings.Builder
	b.WriteString(m.theme.Modal.Title.Render("Settings"))
	b.WriteString("\n\n")
	who := "unknown"
	if p.user != nil {
		who = p.user.Username
	}
	b.WriteString(t.Label.Render("Signed in as "))
	b.WriteString(who)
	b.WriteString("\n")
	if m.svc != nil && m.svc.Config != nil {
		b.WriteString(t.Label.Render("Server       "))
		b.WriteString(m.svc.Config.Server)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case p.syncing:
		b.WriteString(t.Disabled.Render("Syncing all entries…"))
	case p.status != "":
		b.WriteString(m.theme.Footer.Status.Render(p.status))
	default:
		b.WriteString(t.Label.Render("Press s to sync every entry to the calendar"))
	}
	b.WriteString("\n")
	if p.err != "" {
		b.WriteString(t.Error.Render(p.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Header.Title.Render(fmt.Sprintf("Calendar events (%d)", len(p.events))))
	b.WriteString("\n")
	switch {
	case p.loading:
		b.WriteString(m.theme.List.Placeholder.Render("Loading…"))
	case len(p.events) == 0:
		b.WriteString(m.theme.List.Placeholder.Render("No synced events"))
	default:
		for _, ev := range p.events {
			b.WriteString(m.theme.List.Date.Render(ev.Start.String()))
			b.WriteString("  ")
			b.WriteString(ev.Title)
			b.WriteString("\n")
		}
	}
	return b.String(), settingsHelp
}
