package teaui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/session"
)

type watchStartedMsg struct {
	ch     <-chan session.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct {
	event session.Event
}

type watchStoppedMsg struct{}

// startWatchCmd follows the saved session so a login or logout from
// another daybook process is noticed.
func startWatchCmd(parent context.Context, svc *app.Service) tea.Cmd {
	if svc == nil || svc.Session == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := svc.Session.Watch(ctx, svc.Log)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

// sessionChanged re-runs the guard for the current view when the stored
// cookies changed under us. Our own writes reload as unchanged.
func (m *Model) sessionChanged() tea.Cmd {
	changed, err := m.svc.Session.Reload()
	if err != nil {
		m.logWarn("session reload", err)
		return nil
	}
	if !changed || m.route.Path == "" {
		return nil
	}
	path := m.route.Path
	if m.view == viewLogin {
		path = "/"
	}
	return m.navigate(path)
}
