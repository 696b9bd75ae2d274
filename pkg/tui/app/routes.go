package teaui

import (
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/daybook/pkg/guard"
	"tableflip.dev/daybook/pkg/listview"
)

// Redirects is a client.Navigator that carries login redirects raised
// inside commands back to the event loop. Sends never block; a redirect
// that finds the buffer full is already covered by the pending ones.
type Redirects chan string

func NewRedirects() Redirects { return make(Redirects, 4) }

func (r Redirects) Navigate(path string) {
	select {
	case r <- path:
	default:
	}
}

func (r Redirects) wait() tea.Cmd {
	return func() tea.Msg {
		path, ok := <-r
		if !ok {
			return nil
		}
		return redirectMsg{path: path}
	}
}

type redirectMsg struct{ path string }

type routedMsg struct {
	route    guard.Route
	decision guard.Decision
}

// navigate runs the guard for path off the event loop.
func (m *Model) navigate(path string) tea.Cmd {
	router, ctx := m.router, m.ctx
	return func() tea.Msg {
		route, d := router.Navigate(ctx, path)
		return routedMsg{route: route, decision: d}
	}
}

func (m *Model) back() tea.Cmd {
	router, ctx := m.router, m.ctx
	return func() tea.Msg {
		route, d := router.Back(ctx)
		return routedMsg{route: route, decision: d}
	}
}

// enter switches to the view for route and kicks off its loads.
func (m *Model) enter(route guard.Route, d guard.Decision) tea.Cmd {
	m.route = route
	m.picker = nil
	switch route.Name {
	case guard.Login:
		m.view = viewLogin
		m.login.reset()
		if !d.Allow {
			m.home = listview.New(m.home.PageSize)
			m.started = false
			m.cursor = 0
		}
		return m.login.focus(0)
	case guard.Detail:
		m.view = viewDetail
		return m.openDetail(route)
	case guard.Settings:
		m.view = viewSettings
		return m.openSettings()
	default:
		m.view = viewHome
		m.detail.confirm = false
		if !m.started {
			m.started = true
			next, cmds := listview.Start(m.home)
			m.home = next
			return m.run(cmds)
		}
		return m.dispatch(listview.Refresh{})
	}
}
