// Package teaui hosts the Bubble Tea program for the daybook TUI.
package teaui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/guard"
	"tableflip.dev/daybook/pkg/listview"
	"tableflip.dev/daybook/pkg/logging"
	"tableflip.dev/daybook/pkg/session"
	"tableflip.dev/daybook/pkg/tui/components/help"
	"tableflip.dev/daybook/pkg/tui/theme"
)

type view int

const (
	viewBlank view = iota
	viewLogin
	viewHome
	viewDetail
	viewSettings
)

const keysHelp = "↑/↓ scroll · esc close"

// StatusTimeout is how long a sync summary stays on screen.
const StatusTimeout = 5 * time.Second

// Model is the root Bubble Tea model. All UI state is owned by the event
// loop; network calls run as commands and come back as messages.
type Model struct {
	ctx       context.Context
	svc       *app.Service
	router    *guard.Router
	redirects Redirects
	theme     theme.Theme
	now       func() time.Time

	view  view
	route guard.Route

	termWidth  int
	termHeight int

	home     listview.State
	started  bool
	cursor   int
	picker   *textinput.Model
	login    loginForm
	detail   detailForm
	settings settingsPane

	alert     string
	statusGen int
	keys      *help.Model

	watchCh     <-chan session.Event
	watchCancel context.CancelFunc
}

// Option customizes New.
type Option func(*Model)

// WithRedirects connects the channel the service's client reports login
// redirects on.
func WithRedirects(r Redirects) Option {
	return func(m *Model) { m.redirects = r }
}

// WithClock replaces time.Now, used for "today".
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithContext sets the context network calls run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// New builds the root model around svc.
func New(svc *app.Service, opts ...Option) *Model {
	m := &Model{
		ctx:   context.Background(),
		svc:   svc,
		theme: theme.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	pageSize := listview.DefaultPageSize
	if svc != nil && svc.Config != nil {
		pageSize = svc.Config.PageSize
	}
	m.home = listview.New(pageSize)
	m.login = newLoginForm()
	m.detail = newDetailForm()

	var log logging.Logger
	var checker guard.StatusChecker = guard.StatusFunc(func(context.Context) entry.Status { return entry.Status{} })
	if svc != nil {
		checker = svc.Auth
		log = svc.Log
	}
	m.router = guard.NewRouter(checker, log)
	return m
}

// Init resolves the start route through the guard and starts the
// background listeners.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.navigate("/")}
	if m.redirects != nil {
		cmds = append(cmds, m.redirects.wait())
	}
	if cmd := startWatchCmd(m.ctx, m.svc); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and keybindings.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.applySizes()
	case tea.BlurMsg:
		if m.svc != nil {
			m.svc.Bridge.Blur()
		}
	case redirectMsg:
		cmds = append(cmds, m.navigate(msg.path))
		if m.redirects != nil {
			cmds = append(cmds, m.redirects.wait())
		}
	case routedMsg:
		cmds = append(cmds, m.enter(msg.route, msg.decision))
	case listMsg:
		cmds = append(cmds, m.dispatch(msg.ev))
		if _, ok := msg.ev.(listview.Synced); ok && m.home.Status != "" {
			cmds = append(cmds, m.clearStatusLater())
		}
	case clearStatusMsg:
		if msg.gen == m.statusGen {
			m.home, _ = listview.Update(m.home, listview.ClearStatus{})
			m.settings.status = ""
		}
	case handoffMsg:
		if !msg.ok {
			m.alert = listview.MsgNoHandoff
		}
	case loggedInMsg:
		cmds = append(cmds, m.loggedIn(msg))
	case loggedOutMsg:
		cmds = append(cmds, m.loggedOut(msg))
	case entryLoadedMsg:
		m.entryLoaded(msg)
	case entrySavedMsg:
		cmds = append(cmds, m.entrySaved(msg))
	case entryDeletedMsg:
		cmds = append(cmds, m.entryDeleted(msg))
	case entryExportedMsg:
		m.entryExported(msg)
	case settingsLoadedMsg:
		m.settingsLoaded(msg)
	case syncedAllMsg:
		cmds = append(cmds, m.syncedAll(msg))
	case watchStartedMsg:
		if msg.err != nil {
			m.logWarn("session watch", msg.err)
			break
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		cmds = append(cmds, m.waitForWatch())
	case watchEventMsg:
		cmds = append(cmds, m.sessionChanged(), m.waitForWatch())
	case watchStoppedMsg:
		m.stopWatch()
	case tea.KeyPressMsg:
		cmds = append(cmds, m.handleKeyPress(msg))
	default:
		cmds = append(cmds, m.forward(msg))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyPress(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.stopWatch()
		return tea.Quit
	}
	if m.keys != nil {
		switch msg.String() {
		case "esc", "q", "?":
			m.keys = nil
			return nil
		}
		return m.keys.Update(msg)
	}
	if msg.String() == "?" && (m.view == viewHome || m.view == viewSettings) {
		w, h := m.helpSize()
		m.keys = help.New(w, h)
		return nil
	}
	switch m.view {
	case viewLogin:
		return m.loginKey(msg)
	case viewHome:
		return m.homeKey(msg)
	case viewDetail:
		return m.detailKey(msg)
	case viewSettings:
		return m.settingsKey(msg)
	}
	return nil
}

// forward hands non-key messages, such as cursor blinks, to the focused
// inputs.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	switch m.view {
	case viewLogin:
		return m.login.update(msg)
	case viewDetail:
		return m.detail.update(msg)
	case viewHome:
		if m.picker != nil {
			var cmd tea.Cmd
			*m.picker, cmd = m.picker.Update(msg)
			return cmd
		}
	}
	return nil
}

// View renders the active view with a shared header and footer.
func (m *Model) View() string {
	var body, hint string
	switch {
	case m.keys != nil:
		body, hint = m.keys.View(), keysHelp
	case m.view == viewLogin:
		body, hint = m.loginView()
	case m.view == viewHome:
		body, hint = m.homeView()
	case m.view == viewDetail:
		body, hint = m.detailView()
	case m.view == viewSettings:
		body, hint = m.settingsView()
	default:
		body = m.theme.List.Placeholder.Render("Loading…")
	}

	var b strings.Builder
	b.WriteString(m.theme.Header.Title.Render("daybook"))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n\n")
	if m.alert != "" {
		b.WriteString(m.theme.Footer.Alert.Render(m.alert))
		b.WriteString("\n")
	}
	b.WriteString(m.theme.Footer.Help.Render(hint))
	return b.String()
}

// Run starts the program on the alternate screen with focus reporting so
// the native bridge can observe the terminal losing focus.
func Run(ctx context.Context, svc *app.Service, opts ...Option) error {
	opts = append([]Option{WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(svc, opts...),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}

func (m *Model) applySizes() {
	if m.termWidth == 0 {
		return
	}
	m.detail.setWidth(m.termWidth - 4)
	if m.termHeight > 0 {
		m.detail.setHeight(m.termHeight - 14)
	}
	if m.keys != nil {
		m.keys.SetSize(m.helpSize())
	}
}

// helpSize leaves room for the title and the footer.
func (m *Model) helpSize() (int, int) {
	w, h := m.termWidth, m.termHeight
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}
	return w, h - 6
}

func (m *Model) today() entry.Date {
	return entry.Today(m.now)
}

func (m *Model) clearStatusLater() tea.Cmd {
	m.statusGen++
	gen := m.statusGen
	return tea.Tick(StatusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{gen: gen}
	})
}

func (m *Model) logWarn(msg string, err error) {
	if m.svc != nil && m.svc.Log != nil {
		m.svc.Log.Warn(m.ctx, msg, "err", err)
	}
}
