package teaui

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/daybook/pkg/auth"
	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/guard"
	"tableflip.dev/daybook/pkg/listview"
)

type loginForm struct {
	username textinput.Model
	password textinput.Model
	focused  int
	busy     bool
	err      string
}

type loggedInMsg struct {
	user *entry.User
	err  error
}

type loggedOutMsg struct{ err error }

const loginHelp = "tab switch field · enter sign in · ctrl+c quit"

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	ti.VirtualCursor = true
	ti.Styles.Cursor.Color = lipgloss.Color("212")
	ti.Styles.Cursor.Shape = tea.CursorBlock
	ti.Styles.Cursor.Blink = true
	return ti
}

func newLoginForm() loginForm {
	pw := newInput("password", 128)
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	return loginForm{
		username: newInput("username", 64),
		password: pw,
	}
}

func (f *loginForm) reset() {
	f.password.SetValue("")
	f.busy = false
	f.err = ""
}

func (f *loginForm) focus(i int) tea.Cmd {
	f.focused = i
	if i == 0 {
		f.password.Blur()
		return tea.Batch(f.username.Focus(), textinput.Blink)
	}
	f.username.Blur()
	return tea.Batch(f.password.Focus(), textinput.Blink)
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focused == 0 {
		f.username, cmd = f.username.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return cmd
}

func (m *Model) loginKey(msg tea.KeyPressMsg) tea.Cmd {
	f := &m.login
	if f.busy {
		return nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		return f.focus(1 - f.focused)
	case "enter":
		if f.focused == 0 {
			return f.focus(1)
		}
		return m.submitLogin()
	}
	f.err = ""
	return f.update(msg)
}

// submitLogin validates locally, then signs in. Local failures never reach
// the network.
func (m *Model) submitLogin() tea.Cmd {
	f := &m.login
	creds := auth.Credentials{Username: strings.TrimSpace(f.username.Value()), Password: f.password.Value()}
	if err := creds.Validate(); err != nil {
		f.err = err.Error()
		return nil
	}
	f.busy = true
	f.err = ""
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		user, err := svc.Auth.Login(ctx, creds.Username, creds.Password)
		return loggedInMsg{user: user, err: err}
	}
}

func (m *Model) loggedIn(msg loggedInMsg) tea.Cmd {
	m.login.busy = false
	if msg.err != nil {
		m.login.err = client.Message(msg.err)
		return nil
	}
	m.login.password.SetValue("")
	m.settings.user = msg.user
	m.alert = ""
	return m.navigate("/")
}

func (m *Model) logoutCmd() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return loggedOutMsg{err: svc.Logout(ctx)}
	}
}

func (m *Model) loggedOut(msg loggedOutMsg) tea.Cmd {
	if msg.err != nil {
		m.alert = client.Message(msg.err)
	}
	m.settings = settingsPane{}
	m.home = listview.New(m.home.PageSize)
	m.started = false
	m.cursor = 0
	return m.navigate(guard.LoginPath)
}

func (m *Model) loginView() (string, string) {
	f := &m.login
	t := m.theme.Form
	label := func(i int, s string) string {
		if f.focused == i {
			return t.FocusedLabel.Render(s)
		}
		return t.Label.Render(s)
	}

	var b strings.Builder
	b.WriteString(m.theme.Modal.Title.Render("Sign in"))
	b.WriteString("\n\n")
	b.WriteString(label(0, "Username"))
	b.WriteString("\n")
	b.WriteString(t.Field.Render(f.username.View()))
	b.WriteString("\n")
	b.WriteString(label(1, "Password"))
	b.WriteString("\n")
	b.WriteString(t.Field.Render(f.password.View()))
	if f.busy {
		b.WriteString("\n\n")
		b.WriteString(t.Disabled.Render("Signing in…"))
	}
	if f.err != "" {
		b.WriteString("\n\n")
		b.WriteString(t.Error.Render(f.err))
	}
	return m.theme.Modal.Frame.Render(b.String()), loginHelp
}
