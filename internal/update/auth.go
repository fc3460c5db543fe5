package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/callmeback/callbackd/internal/views"
)

func (m Model) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	signup := m.screen == ScreenSignup

	switch msg.String() {
	case "tab", "shift+tab", "down", "up":
		fields := 2
		if signup {
			fields = 3
		}
		step := 1
		if msg.String() == "shift+tab" || msg.String() == "up" {
			step = fields - 1
		}
		m.Auth.focus = (m.Auth.focus + step) % fields
		m.syncAuthFocus(signup)
		return m, nil

	case "ctrl+n":
		if !signup {
			m.Auth = newAuthState(true)
			m.goTo(ScreenSignup)
		}
		return m, nil

	case "ctrl+l":
		if signup {
			m.Auth = newAuthState(false)
			m.goTo(ScreenLogin)
		}
		return m, nil

	case "enter":
		if m.Auth.busy {
			return m, nil
		}
		name := strings.TrimSpace(m.Auth.nameInput.Value())
		email := strings.TrimSpace(m.Auth.emailInput.Value())
		password := m.Auth.passwordInput.Value()
		if signup && name == "" {
			m.Auth.errText = "name is required"
			return m, nil
		}
		if email == "" || password == "" {
			m.Auth.errText = "email and password are required"
			return m, nil
		}
		m.Auth.busy = true
		m.Auth.errText = ""
		if signup {
			return m, m.registerCmd(name, email, password)
		}
		return m, m.loginCmd(email, password)
	}

	var cmd tea.Cmd
	switch m.authFocusField(signup) {
	case "name":
		m.Auth.nameInput, cmd = m.Auth.nameInput.Update(msg)
	case "email":
		m.Auth.emailInput, cmd = m.Auth.emailInput.Update(msg)
	default:
		m.Auth.passwordInput, cmd = m.Auth.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m Model) authFocusField(signup bool) string {
	if signup {
		switch m.Auth.focus {
		case 0:
			return "name"
		case 1:
			return "email"
		default:
			return "password"
		}
	}
	if m.Auth.focus == 0 {
		return "email"
	}
	return "password"
}

func (m *Model) syncAuthFocus(signup bool) {
	m.Auth.nameInput.Blur()
	m.Auth.emailInput.Blur()
	m.Auth.passwordInput.Blur()
	switch m.authFocusField(signup) {
	case "name":
		m.Auth.nameInput.Focus()
	case "email":
		m.Auth.emailInput.Focus()
	default:
		m.Auth.passwordInput.Focus()
	}
}

func (m Model) handleAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	m.Auth.busy = false
	if msg.err != nil {
		m.Auth.errText = msg.err.Error()
		return m, nil
	}
	if err := m.deps.Session.SetCredentials(msg.token, msg.user); err != nil {
		m.Auth.errText = err.Error()
		return m, nil
	}
	m.goTo(ScreenHome)
	m.setStatus(fmt.Sprintf("signed in as %s", msg.user.Email), false)
	return m, m.refreshCmd()
}

func (m Model) renderAuthView() string {
	mode := "login"
	if m.screen == ScreenSignup {
		mode = "signup"
	}
	return views.RenderAuthPanel(views.AuthPanelData{
		Mode:         mode,
		NameView:     m.Auth.nameInput.View(),
		EmailView:    m.Auth.emailInput.View(),
		PasswordView: m.Auth.passwordInput.View(),
		ErrorText:    m.Auth.errText,
		Busy:         m.Auth.busy,
	})
}
