package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/callmeback/callbackd/internal/model"
	"github.com/callmeback/callbackd/internal/views"
)

func (m Model) handleAccountKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.goTo(ScreenHome)
		return m, nil

	case "L":
		if err := m.deps.Session.Clear(); err != nil {
			m.setStatus("error: "+err.Error(), true)
			return m, nil
		}
		m.Auth = newAuthState(false)
		m.Home = homeState{}
		m.Banner = nil
		m.syncReminderList()
		m.goTo(ScreenLogin)
		m.setStatus("signed out", false)
		return m, nil

	case "q":
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?", "q":
		m.goTo(ScreenHome)
		return m, nil
	}
	var cmd tea.Cmd
	m.helpViewport, cmd = m.helpViewport.Update(msg)
	return m, cmd
}

func (m Model) renderAccountView() string {
	user, _ := m.deps.Session.User()
	eff := user
	count := user.ReminderCount
	if m.Account.loaded {
		eff.PlanType = m.Account.plan.PlanType
		eff.PlanExpiry = m.Account.plan.PlanExpiry
		count = m.Account.plan.ReminderCount
	}
	expiry := ""
	if eff.PlanExpiry != nil {
		expiry = eff.PlanExpiry.Local().Format("2006-01-02")
	}
	// An expired premium plan behaves as free, so it shows the free limit.
	limit := 0
	if !eff.PlanActive(m.now()) {
		limit = model.FreePlanReminderLimit
	}
	return views.RenderAccountPanel(views.AccountPanelData{
		Name:          user.Name,
		Email:         user.Email,
		PlanType:      string(eff.PlanType),
		PlanExpiry:    expiry,
		ReminderCount: count,
		ReminderLimit: limit,
		Loading:       m.Account.loading,
	})
}
