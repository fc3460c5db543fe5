package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/callmeback/callbackd/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForDeliveryCmd(m.deps.Deliveries)}
	if m.screen == ScreenHome {
		cmds = append(cmds, m.refreshCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.screen {
		case ScreenLogin, ScreenSignup:
			return m.handleAuthKey(typed)
		case ScreenHome:
			return m.handleHomeKey(typed)
		case ScreenAddReminder:
			return m.handleFormKey(typed)
		case ScreenCall:
			return m.handleCallKey(typed)
		case ScreenAccount:
			return m.handleAccountKey(typed)
		case ScreenHelp:
			return m.handleHelpKey(typed)
		}

	case spinner.TickMsg:
		if m.Home.refreshing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(typed)
			return m, cmd
		}

	case DeliveryMsg:
		d := typed.Delivery
		m.Banner = &d
		m.setStatus(fmt.Sprintf("incoming call for %s, press %s to open", d.Payload.NameToCall, "o"), false)
		return m, waitForDeliveryCmd(m.deps.Deliveries)

	case authDoneMsg:
		return m.handleAuthDone(typed)

	case remindersLoadedMsg:
		m.Home.refreshing = false
		m.Home.fromCache = typed.fromCache
		if typed.err != nil && !typed.fromCache {
			m.setStatus("error: "+typed.err.Error(), true)
			return m, nil
		}
		m.Home.reminders = typed.reminders
		m.syncReminderList()
		if typed.fromCache {
			m.setStatus("server unreachable, showing cached reminders", false)
		}
		return m, nil

	case reminderCreatedMsg:
		m.Form.busy = false
		if typed.err != nil {
			m.Form.errText = typed.err.Error()
			return m, nil
		}
		m.goTo(ScreenHome)
		m.setStatus(fmt.Sprintf("reminder saved: call %s", typed.reminder.NameToCall), false)
		m.Home.refreshing = true
		return m, tea.Batch(m.spinner.Tick, m.refreshCmd())

	case reminderDeletedMsg:
		if typed.err != nil {
			m.setStatus("error: "+typed.err.Error(), true)
			return m, nil
		}
		m.setStatus("reminder deleted", false)
		m.Home.refreshing = true
		return m, tea.Batch(m.spinner.Tick, m.refreshCmd())

	case planStatusMsg:
		m.Account.loading = false
		if typed.err != nil {
			m.setStatus("error: "+typed.err.Error(), true)
			return m, nil
		}
		m.Account.plan = typed.status
		m.Account.loaded = true
		return m, nil

	case callAnswerableMsg:
		if m.screen == ScreenCall && typed.seq == m.Call.seq && m.Call.session != nil {
			_ = m.Call.session.MakeAnswerable()
		}
		return m, nil

	case pulseTickMsg:
		if m.screen != ScreenCall || typed.seq != m.Call.seq || m.Call.session == nil {
			return m, nil
		}
		m.Call.pulse = m.Call.session.Pulse(typed.at)
		m.Call.session.Answer.Settle()
		m.Call.session.Decline.Settle()
		return m, m.pulseTickCmd(typed.seq)

	case dialDoneMsg:
		if typed.seq != m.Call.seq {
			return m, nil
		}
		m.Call.dialing = false
		var complete tea.Cmd
		if m.Call.session != nil {
			complete = m.completeCmd(m.Call.session.Params.ReminderID)
		}
		if typed.err != nil {
			m.Call.dialErr = typed.err.Error()
			m.setStatus("error: could not open dialer", true)
			return m, complete
		}
		name := ""
		if m.Call.session != nil {
			name = m.Call.session.Params.NameToCall
		}
		m.goTo(ScreenHome)
		m.setStatus(fmt.Sprintf("dialing %s", name), false)
		return m, complete

	case completionDoneMsg:
		// Already logged by the command; the screen never waits on it.
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	body := ""
	switch m.screen {
	case ScreenLogin, ScreenSignup:
		body = m.renderAuthView()
	case ScreenHome:
		body = m.renderHomeView()
	case ScreenAddReminder:
		body = m.renderFormView()
	case ScreenCall:
		body = m.renderCallView()
	case ScreenAccount:
		body = m.renderAccountView()
	case ScreenHelp:
		body = m.helpViewport.View()
	}

	banner := ""
	if m.Banner != nil && m.screen != ScreenCall {
		banner = views.RenderNotificationBanner(views.NotificationBannerData{
			Title: m.Banner.Title,
			Body:  m.Banner.Body,
			Key:   "o",
		})
	}

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = "status: error: " + m.Status.Text
		} else {
			status = "status: " + m.Status.Text
		}
	}

	footer := ""
	if m.screen == ScreenHome {
		footer = m.helpModel.View(m.keys)
	}

	who := ""
	if user, ok := m.deps.Session.User(); ok {
		who = " | " + user.Email
	}
	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("callbackd | %s%s", m.screen, who),
		Body:       body,
		Banner:     banner,
		StatusLine: status,
		Footer:     footer,
	})
}
