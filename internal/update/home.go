package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/callmeback/callbackd/internal/model"
	"github.com/callmeback/callbackd/internal/views"
)

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Palette.active {
		return m.handlePaletteKey(msg)
	}
	if msg.String() == "/" {
		m.Palette.active = true
		m.Palette.input.SetValue("")
		m.Palette.input.Focus()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Add):
		m.Form = newFormState()
		m.goTo(ScreenAddReminder)
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.Home.refreshing {
			return m, nil
		}
		m.Home.refreshing = true
		return m, tea.Batch(m.spinner.Tick, m.refreshCmd())

	case key.Matches(msg, m.keys.Delete):
		selected, ok := m.selectedReminder()
		if !ok {
			return m, nil
		}
		return m, m.deleteReminderCmd(selected.ID)

	case key.Matches(msg, m.keys.Call):
		selected, ok := m.selectedReminder()
		if !ok {
			return m, nil
		}
		return m.openCall(map[string]string{
			"id":           selected.ID,
			"name_to_call": selected.NameToCall,
			"phone_number": selected.PhoneNumber,
			"description":  selected.Description,
		})

	case key.Matches(msg, m.keys.Open):
		if m.Banner == nil {
			return m, nil
		}
		raw := m.Banner.Payload.Map()
		m.Banner = nil
		return m.openCall(raw)

	case key.Matches(msg, m.keys.Account):
		m.Account = accountState{loading: true}
		m.goTo(ScreenAccount)
		return m, m.planStatusCmd()

	case key.Matches(msg, m.keys.Help):
		m.helpViewport.SetContent(views.RenderMarkdown(helpMarkdown))
		m.goTo(ScreenHelp)
		return m, nil
	}

	var cmd tea.Cmd
	m.reminderList, cmd = m.reminderList.Update(msg)
	return m, cmd
}

func (m Model) selectedReminder() (model.Reminder, bool) {
	idx := m.reminderList.Index()
	if idx < 0 || idx >= len(m.Home.reminders) {
		return model.Reminder{}, false
	}
	return m.Home.reminders[idx], true
}

func (m *Model) syncReminderList() {
	now := m.now()
	items := make([]list.Item, 0, len(m.Home.reminders))
	for _, r := range m.Home.reminders {
		status := string(r.Status)
		if r.DueAt(now) {
			status = "due"
		}
		desc := fmt.Sprintf("%s | %s | %s", r.PhoneNumber, r.DateTime.Local().Format("2006-01-02 15:04"), status)
		items = append(items, listItem{title: r.NameToCall, description: desc})
	}
	m.reminderList.SetItems(items)
}

func (m Model) renderHomeView() string {
	palette := ""
	if m.Palette.active {
		palette = m.Palette.input.View()
	}
	return views.RenderHomePanel(views.HomePanelData{
		ListView:    m.reminderList.View(),
		Count:       len(m.Home.reminders),
		FromCache:   m.Home.fromCache,
		SpinnerView: m.spinner.View(),
		Refreshing:  m.Home.refreshing,
		PaletteView: palette,
	})
}

const helpMarkdown = `# callbackd

A terminal client for the CallMeBack reminder service. It polls for due
call reminders, raises a notification, and walks you through an
incoming-call screen with slide-to-answer controls.

## Home

| Key | Action |
| --- | ------ |
| a | add a reminder |
| r | refresh the list |
| x | delete the selected reminder |
| c | open the call screen for the selection |
| o | open the latest notification |
| p | account and plan status |
| q | quit |

## Incoming call

The screen rings for a moment before the controls arm. Use the arrow
keys to drag the focused slide, tab to switch between answer and
decline, and enter to release. Release close enough to the end of the
track and the action fires; otherwise the button springs back. d
dismisses without calling.

Press esc to leave this help.
`
