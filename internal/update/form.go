package update

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/callmeback/callbackd/internal/api"
	"github.com/callmeback/callbackd/internal/views"
)

const whenLayout = "2006-01-02 15:04"

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.goTo(ScreenHome)
		return m, nil

	case "tab", "shift+tab":
		step := 1
		if msg.String() == "shift+tab" {
			step = 3
		}
		m.Form.focus = (m.Form.focus + step) % 4
		m.syncFormFocus()
		return m, nil

	case "enter":
		if m.Form.busy {
			return m, nil
		}
		req, err := m.buildCreateRequest()
		if err != "" {
			m.Form.errText = err
			return m, nil
		}
		m.Form.busy = true
		m.Form.errText = ""
		return m, m.createReminderCmd(req)
	}

	var cmd tea.Cmd
	switch m.Form.focus {
	case 0:
		m.Form.nameInput, cmd = m.Form.nameInput.Update(msg)
	case 1:
		m.Form.phoneInput, cmd = m.Form.phoneInput.Update(msg)
	case 2:
		m.Form.whenInput, cmd = m.Form.whenInput.Update(msg)
	default:
		m.Form.descArea, cmd = m.Form.descArea.Update(msg)
	}
	return m, cmd
}

func (m *Model) syncFormFocus() {
	m.Form.nameInput.Blur()
	m.Form.phoneInput.Blur()
	m.Form.whenInput.Blur()
	m.Form.descArea.Blur()
	switch m.Form.focus {
	case 0:
		m.Form.nameInput.Focus()
	case 1:
		m.Form.phoneInput.Focus()
	case 2:
		m.Form.whenInput.Focus()
	default:
		m.Form.descArea.Focus()
	}
}

func (m Model) buildCreateRequest() (api.CreateReminderRequest, string) {
	name := strings.TrimSpace(m.Form.nameInput.Value())
	phone := strings.TrimSpace(m.Form.phoneInput.Value())
	when := strings.TrimSpace(m.Form.whenInput.Value())
	if name == "" {
		return api.CreateReminderRequest{}, "name is required"
	}
	if phone == "" {
		return api.CreateReminderRequest{}, "phone number is required"
	}
	at, err := time.ParseInLocation(whenLayout, when, time.Local)
	if err != nil {
		return api.CreateReminderRequest{}, "time must look like " + whenLayout
	}
	if !at.After(m.now().In(time.Local)) {
		return api.CreateReminderRequest{}, "time must be in the future"
	}
	return api.CreateReminderRequest{
		NameToCall:  name,
		PhoneNumber: phone,
		Description: strings.TrimSpace(m.Form.descArea.Value()),
		DateTime:    at.UTC(),
	}, ""
}

func (m Model) renderFormView() string {
	return views.RenderReminderFormPanel(views.ReminderFormData{
		NameView:        m.Form.nameInput.View(),
		PhoneView:       m.Form.phoneInput.View(),
		WhenView:        m.Form.whenInput.View(),
		DescriptionView: m.Form.descArea.View(),
		ErrorText:       m.Form.errText,
		Busy:            m.Form.busy,
	})
}
