package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/callmeback/callbackd/internal/api"
	"github.com/callmeback/callbackd/internal/commands"
	"github.com/callmeback/callbackd/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.active = false
		m.Palette.input.SetValue("")
		return m, nil
	case "enter":
		raw := m.Palette.input.Value()
		m.Palette.active = false
		m.Palette.input.SetValue("")
		return m.executePaletteCommand(raw)
	}

	var cmd tea.Cmd
	m.Palette.input, cmd = m.Palette.input.Update(msg)
	return m, cmd
}

func (m Model) executePaletteCommand(raw string) (tea.Model, tea.Cmd) {
	parsed, err := commands.Parse(raw)
	if err != nil {
		m.setStatus("error: "+err.Error(), true)
		return m, nil
	}

	var teaCmd tea.Cmd
	var openRaw map[string]string
	res, err := commands.Execute(parsed, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			at, parseErr := time.ParseInLocation(whenLayout, a.When, time.Local)
			if parseErr != nil {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: "time must look like " + whenLayout,
				}
			}
			if !at.After(m.now().In(time.Local)) {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: "time must be in the future",
				}
			}
			teaCmd = m.createReminderCmd(api.CreateReminderRequest{
				NameToCall:  a.Name,
				PhoneNumber: a.Phone,
				Description: a.Description,
				DateTime:    at.UTC(),
			})
			return commands.Result{Message: fmt.Sprintf("creating reminder for %s", a.Name)}, nil
		},
		Call: func(c commands.CallArgs) (commands.Result, error) {
			target, ok := m.findReminder(c.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: "no reminder matches " + c.Target,
				}
			}
			openRaw = map[string]string{
				"id":           target.ID,
				"name_to_call": target.NameToCall,
				"phone_number": target.PhoneNumber,
				"description":  target.Description,
			}
			return commands.Result{Message: "opening call for " + target.NameToCall}, nil
		},
		Delete: func(d commands.DeleteArgs) (commands.Result, error) {
			target, ok := m.findReminder(d.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: "no reminder matches " + d.Target,
				}
			}
			teaCmd = m.deleteReminderCmd(target.ID)
			return commands.Result{Message: "deleting reminder for " + target.NameToCall}, nil
		},
		Refresh: func() (commands.Result, error) {
			m.Home.refreshing = true
			teaCmd = tea.Batch(m.spinner.Tick, m.refreshCmd())
			return commands.Result{Message: "refreshing"}, nil
		},
	})
	if err != nil {
		m.setStatus("error: "+err.Error(), true)
		return m, nil
	}

	m.setStatus(res.Message, false)
	if openRaw != nil {
		return m.openCall(openRaw)
	}
	return m, teaCmd
}

// findReminder matches by exact id first, then case-insensitive name.
func (m Model) findReminder(target string) (model.Reminder, bool) {
	for _, r := range m.Home.reminders {
		if r.ID == target {
			return r, true
		}
	}
	for _, r := range m.Home.reminders {
		if strings.EqualFold(r.NameToCall, target) {
			return r, true
		}
	}
	return model.Reminder{}, false
}
