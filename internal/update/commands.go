package update

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/callmeback/callbackd/internal/api"
	"github.com/callmeback/callbackd/internal/model"
	"github.com/callmeback/callbackd/internal/notify"
	"github.com/callmeback/callbackd/internal/storage"
)

type DeliveryMsg struct {
	Delivery notify.Delivery
}

type authDoneMsg struct {
	token string
	user  model.User
	err   error
}

type remindersLoadedMsg struct {
	reminders []model.Reminder
	fromCache bool
	err       error
}

type reminderCreatedMsg struct {
	reminder model.Reminder
	err      error
}

type reminderDeletedMsg struct {
	id  string
	err error
}

type planStatusMsg struct {
	status api.PlanStatus
	err    error
}

type callAnswerableMsg struct {
	seq int
}

type pulseTickMsg struct {
	seq int
	at  time.Time
}

type dialDoneMsg struct {
	seq int
	err error
}

type completionDoneMsg struct {
	id  string
	err error
}

func waitForDeliveryCmd(ch <-chan notify.Delivery) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		d, ok := <-ch
		if !ok {
			return nil
		}
		return DeliveryMsg{Delivery: d}
	}
}

func (m Model) requestTimeout() time.Duration {
	if m.deps.Config.API.Timeout > 0 {
		return time.Duration(m.deps.Config.API.Timeout) * time.Second
	}
	return 15 * time.Second
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	backend := m.deps.Backend
	timeout := m.requestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		token, user, err := backend.Login(ctx, api.LoginRequest{Email: email, Password: password})
		return authDoneMsg{token: token, user: user, err: err}
	}
}

func (m Model) registerCmd(name, email, password string) tea.Cmd {
	backend := m.deps.Backend
	timeout := m.requestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		token, user, err := backend.Register(ctx, api.RegisterRequest{Name: name, Email: email, Password: password})
		return authDoneMsg{token: token, user: user, err: err}
	}
}

// refreshCmd fetches the reminder list. On success it rewrites the offline
// cache; on failure it serves whatever the cache still holds.
func (m Model) refreshCmd() tea.Cmd {
	backend := m.deps.Backend
	cache := m.deps.Cache
	token := m.deps.Session.Token()
	timeout := m.requestTimeout()
	now := m.now
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		reminders, err := backend.ListReminders(ctx, token)
		if err == nil {
			if cache != nil {
				cached := make([]storage.CachedReminder, 0, len(reminders))
				for _, r := range reminders {
					cached = append(cached, storage.CachedReminder{
						ID:          r.ID,
						NameToCall:  r.NameToCall,
						PhoneNumber: r.PhoneNumber,
						Description: r.Description,
						DateTime:    r.DateTime,
						Status:      string(r.Status),
						CachedAt:    now(),
					})
				}
				_ = cache.ReplaceReminderCache(ctx, cached)
			}
			return remindersLoadedMsg{reminders: reminders}
		}

		if cache != nil {
			if cached, cacheErr := cache.ListCachedReminders(ctx); cacheErr == nil && len(cached) > 0 {
				reminders := make([]model.Reminder, 0, len(cached))
				for _, c := range cached {
					reminders = append(reminders, model.Reminder{
						ID:          c.ID,
						NameToCall:  c.NameToCall,
						PhoneNumber: c.PhoneNumber,
						Description: c.Description,
						DateTime:    c.DateTime,
						Status:      model.ReminderStatus(c.Status),
					})
				}
				return remindersLoadedMsg{reminders: reminders, fromCache: true, err: err}
			}
		}
		return remindersLoadedMsg{err: err}
	}
}

func (m Model) createReminderCmd(req api.CreateReminderRequest) tea.Cmd {
	backend := m.deps.Backend
	token := m.deps.Session.Token()
	timeout := m.requestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		reminder, err := backend.CreateReminder(ctx, token, req)
		return reminderCreatedMsg{reminder: reminder, err: err}
	}
}

func (m Model) deleteReminderCmd(id string) tea.Cmd {
	backend := m.deps.Backend
	token := m.deps.Session.Token()
	timeout := m.requestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return reminderDeletedMsg{id: id, err: backend.DeleteReminder(ctx, token, id)}
	}
}

func (m Model) planStatusCmd() tea.Cmd {
	backend := m.deps.Backend
	token := m.deps.Session.Token()
	timeout := m.requestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		status, err := backend.PlanStatus(ctx, token)
		return planStatusMsg{status: status, err: err}
	}
}

// completeCmd posts the pending-to-completed transition. Fire and forget:
// failures are logged and never retried, and the UI moves on regardless.
func (m Model) completeCmd(reminderID string) tea.Cmd {
	backend := m.deps.Backend
	token := m.deps.Session.Token()
	timeout := m.requestTimeout()
	log := m.deps.Log
	if reminderID == "" || token == "" {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := backend.CompleteReminder(ctx, token, reminderID)
		if err != nil {
			log.Warn().Err(err).Str("reminder_id", reminderID).Msg("completion post failed")
		}
		return completionDoneMsg{id: reminderID, err: err}
	}
}

func (m Model) dialCmd(seq int, phoneNumber string) tea.Cmd {
	dialer := m.deps.Dialer
	return func() tea.Msg {
		return dialDoneMsg{seq: seq, err: dialer.Dial(phoneNumber)}
	}
}

func (m Model) ringTimerCmd(seq int) tea.Cmd {
	delay := time.Duration(m.deps.Config.Call.RingDelayMS) * time.Millisecond
	if delay <= 0 {
		delay = 3 * time.Second
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return callAnswerableMsg{seq: seq}
	})
}

func (m Model) pulseTickCmd(seq int) tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return pulseTickMsg{seq: seq, at: t}
	})
}
