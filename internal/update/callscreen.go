package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/callmeback/callbackd/internal/call"
	"github.com/callmeback/callbackd/internal/views"
)

func (m Model) callOptions() call.Options {
	opts := call.DefaultOptions()
	cfg := m.deps.Config.Call
	if cfg.RingDelayMS > 0 {
		opts.RingDelay = time.Duration(cfg.RingDelayMS) * time.Millisecond
	}
	if cfg.TrackWidth > 0 {
		opts.TrackWidth = cfg.TrackWidth
	}
	if cfg.ButtonWidth > 0 {
		opts.ButtonWidth = cfg.ButtonWidth
	}
	if cfg.CommitProximity > 0 {
		opts.CommitProximity = cfg.CommitProximity
	}
	return opts
}

func (m Model) dragStep() int {
	if m.deps.Config.Call.DragStep > 0 {
		return m.deps.Config.Call.DragStep
	}
	return 24
}

// openCall normalizes the navigation parameters and mounts the incoming-call
// screen. A payload without a reminder ID is dropped on the floor.
func (m Model) openCall(raw map[string]string) (tea.Model, tea.Cmd) {
	params, ok := call.NormalizeParams(raw)
	if !ok {
		m.deps.Log.Warn().Msg("call open request missing reminder id; ignored")
		m.setStatus("notification had no reminder attached", false)
		return m, nil
	}

	m.Call = callState{
		seq:     m.Call.seq + 1,
		session: call.NewSession(params, m.callOptions(), m.now()),
		pulse:   1.0,
	}
	m.goTo(ScreenCall)
	return m, tea.Batch(m.ringTimerCmd(m.Call.seq), m.pulseTickCmd(m.Call.seq))
}

func (m Model) handleCallKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.Call.session
	if s == nil {
		m.goTo(ScreenHome)
		return m, nil
	}

	// After a failed dial the screen parks on the error until acknowledged.
	if m.Call.dialErr != "" {
		switch msg.String() {
		case "enter", "esc":
			m.goTo(ScreenHome)
		}
		return m, nil
	}

	switch msg.String() {
	case "d":
		if s.Dismiss() {
			m.goTo(ScreenHome)
			m.setStatus("call dismissed", false)
			return m, m.completeCmd(s.Params.ReminderID)
		}
		return m, nil

	case "tab":
		m.Call.focusDecline = !m.Call.focusDecline
		return m, nil

	case "left":
		m.dragFocused(-m.dragStep())
		return m, nil

	case "right":
		m.dragFocused(m.dragStep())
		return m, nil

	case "enter":
		var action call.Action
		var committed bool
		if m.Call.focusDecline {
			action, committed = s.ReleaseDecline()
		} else {
			action, committed = s.ReleaseAnswer()
		}
		if !committed {
			return m, nil
		}
		if action == call.ActionAnswer {
			// Dialer first; the completion request follows once the dial
			// attempt has resolved.
			m.Call.dialing = true
			return m, m.dialCmd(m.Call.seq, s.Params.PhoneNumber)
		}
		m.goTo(ScreenHome)
		m.setStatus("call declined", false)
		return m, m.completeCmd(s.Params.ReminderID)
	}

	return m, nil
}

func (m *Model) dragFocused(delta int) {
	s := m.Call.session
	if m.Call.focusDecline {
		_ = s.DragDecline(delta)
		return
	}
	_ = s.DragAnswer(delta)
}

func (m Model) renderCallView() string {
	s := m.Call.session
	if s == nil {
		return ""
	}
	action, resolved := s.Resolution()
	return views.RenderCallPanel(views.CallPanelData{
		Name:        s.Params.NameToCall,
		Phone:       s.Params.PhoneNumber,
		Description: s.Params.Description,
		Ringing:     s.Phase() == call.PhaseRinging,
		Resolved:    resolved,
		Action:      string(action),
		PulseScale:  m.Call.pulse,
		Answer: views.SlideData{
			Label:     "answer ",
			TrackView: slideProgress(s.Answer),
			Focused:   !m.Call.focusDecline,
			State:     string(s.Answer.State()),
		},
		Decline: views.SlideData{
			Label:     "decline",
			TrackView: slideProgress(s.Decline),
			Focused:   m.Call.focusDecline,
			State:     string(s.Decline.State()),
		},
		DialError: m.Call.dialErr,
		Dialing:   m.Call.dialing,
	})
}
