package call

import (
	"errors"
	"time"
)

// Phase is the lifecycle phase of one incoming-call session. Phases only move
// forward: Ringing -> Answerable -> Resolved.
type Phase string

const (
	PhaseRinging    Phase = "ringing"
	PhaseAnswerable Phase = "answerable"
	PhaseResolved   Phase = "resolved"
)

// Action is how a session ended.
type Action string

const (
	ActionAnswer  Action = "answer"
	ActionDecline Action = "decline"
	ActionDismiss Action = "dismiss"
)

var (
	ErrNotRinging    = errors.New("call: session is past the ringing phase")
	ErrNotAnswerable = errors.New("call: session is not answerable")
)

// DefaultRingDelay is how long the screen rings before the slide controls
// become interactive.
const DefaultRingDelay = 3 * time.Second

// pulsePeriod is one full grow-and-shrink cycle of the avatar pulse.
const pulsePeriod = 2 * time.Second

// Options sizes the slide controls and the ring delay for a session.
type Options struct {
	RingDelay       time.Duration
	TrackWidth      int
	ButtonWidth     int
	CommitProximity int
}

func DefaultOptions() Options {
	return Options{
		RingDelay:       DefaultRingDelay,
		TrackWidth:      320,
		ButtonWidth:     60,
		CommitProximity: 50,
	}
}

// Session is the state of one incoming-call screen from mount to resolution.
// It is a pure state machine; timers and key events are driven from outside.
type Session struct {
	Params  Params
	Answer  Slide
	Decline Slide

	opts      Options
	phase     Phase
	startedAt time.Time

	resolved bool
	action   Action
}

func NewSession(p Params, opts Options, startedAt time.Time) *Session {
	return &Session{
		Params:    p,
		Answer:    NewSlide(opts.TrackWidth, opts.ButtonWidth, opts.CommitProximity),
		Decline:   NewSlide(opts.TrackWidth, opts.ButtonWidth, opts.CommitProximity),
		opts:      opts,
		phase:     PhaseRinging,
		startedAt: startedAt,
	}
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) RingDelay() time.Duration { return s.opts.RingDelay }

// MakeAnswerable ends the ringing phase. Only a ringing session can advance;
// a late timer firing against a resolved session is an error the caller drops.
func (s *Session) MakeAnswerable() error {
	if s.phase != PhaseRinging {
		return ErrNotRinging
	}
	s.phase = PhaseAnswerable
	return nil
}

// Resolve records how the session ended. The first call wins; later calls
// report false and change nothing, so a slide commit racing a dismiss key
// cannot double-fire.
func (s *Session) Resolve(a Action) bool {
	if s.phase != PhaseAnswerable || s.resolved {
		return false
	}
	s.resolved = true
	s.action = a
	s.phase = PhaseResolved
	return true
}

// Resolution returns the terminal action once the session has resolved.
func (s *Session) Resolution() (Action, bool) {
	return s.action, s.resolved
}

// DragAnswer and DragDecline move one slide control. Each control moves
// independently and only while the session is answerable.
func (s *Session) DragAnswer(delta int) error  { return s.drag(&s.Answer, delta) }
func (s *Session) DragDecline(delta int) error { return s.drag(&s.Decline, delta) }

func (s *Session) drag(slide *Slide, delta int) error {
	if s.phase != PhaseAnswerable {
		return ErrNotAnswerable
	}
	slide.DragMove(delta)
	return nil
}

// ReleaseAnswer ends the answer drag, resolving the session with ActionAnswer
// when the release commits. It reports the resolved action, if any.
func (s *Session) ReleaseAnswer() (Action, bool) {
	return s.release(&s.Answer, ActionAnswer)
}

// ReleaseDecline is the decline-side counterpart of ReleaseAnswer.
func (s *Session) ReleaseDecline() (Action, bool) {
	return s.release(&s.Decline, ActionDecline)
}

func (s *Session) release(slide *Slide, a Action) (Action, bool) {
	if s.phase != PhaseAnswerable {
		return "", false
	}
	if !slide.Release() {
		return "", false
	}
	if !s.Resolve(a) {
		return "", false
	}
	return a, true
}

// Dismiss resolves the session without placing a call.
func (s *Session) Dismiss() bool {
	return s.Resolve(ActionDismiss)
}

// Pulse returns the avatar scale at the given instant. The scale breathes
// between 1.0 and 1.2 on a fixed cycle for the life of the screen.
func (s *Session) Pulse(now time.Time) float64 {
	elapsed := now.Sub(s.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	frac := float64(elapsed%pulsePeriod) / float64(pulsePeriod)
	if frac <= 0.5 {
		return 1.0 + 0.4*frac
	}
	return 1.0 + 0.4*(1-frac)
}
