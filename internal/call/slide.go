package call

// SlideState is the per-control gesture state. Transitions:
// idle -> dragging (first positive drag), dragging -> committing (release past
// the commit threshold, terminal) or springback (release short of it),
// springback -> idle (settle).
type SlideState string

const (
	SlideIdle       SlideState = "idle"
	SlideDragging   SlideState = "dragging"
	SlideCommitting SlideState = "committing"
	SlideSpringback SlideState = "springback"
)

// Slide is one horizontal slide-to-commit control. The two controls on the
// incoming-call screen each own an independent Slide; dragging one never
// moves the other.
type Slide struct {
	trackWidth      int
	buttonWidth     int
	commitProximity int
	offset          int
	state           SlideState
}

func NewSlide(trackWidth, buttonWidth, commitProximity int) Slide {
	return Slide{
		trackWidth:      trackWidth,
		buttonWidth:     buttonWidth,
		commitProximity: commitProximity,
		state:           SlideIdle,
	}
}

func (s Slide) Offset() int       { return s.offset }
func (s Slide) State() SlideState { return s.state }

// MaxOffset is the full travel of the slide button along its track.
func (s Slide) MaxOffset() int { return s.trackWidth - s.buttonWidth }

// CommitThreshold is the offset a release must exceed to fire the action.
func (s Slide) CommitThreshold() int { return s.MaxOffset() - s.commitProximity }

// DragMove applies a drag delta. The offset is clamped to [0, MaxOffset];
// negative deltas never pull the button behind the track start. Moves are
// ignored once the slide has committed.
func (s *Slide) DragMove(delta int) {
	if s.state == SlideCommitting {
		return
	}
	next := s.offset + delta
	if next < 0 {
		next = 0
	}
	if max := s.MaxOffset(); next > max {
		next = max
	}
	s.offset = next
	s.state = SlideDragging
}

// Release ends the drag. It reports true exactly once, when the offset lies
// past the commit threshold; otherwise the control springs back to zero and
// stays armed.
func (s *Slide) Release() bool {
	if s.state != SlideDragging {
		return false
	}
	if s.offset > s.CommitThreshold() {
		s.state = SlideCommitting
		return true
	}
	s.offset = 0
	s.state = SlideSpringback
	return false
}

// Settle finishes the spring-back animation, returning the control to idle.
func (s *Slide) Settle() {
	if s.state == SlideSpringback {
		s.state = SlideIdle
	}
}
