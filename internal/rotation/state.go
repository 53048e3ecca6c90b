package rotation

// State is everything the controller knows about one player instance.
// Transition functions take a State by value and return the next one, so
// every rule can be tested without a rendering surface.
type State struct {
	Angle               Angle `json:"angle"`
	AutoRotationEnabled bool  `json:"autoRotationEnabled"`
	Fullscreen          bool  `json:"fullscreen"`
	PreviousFullscreen  bool  `json:"previousFullscreen"`
	Portrait            bool  `json:"portrait"`
	VideoSize           Size  `json:"videoSize"`
}

// NewState returns the state of a freshly attached player.
func NewState() State {
	return State{Angle: Angle0, AutoRotationEnabled: true}
}

// Orientation returns the recorded orientation.
func (s State) Orientation() Orientation {
	return OrientationOf(s.VideoSize)
}

// Transition names what a state change did. It is used for logs and metrics.
type Transition string

const (
	TransitionNone            Transition = ""
	TransitionSizeKnown       Transition = "size_known"
	TransitionAutoRotate      Transition = "auto_rotate"
	TransitionToggle          Transition = "toggle"
	TransitionFullscreenEnter Transition = "fullscreen_enter"
	TransitionFullscreenExit  Transition = "fullscreen_exit"
	TransitionReset           Transition = "reset"
	TransitionAutoDisabled    Transition = "auto_disabled"
	TransitionAutoEnabled     Transition = "auto_enabled"
)

// Transitions lists every named transition, for metric pre-registration.
var Transitions = []Transition{
	TransitionSizeKnown,
	TransitionAutoRotate,
	TransitionToggle,
	TransitionFullscreenEnter,
	TransitionFullscreenExit,
	TransitionReset,
	TransitionAutoDisabled,
	TransitionAutoEnabled,
}

// canAutoRotate is the shared guard for both automatic triggers.
// A non-zero angle means either an earlier auto-rotation or a manual
// choice, and neither may be overridden.
func (s State) canAutoRotate() bool {
	return s.AutoRotationEnabled && s.Portrait && s.Angle == Angle0
}

// ApplySizeKnown records a newly known video size. Under TriggerOnLoad a
// portrait video at angle 0 is rotated to the policy's auto angle. Under
// TriggerOnFullscreen it is rotated only if the player is already
// fullscreen, which covers metadata arriving after the fullscreen edge.
func ApplySizeKnown(s State, d Detection, p Policy) (State, Transition) {
	s.VideoSize = d.Size
	s.Portrait = d.Portrait

	rotate := false
	switch p.Trigger {
	case TriggerOnLoad:
		rotate = s.canAutoRotate()
	case TriggerOnFullscreen:
		rotate = s.Fullscreen && s.canAutoRotate()
	}
	if rotate {
		s.Angle = p.AutoAngle
		return s, TransitionAutoRotate
	}
	return s, TransitionSizeKnown
}

// ApplyToggle advances the angle one step in the policy's cycle and opts
// the instance out of automatic rotation until the next reset.
func ApplyToggle(s State, p Policy) (State, Transition) {
	s.Angle = s.Angle.Next(p.Cycle)
	s.AutoRotationEnabled = false
	return s, TransitionToggle
}

// ApplyFullscreen mirrors the host's fullscreen flag. On the rising edge a
// portrait video at angle 0 is rotated to the auto angle; on the falling
// edge the angle always returns to 0. A repeated value is not an edge.
func ApplyFullscreen(s State, fullscreen bool, p Policy) (State, Transition) {
	s.PreviousFullscreen = s.Fullscreen
	s.Fullscreen = fullscreen

	switch {
	case !s.PreviousFullscreen && s.Fullscreen:
		if s.canAutoRotate() {
			s.Angle = p.AutoAngle
		}
		return s, TransitionFullscreenEnter
	case s.PreviousFullscreen && !s.Fullscreen:
		s.Angle = Angle0
		return s, TransitionFullscreenExit
	}
	return s, TransitionNone
}

// ApplyReset returns to angle 0 with automatic rotation re-enabled. The
// recorded orientation and fullscreen flag are kept.
func ApplyReset(s State) (State, Transition) {
	s.Angle = Angle0
	s.AutoRotationEnabled = true
	return s, TransitionReset
}

// ApplyAutoRotation sets the auto-rotation flag without touching the angle.
func ApplyAutoRotation(s State, enabled bool) (State, Transition) {
	if s.AutoRotationEnabled == enabled {
		return s, TransitionNone
	}
	s.AutoRotationEnabled = enabled
	if enabled {
		return s, TransitionAutoEnabled
	}
	return s, TransitionAutoDisabled
}
