package rotation

import (
	"fmt"

	"media-player/internal/logging"

	"github.com/sirupsen/logrus"
)

// ContainerMeasurer returns the current rendered size of the element that
// hosts the video. It is queried on every transform computation.
type ContainerMeasurer interface {
	ContainerSize() ContainerSize
}

// ContainerFunc adapts a function to ContainerMeasurer.
type ContainerFunc func() ContainerSize

// ContainerSize calls f.
func (f ContainerFunc) ContainerSize() ContainerSize { return f() }

// Observer receives controller events for metrics. Implementations must
// not call back into the controller.
type Observer interface {
	ObserveTransition(t Transition, from, to Angle)
	ObserveTransform(cached bool)
}

type nopObserver struct{}

func (nopObserver) ObserveTransition(Transition, Angle, Angle) {}
func (nopObserver) ObserveTransform(bool)                      {}

// Options configures a Controller.
type Options struct {
	// Policy is fixed for the life of the controller. Zero fields take
	// their value from DefaultPolicy.
	Policy Policy
	// Measurer reports the container size; nil means always unknown.
	Measurer ContainerMeasurer
	// Observer receives transition and cache events; nil disables them.
	Observer Observer
	// Disabled starts the controller switched off.
	Disabled bool
	// Logger overrides the default component logger.
	Logger *logrus.Entry
}

// Events is a batch of notifications delivered in the same tick.
type Events struct {
	MetadataLoaded bool
	Fullscreen     *bool
}

// Controller owns the rotation state of one player instance. It is not
// safe for concurrent use; callers deliver events from a single goroutine
// or serialize them.
type Controller struct {
	policy   Policy
	state    State
	enabled  bool
	closed   bool
	detector *Detector
	measurer ContainerMeasurer
	observer Observer
	log      *logrus.Entry

	cacheKey    TransformInput
	cacheResult TransformResult
	cacheValid  bool
}

// NewController validates the policy and returns a controller in its initial state.
func NewController(opts Options) (*Controller, error) {
	policy := opts.Policy.withDefaults()
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("new rotation controller: %w", err)
	}

	c := &Controller{
		policy:   policy,
		state:    NewState(),
		enabled:  !opts.Disabled,
		measurer: opts.Measurer,
		observer: opts.Observer,
		log:      opts.Logger,
	}
	if c.measurer == nil {
		c.measurer = ContainerFunc(func() ContainerSize { return ContainerSize{} })
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if c.log == nil {
		c.log = logging.WithField("component", "rotation")
	}

	c.detector = NewDetector(c.onSizeKnown)
	c.detector.SetEnabled(c.enabled)
	return c, nil
}

// Attach starts observing src. Attaching a new source re-runs detection
// for it; the rotation state itself is kept.
func (c *Controller) Attach(src VideoSource) {
	if c.closed {
		return
	}
	c.detector.Attach(src)
}

// Close releases the metadata subscription. Later calls that would change
// state are ignored.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.detector.Detach()
	c.closed = true
	c.log.Debug("controller closed")
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool { return c.closed }

// Policy returns the controller's policy.
func (c *Controller) Policy() Policy { return c.policy }

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state }

// CurrentAngle returns the current rotation angle.
func (c *Controller) CurrentAngle() Angle { return c.state.Angle }

// IsPortrait reports the last detected orientation.
func (c *Controller) IsPortrait() bool { return c.state.Portrait }

// AutoRotationEnabled reports whether automatic rotation is allowed.
func (c *Controller) AutoRotationEnabled() bool { return c.state.AutoRotationEnabled }

// Enabled reports whether the controller is switched on.
func (c *Controller) Enabled() bool { return c.enabled }

// Detect runs the orientation detector against the attached source.
func (c *Controller) Detect() (Detection, bool) {
	if c.closed {
		return Detection{}, false
	}
	return c.detector.Detect()
}

// Toggle advances to the next angle and disables automatic rotation.
func (c *Controller) Toggle() Angle {
	if c.closed {
		return c.state.Angle
	}
	c.commit(ApplyToggle(c.state, c.policy))
	return c.state.Angle
}

// Reset returns to angle 0 and re-enables automatic rotation.
func (c *Controller) Reset() {
	if c.closed {
		return
	}
	c.commit(ApplyReset(c.state))
}

// SetAutoRotationEnabled changes the auto-rotation flag. The angle is not touched.
func (c *Controller) SetAutoRotationEnabled(enabled bool) {
	if c.closed {
		return
	}
	c.commit(ApplyAutoRotation(c.state, enabled))
}

// SetFullscreen mirrors the host's fullscreen flag and applies edge transitions.
func (c *Controller) SetFullscreen(fullscreen bool) {
	if c.closed {
		return
	}
	c.commit(ApplyFullscreen(c.state, fullscreen, c.policy))
}

// SetEnabled switches the controller on or off. While off, detection is
// suspended and ComputeTransform returns the identity.
func (c *Controller) SetEnabled(enabled bool) {
	if c.closed || c.enabled == enabled {
		return
	}
	c.enabled = enabled
	c.detector.SetEnabled(enabled)
}

// Apply delivers a same-tick batch. Metadata is processed before the
// fullscreen flag so a fullscreen edge sees the freshest orientation.
func (c *Controller) Apply(ev Events) {
	if c.closed {
		return
	}
	if ev.MetadataLoaded {
		c.detector.Detect()
	}
	if ev.Fullscreen != nil {
		c.SetFullscreen(*ev.Fullscreen)
	}
}

// ComputeTransform returns the style for the current state. The container
// is measured on every call; the result is recomputed only when one of its
// inputs changed.
func (c *Controller) ComputeTransform() TransformResult {
	in := TransformInput{
		Angle:      c.state.Angle,
		Container:  c.measurer.ContainerSize(),
		Video:      c.state.VideoSize,
		Fullscreen: c.state.Fullscreen,
		Enabled:    c.enabled,
		Strategy:   c.policy.Strategy,
	}

	if c.cacheValid && c.cacheKey == in {
		c.observer.ObserveTransform(true)
		return c.cacheResult
	}

	result := ComputeTransform(in)
	c.cacheKey = in
	c.cacheResult = result
	c.cacheValid = true
	c.observer.ObserveTransform(false)
	return result
}

func (c *Controller) onSizeKnown(d Detection) {
	if c.closed {
		return
	}
	c.commit(ApplySizeKnown(c.state, d, c.policy))
}

func (c *Controller) commit(next State, t Transition) {
	from := c.state.Angle
	c.state = next
	if t == TransitionNone {
		return
	}
	c.observer.ObserveTransition(t, from, next.Angle)
	c.log.WithFields(logrus.Fields{
		"transition": string(t),
		"from":       int(from),
		"to":         int(next.Angle),
		"auto":       next.AutoRotationEnabled,
		"fullscreen": next.Fullscreen,
	}).Debug("rotation state changed")
}
