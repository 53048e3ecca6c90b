package rotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, p Policy, container *fakeContainer) (*Controller, *recordingObserver) {
	t.Helper()
	obs := &recordingObserver{}
	opts := Options{Policy: p, Observer: obs}
	if container != nil {
		opts.Measurer = container
	}
	c, err := NewController(opts)
	require.NoError(t, err)
	return c, obs
}

func TestNewControllerDefaults(t *testing.T) {
	c, _ := newTestController(t, Policy{}, nil)
	assert.Equal(t, DefaultPolicy(), c.Policy())
	assert.Equal(t, Angle0, c.CurrentAngle())
	assert.True(t, c.AutoRotationEnabled())
	assert.True(t, c.Enabled())
	assert.False(t, c.IsPortrait())
	assert.True(t, c.ComputeTransform().Identity)
}

func TestNewControllerRejectsInvalidPolicy(t *testing.T) {
	_, err := NewController(Options{Policy: Policy{AutoAngle: Angle180}})
	require.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = NewController(Options{Policy: Policy{Strategy: "stretch"}})
	require.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestControllerPortraitScenario(t *testing.T) {
	container := &fakeContainer{size: ContainerSize{Width: 800, Height: 450}}
	c, obs := newTestController(t, DefaultPolicy(), container)
	src := newFakeSource()
	c.Attach(src)

	src.loadAndFire(1080, 1920)

	assert.Equal(t, Angle90, c.CurrentAngle())
	assert.True(t, c.IsPortrait())
	require.Len(t, obs.transitions, 1)
	assert.Equal(t, transitionRecord{TransitionAutoRotate, Angle0, Angle90}, obs.transitions[0])

	tr := c.ComputeTransform()
	assert.Equal(t, 90, tr.RotationDegrees)
	assert.Equal(t, PositionAbsoluteCentered, tr.Positioning)
	assert.Equal(t, Pixels(450), tr.Width)
	assert.Equal(t, Pixels(800), tr.Height)
	assert.Equal(t, 1.0, tr.ScaleFactor)

	// The user toggles once more: ascending order moves on to 180.
	assert.Equal(t, Angle180, c.Toggle())
	assert.False(t, c.AutoRotationEnabled())

	// A later metadata notification must not re-rotate.
	src.fire()
	src.loadAndFire(1080, 1920)
	assert.Equal(t, Angle180, c.CurrentAngle())

	// Even a new portrait size keeps the manual angle.
	src.loadAndFire(720, 1280)
	assert.Equal(t, Angle180, c.CurrentAngle())
	assert.Equal(t, Size{Width: 720, Height: 1280}, c.State().VideoSize)
}

func TestControllerManualOptOutAtZero(t *testing.T) {
	c, _ := newTestController(t, DefaultPolicy(), nil)
	src := newFakeSource()
	c.Attach(src)

	c.Toggle()
	c.Toggle()
	c.Toggle()
	c.Toggle()
	require.Equal(t, Angle0, c.CurrentAngle())

	src.loadAndFire(1080, 1920)
	assert.Equal(t, Angle0, c.CurrentAngle(), "manual intervention opted out of auto rotation")
}

func TestControllerLandscapeNeverRotates(t *testing.T) {
	sizes := []Size{{1920, 1080}, {1280, 720}, {720, 720}, {4096, 2160}}
	for _, size := range sizes {
		c, _ := newTestController(t, DefaultPolicy(), nil)
		src := newFakeSource()
		c.Attach(src)
		src.loadAndFire(size.Width, size.Height)

		assert.Equal(t, Angle0, c.CurrentAngle(), "%dx%d", size.Width, size.Height)
		assert.False(t, c.IsPortrait())

		c.SetFullscreen(true)
		assert.Equal(t, Angle0, c.CurrentAngle())
	}
}

func TestControllerMetadataBeforeAttach(t *testing.T) {
	c, _ := newTestController(t, DefaultPolicy(), nil)
	src := newFakeSource()
	src.load(1080, 1920)

	c.Attach(src)
	assert.Equal(t, Angle90, c.CurrentAngle())
}

func TestControllerToggleFourTimes(t *testing.T) {
	for _, order := range []CycleOrder{CycleAscending, CycleDescending} {
		p := DefaultPolicy()
		p.Cycle = order
		c, _ := newTestController(t, p, nil)
		src := newFakeSource()
		c.Attach(src)
		src.loadAndFire(1080, 1920)
		start := c.CurrentAngle()

		first := c.Toggle()
		assert.False(t, c.AutoRotationEnabled())
		if order == CycleAscending {
			assert.Equal(t, Angle180, first)
		} else {
			assert.Equal(t, Angle0, first)
		}
		c.Toggle()
		c.Toggle()
		c.Toggle()
		assert.Equal(t, start, c.CurrentAngle(), string(order))
	}
}

func TestControllerReset(t *testing.T) {
	c, _ := newTestController(t, DefaultPolicy(), nil)
	src := newFakeSource()
	c.Attach(src)
	src.loadAndFire(1080, 1920)
	c.Toggle()
	c.SetFullscreen(true)

	c.Reset()
	assert.Equal(t, Angle0, c.CurrentAngle())
	assert.True(t, c.AutoRotationEnabled())
	assert.True(t, c.IsPortrait())

	// Reset does not re-fire detection on an unchanged size.
	src.fire()
	assert.Equal(t, Angle0, c.CurrentAngle())
}

func TestControllerFullscreenFallingEdge(t *testing.T) {
	c, _ := newTestController(t, DefaultPolicy(), nil)
	c.SetFullscreen(true)
	c.Toggle()
	c.Toggle()
	c.Toggle()
	require.Equal(t, Angle270, c.CurrentAngle())

	c.SetFullscreen(false)
	assert.Equal(t, Angle0, c.CurrentAngle())
}

func TestControllerFullscreenTrigger(t *testing.T) {
	p := DefaultPolicy()
	p.Trigger = TriggerOnFullscreen
	p.AutoAngle = Angle270
	c, _ := newTestController(t, p, &fakeContainer{size: ContainerSize{Width: 390, Height: 844}})
	src := newFakeSource()
	c.Attach(src)

	src.loadAndFire(1080, 1920)
	assert.Equal(t, Angle0, c.CurrentAngle(), "inline portrait is only recorded")
	assert.True(t, c.IsPortrait())

	c.SetFullscreen(true)
	assert.Equal(t, Angle270, c.CurrentAngle())

	c.SetFullscreen(false)
	assert.Equal(t, Angle0, c.CurrentAngle())

	c.SetFullscreen(true)
	assert.Equal(t, Angle270, c.CurrentAngle(), "every rising edge re-applies")
}

func TestControllerApplyOrdersMetadataFirst(t *testing.T) {
	p := DefaultPolicy()
	p.Trigger = TriggerOnFullscreen
	c, _ := newTestController(t, p, nil)
	src := newFakeSource()
	c.Attach(src)

	// Metadata loaded but its notification is still queued in this tick.
	src.load(1080, 1920)
	on := true
	c.Apply(Events{MetadataLoaded: true, Fullscreen: &on})

	assert.Equal(t, Angle90, c.CurrentAngle())
	assert.True(t, c.State().Fullscreen)
}

func TestControllerRereadsContainerEachComputation(t *testing.T) {
	container := &fakeContainer{size: ContainerSize{Width: 800, Height: 450}}
	c, obs := newTestController(t, DefaultPolicy(), container)
	src := newFakeSource()
	c.Attach(src)
	src.loadAndFire(1080, 1920)

	first := c.ComputeTransform()
	assert.Equal(t, Pixels(450), first.Width)

	again := c.ComputeTransform()
	assert.Equal(t, first, again)
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)

	// Window resize / fullscreen entry: the container changes under us.
	container.size = ContainerSize{Width: 1920, Height: 1080}
	resized := c.ComputeTransform()
	assert.Equal(t, Pixels(1080), resized.Width)
	assert.Equal(t, Pixels(1920), resized.Height)
	assert.Equal(t, 2, obs.misses)
	assert.Equal(t, 3, container.reads)
}

func TestControllerSetEnabled(t *testing.T) {
	c, err := NewController(Options{Disabled: true, Measurer: &fakeContainer{size: landscapeContainer}})
	require.NoError(t, err)
	src := newFakeSource()
	c.Attach(src)
	src.loadAndFire(1080, 1920)
	assert.Equal(t, Angle0, c.CurrentAngle())
	assert.True(t, c.ComputeTransform().Identity)

	c.SetEnabled(true)
	assert.Equal(t, Angle90, c.CurrentAngle())
	assert.False(t, c.ComputeTransform().Identity)

	c.SetEnabled(false)
	assert.True(t, c.ComputeTransform().Identity)
	assert.Equal(t, Angle90, c.CurrentAngle(), "disabling keeps the angle for later")
}

func TestControllerSetAutoRotationEnabled(t *testing.T) {
	c, _ := newTestController(t, DefaultPolicy(), nil)
	src := newFakeSource()
	c.Attach(src)

	c.SetAutoRotationEnabled(false)
	src.loadAndFire(1080, 1920)
	assert.Equal(t, Angle0, c.CurrentAngle())

	c.SetAutoRotationEnabled(true)
	assert.Equal(t, Angle0, c.CurrentAngle(), "re-enabling does not rotate on its own")

	c.SetFullscreen(true)
	assert.Equal(t, Angle90, c.CurrentAngle())
}

func TestControllerClose(t *testing.T) {
	c, obs := newTestController(t, DefaultPolicy(), nil)
	src := newFakeSource()
	c.Attach(src)

	c.Close()
	assert.True(t, c.Closed())
	assert.Equal(t, 1, src.unsubs)
	assert.Empty(t, src.listeners)

	src.loadAndFire(1080, 1920)
	c.Toggle()
	c.SetFullscreen(true)
	c.Reset()
	assert.Equal(t, Angle0, c.CurrentAngle())
	assert.Empty(t, obs.transitions)

	c.Close()
}
