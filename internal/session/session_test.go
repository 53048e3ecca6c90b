package session

import (
	"sync"
	"testing"
	"time"

	"media-player/internal/rotation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, config Config) *Manager {
	t.Helper()
	m := NewManager(config)
	t.Cleanup(m.Shutdown)
	return m
}

func boolPtr(b bool) *bool { return &b }

func TestSessionMetadataRotatesPortrait(t *testing.T) {
	m := newTestManager(t, Config{})
	s, err := m.Create(CreateOptions{Container: rotation.ContainerSize{Width: 800, Height: 450}})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, rotation.Angle0, snap.State.Angle)
	assert.True(t, snap.Transform.Identity)
	assert.Empty(t, snap.Style)
	assert.Equal(t, rotation.OrientationUnknown, snap.Orientation)

	snap = s.Metadata(rotation.Size{Width: 1080, Height: 1920})
	assert.Equal(t, rotation.Angle90, snap.State.Angle)
	assert.Equal(t, rotation.OrientationPortrait, snap.Orientation)
	assert.Equal(t, 90, snap.Transform.RotationDegrees)
	assert.Equal(t, "450px", snap.Style["width"])
	assert.Equal(t, "800px", snap.Style["height"])
}

func TestSessionMetadataLandscapeStaysUnrotated(t *testing.T) {
	m := newTestManager(t, Config{})
	s, err := m.Create(CreateOptions{})
	require.NoError(t, err)

	snap := s.Metadata(rotation.Size{Width: 1920, Height: 1080})
	assert.Equal(t, rotation.Angle0, snap.State.Angle)
	assert.Equal(t, rotation.OrientationLandscape, snap.Orientation)
}

func TestSessionUnknownSizeIgnored(t *testing.T) {
	m := newTestManager(t, Config{})
	s, err := m.Create(CreateOptions{})
	require.NoError(t, err)

	snap := s.Metadata(rotation.Size{Width: 0, Height: 1920})
	assert.Equal(t, rotation.Angle0, snap.State.Angle)
	assert.Equal(t, rotation.OrientationUnknown, snap.Orientation)
}

func TestSessionToggleDisablesAuto(t *testing.T) {
	m := newTestManager(t, Config{})
	s, err := m.Create(CreateOptions{Metadata: &rotation.Size{Width: 1080, Height: 1920}})
	require.NoError(t, err)
	require.Equal(t, rotation.Angle90, s.Angle())

	snap := s.Toggle()
	assert.Equal(t, rotation.Angle180, snap.State.Angle)
	assert.False(t, snap.State.AutoRotationEnabled)

	snap = s.Reset()
	assert.Equal(t, rotation.Angle0, snap.State.Angle)
	assert.True(t, snap.State.AutoRotationEnabled)
}

func TestSessionFullscreenExitResets(t *testing.T) {
	m := newTestManager(t, Config{})
	s, err := m.Create(CreateOptions{Metadata: &rotation.Size{Width: 1080, Height: 1920}})
	require.NoError(t, err)

	s.Fullscreen(true)
	snap := s.Fullscreen(false)
	assert.Equal(t, rotation.Angle0, snap.State.Angle)
	assert.True(t, snap.State.AutoRotationEnabled)
}

func TestSessionApplyBatchOrdering(t *testing.T) {
	policy := rotation.DefaultPolicy()
	policy.Trigger = rotation.TriggerOnFullscreen
	policy.AutoAngle = rotation.Angle270

	m := newTestManager(t, Config{Policy: policy})
	s, err := m.Create(CreateOptions{})
	require.NoError(t, err)

	// Metadata and fullscreen entry in the same tick: the fullscreen edge
	// must see the portrait orientation recorded by the metadata.
	snap := s.Apply(Batch{
		Metadata:   &rotation.Size{Width: 720, Height: 1280},
		Container:  &rotation.ContainerSize{Width: 1920, Height: 1080},
		Fullscreen: boolPtr(true),
	})
	assert.Equal(t, rotation.Angle270, snap.State.Angle)
	assert.True(t, snap.State.Fullscreen)
	assert.Equal(t, rotation.ContainerSize{Width: 1920, Height: 1080}, snap.Container)
	assert.Equal(t, "1080px", snap.Style["width"])
}

func TestSessionResizeRecomputesTransform(t *testing.T) {
	m := newTestManager(t, Config{})
	s, err := m.Create(CreateOptions{
		Container: rotation.ContainerSize{Width: 800, Height: 450},
		Metadata:  &rotation.Size{Width: 1080, Height: 1920},
	})
	require.NoError(t, err)

	snap := s.Resize(rotation.ContainerSize{Width: 1280, Height: 720})
	assert.Equal(t, "720px", snap.Style["width"])
	assert.Equal(t, "1280px", snap.Style["height"])
	assert.Equal(t, rotation.Angle90, snap.State.Angle)
}

func TestSessionSetEnabled(t *testing.T) {
	m := newTestManager(t, Config{})
	s, err := m.Create(CreateOptions{Disabled: true})
	require.NoError(t, err)

	snap := s.Metadata(rotation.Size{Width: 1080, Height: 1920})
	assert.False(t, snap.Enabled)
	assert.Equal(t, rotation.Angle0, snap.State.Angle)
	assert.True(t, snap.Transform.Identity)

	snap = s.SetEnabled(true)
	assert.True(t, snap.Enabled)
	assert.Equal(t, rotation.Angle90, snap.State.Angle)
}

func TestSessionSetAutoRotation(t *testing.T) {
	m := newTestManager(t, Config{})
	s, err := m.Create(CreateOptions{})
	require.NoError(t, err)

	snap := s.SetAutoRotation(false)
	assert.False(t, snap.State.AutoRotationEnabled)

	snap = s.Metadata(rotation.Size{Width: 1080, Height: 1920})
	assert.Equal(t, rotation.Angle0, snap.State.Angle)
	assert.True(t, snap.State.Portrait)
}

func TestSessionClosedIgnoresEvents(t *testing.T) {
	m := newTestManager(t, Config{})
	s, err := m.Create(CreateOptions{})
	require.NoError(t, err)
	require.NoError(t, m.Delete(s.ID))

	before := s.Snapshot().LastSeen
	snap := s.Toggle()
	assert.Equal(t, rotation.Angle0, snap.State.Angle)
	assert.Equal(t, before, snap.LastSeen)

	s.loadProbed(rotation.Size{Width: 1080, Height: 1920})
	assert.Equal(t, rotation.Angle0, s.Angle())
}

func TestSessionConcurrentEvents(t *testing.T) {
	m := newTestManager(t, Config{})
	s, err := m.Create(CreateOptions{
		Container: rotation.ContainerSize{Width: 800, Height: 450},
		Metadata:  &rotation.Size{Width: 1080, Height: 1920},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 4; j++ {
				s.Toggle()
				s.Snapshot()
			}
		}()
	}
	wg.Wait()

	// 32 toggles from 90 walk the cycle 8 full times.
	snap := s.Snapshot()
	assert.Equal(t, rotation.Angle90, snap.State.Angle)
	assert.True(t, snap.State.Angle.Valid())
}

func TestSnapshotTouchesLastSeen(t *testing.T) {
	m := newTestManager(t, Config{})
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	s, err := m.Create(CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, clock, s.Snapshot().CreatedAt)

	clock = clock.Add(time.Minute)
	assert.Equal(t, clock, s.Snapshot().LastSeen)
}
