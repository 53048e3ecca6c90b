package session

import (
	"sync"
	"time"

	"media-player/internal/rotation"
)

// Session is one player instance: a rotation controller plus the pushed
// video and container state it observes. All calls are serialized, so
// the controller only ever sees one event at a time.
type Session struct {
	ID   string
	Path string

	mu         sync.Mutex
	controller *rotation.Controller
	source     *videoSource
	container  *reportedContainer
	createdAt  time.Time
	lastSeen   time.Time
	closed     bool
	now        func() time.Time
}

// Snapshot is the externally visible state of a session.
type Snapshot struct {
	ID          string                   `json:"id"`
	Path        string                   `json:"path,omitempty"`
	State       rotation.State           `json:"state"`
	Orientation rotation.Orientation     `json:"orientation"`
	Policy      rotation.Policy          `json:"policy"`
	Enabled     bool                     `json:"enabled"`
	Container   rotation.ContainerSize   `json:"container"`
	Transform   rotation.TransformResult `json:"transform"`
	Style       map[string]string        `json:"style"`
	CreatedAt   time.Time                `json:"createdAt"`
	LastSeen    time.Time                `json:"lastSeen"`
}

// Batch is a set of notifications delivered in the same tick. Metadata
// and container size are recorded before the fullscreen flag is applied.
type Batch struct {
	Metadata   *rotation.Size          `json:"metadata,omitempty"`
	Container  *rotation.ContainerSize `json:"container,omitempty"`
	Fullscreen *bool                   `json:"fullscreen,omitempty"`
}

// Metadata records the video's intrinsic size as a metadata-loaded notification.
func (s *Session) Metadata(size rotation.Size) Snapshot {
	return s.do(func() { s.source.load(size) })
}

// Fullscreen mirrors the host's fullscreen flag.
func (s *Session) Fullscreen(fullscreen bool) Snapshot {
	return s.do(func() { s.controller.SetFullscreen(fullscreen) })
}

// Resize records the container's current rendered size.
func (s *Session) Resize(size rotation.ContainerSize) Snapshot {
	return s.do(func() { s.container.size = size })
}

// Apply delivers a same-tick batch.
func (s *Session) Apply(b Batch) Snapshot {
	return s.do(func() {
		if b.Container != nil {
			s.container.size = *b.Container
		}
		if b.Metadata != nil {
			s.source.set(*b.Metadata)
		}
		s.controller.Apply(rotation.Events{
			MetadataLoaded: b.Metadata != nil,
			Fullscreen:     b.Fullscreen,
		})
	})
}

// Toggle advances the rotation manually.
func (s *Session) Toggle() Snapshot {
	return s.do(func() { s.controller.Toggle() })
}

// Reset returns to angle 0 with auto-rotation enabled.
func (s *Session) Reset() Snapshot {
	return s.do(func() { s.controller.Reset() })
}

// SetAutoRotation enables or disables automatic rotation.
func (s *Session) SetAutoRotation(enabled bool) Snapshot {
	return s.do(func() { s.controller.SetAutoRotationEnabled(enabled) })
}

// SetEnabled switches the rotation engine on or off for this session.
func (s *Session) SetEnabled(enabled bool) Snapshot {
	return s.do(func() { s.controller.SetEnabled(enabled) })
}

// Snapshot returns the current state without changing it.
func (s *Session) Snapshot() Snapshot {
	return s.do(func() {})
}

// Angle returns the current rotation angle.
func (s *Session) Angle() rotation.Angle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.CurrentAngle()
}

// portrait reports the recorded orientation without touching lastSeen.
func (s *Session) portrait() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.IsPortrait()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// loadProbed delivers a size found by the background probe. It is a no-op
// once the session is closed or the browser already reported a size.
func (s *Session) loadProbed(size rotation.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.source.ready {
		return
	}
	s.source.load(size)
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.controller.Close()
}

func (s *Session) do(fn func()) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		fn()
		s.lastSeen = s.now()
	}

	state := s.controller.State()
	transform := s.controller.ComputeTransform()
	return Snapshot{
		ID:          s.ID,
		Path:        s.Path,
		State:       state,
		Orientation: state.Orientation(),
		Policy:      s.controller.Policy(),
		Enabled:     s.controller.Enabled(),
		Container:   s.container.size,
		Transform:   transform,
		Style:       transform.Style(),
		CreatedAt:   s.createdAt,
		LastSeen:    s.lastSeen,
	}
}
