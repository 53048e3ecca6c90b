package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"media-player/internal/logging"
	"media-player/internal/metrics"
	"media-player/internal/probe"
	"media-player/internal/rotation"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

const probeTimeout = 30 * time.Second

// Prober looks up the intrinsic size of a video file.
type Prober interface {
	Probe(ctx context.Context, path string) (*probe.VideoInfo, error)
}

// Config configures a Manager.
type Config struct {
	// Policy is the default for sessions that do not bring their own.
	Policy rotation.Policy
	// TTL is the idle time after which Sweep closes a session.
	TTL time.Duration
	// Prober fills in video size for sessions created with a path. Optional.
	Prober Prober
	// Observer receives rotation events from every session. Optional.
	Observer rotation.Observer
}

// CreateOptions describes a new session.
type CreateOptions struct {
	// Path is the absolute path of the video on disk. When set and a
	// Prober is configured, its size is probed in the background.
	Path       string
	Policy     *rotation.Policy
	Container  rotation.ContainerSize
	Fullscreen bool
	Metadata   *rotation.Size
	Disabled   bool
}

// Manager owns every open player session.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	config   Config
	now      func() time.Time
	probes   sync.WaitGroup

	// ctx parents every probe; Shutdown cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates an empty session registry.
func NewManager(config Config) *Manager {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		sessions: make(map[string]*Session),
		config:   config,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Policy returns the rotation policy new sessions get by default.
func (m *Manager) Policy() rotation.Policy {
	return m.config.Policy
}

// Create opens a session, applies the initial container, fullscreen and
// metadata values as one batch, and starts a background probe if needed.
func (m *Manager) Create(opts CreateOptions) (*Session, error) {
	policy := m.config.Policy
	if opts.Policy != nil {
		policy = *opts.Policy
	}

	id := uuid.NewString()
	container := &reportedContainer{size: opts.Container}
	controller, err := rotation.NewController(rotation.Options{
		Policy:   policy,
		Measurer: container,
		Observer: m.config.Observer,
		Disabled: opts.Disabled,
		Logger:   logging.WithFields(map[string]interface{}{"component": "rotation", "session": id}),
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	now := m.now()
	s := &Session{
		ID:         id,
		Path:       opts.Path,
		controller: controller,
		source:     newVideoSource(),
		container:  container,
		createdAt:  now,
		lastSeen:   now,
		now:        m.now,
	}
	controller.Attach(s.source)

	batch := Batch{Metadata: opts.Metadata}
	if opts.Fullscreen {
		fullscreen := true
		batch.Fullscreen = &fullscreen
	}
	s.Apply(batch)

	m.mu.Lock()
	m.sessions[id] = s
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.SessionsCreatedTotal.Inc()
	metrics.SessionsActive.Set(float64(count))
	logging.Debug("Session %s created (path=%q, policy=%+v)", id, opts.Path, controller.Policy())

	if opts.Path != "" && m.config.Prober != nil && (opts.Metadata == nil || !opts.Metadata.Known()) {
		m.probes.Add(1)
		go m.probeSession(s)
	}

	return s, nil
}

func (m *Manager) probeSession(s *Session) {
	defer m.probes.Done()

	ctx, cancel := context.WithTimeout(m.ctx, probeTimeout)
	defer cancel()

	info, err := m.config.Prober.Probe(ctx, s.Path)
	if err != nil {
		if m.ctx.Err() != nil {
			logging.Debug("Probe for session %s canceled by shutdown", s.ID)
			return
		}
		logging.Warn("Probe failed for session %s (%s): %v", s.ID, s.Path, err)
		return
	}

	size := info.DisplaySize()
	logging.Debug("Probed session %s: %dx%d (rotation %d)", s.ID, size.Width, size.Height, info.Rotation)
	s.loadProbed(size)
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete closes and removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	s.close()
	metrics.SessionsClosedTotal.WithLabelValues("deleted").Inc()
	metrics.SessionsActive.Set(float64(count))
	logging.Debug("Session %s deleted", id)
	return nil
}

// Sweep closes sessions idle for longer than the TTL and returns how many were removed.
func (m *Manager) Sweep(now time.Time) int {
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) > m.config.TTL {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
		metrics.SessionsClosedTotal.WithLabelValues("expired").Inc()
	}
	if len(expired) > 0 {
		metrics.SessionsActive.Set(float64(count))
		logging.Debug("Swept %d expired sessions (%d remaining)", len(expired), count)
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is canceled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep(m.now())
		case <-ctx.Done():
			return
		}
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Stats counts open sessions and those playing portrait video.
func (m *Manager) Stats() (active, portrait int) {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		if s.portrait() {
			portrait++
		}
	}
	return len(sessions), portrait
}

// Shutdown closes every session, cancels background probes and waits for
// them to return.
func (m *Manager) Shutdown() {
	m.cancel()

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
		metrics.SessionsClosedTotal.WithLabelValues("shutdown").Inc()
	}
	metrics.SessionsActive.Set(0)

	m.probes.Wait()
	logging.Info("Closed %d player sessions", len(sessions))
}
