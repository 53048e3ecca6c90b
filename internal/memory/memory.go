package memory

import (
	"context"
	"errors"
	"math"
	"runtime"
	"runtime/debug"
	rtmetrics "runtime/metrics"
	"sync"
	"time"

	"media-player/internal/logging"
	"media-player/internal/metrics"
)

// ErrStopped is returned by Wait when the monitor shuts down mid-pause.
var ErrStopped = errors.New("memory monitor stopped")

// Config tunes the backpressure hysteresis.
type Config struct {
	// Limit in bytes. Zero falls back to GOMEMLIMIT; with neither the
	// monitor never pauses.
	Limit int64
	// PauseAt is the heap/limit ratio at which new work is held back.
	PauseAt float64
	// ResumeBelow is the ratio under which held work is released.
	ResumeBelow float64
	// Interval between samples.
	Interval time.Duration
}

func DefaultConfig() Config {
	return Config{PauseAt: 0.85, ResumeBelow: 0.7, Interval: 5 * time.Second}
}

// Usage is the last sample taken.
type Usage struct {
	HeapBytes int64   `json:"heapBytes"`
	Limit     int64   `json:"limit"`
	Ratio     float64 `json:"ratio"`
	Paused    bool    `json:"paused"`
}

// Monitor samples the heap and holds back poster decoding and resizing
// while usage is above PauseAt.
type Monitor struct {
	cfg  Config
	heap func() uint64

	mu      sync.RWMutex
	usage   Usage
	resumed chan struct{} // closed when a pause ends; replaced on each pause

	stop     chan struct{}
	stopOnce sync.Once
}

func NewMonitor(cfg Config) *Monitor {
	limit := cfg.Limit
	if limit == 0 {
		// SetMemoryLimit(-1) only reads; math.MaxInt64 means unset.
		if l := debug.SetMemoryLimit(-1); l > 0 && l != math.MaxInt64 {
			limit = l
		}
	}
	if limit == 0 {
		logging.Debug("Memory monitor idle: no limit configured")
	}

	return &Monitor{
		cfg:     cfg,
		heap:    liveHeap,
		usage:   Usage{Limit: limit},
		resumed: make(chan struct{}),
		stop:    make(chan struct{}),
	}
}

var heapSample = []rtmetrics.Sample{{Name: "/memory/classes/heap/objects:bytes"}}
var heapSampleMu sync.Mutex

// liveHeap reads heap object bytes without stopping the world.
func liveHeap() uint64 {
	heapSampleMu.Lock()
	defer heapSampleMu.Unlock()
	rtmetrics.Read(heapSample)
	if heapSample[0].Value.Kind() != rtmetrics.KindUint64 {
		return 0
	}
	return heapSample[0].Value.Uint64()
}

// Start samples every Interval until Stop. It is a no-op without a limit.
func (m *Monitor) Start() {
	if m.usage.Limit == 0 {
		return
	}
	go func() {
		t := time.NewTicker(m.cfg.Interval)
		defer t.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-t.C:
				m.sample()
			}
		}
	}()
}

// Stop ends sampling and fails every pending Wait with ErrStopped.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Monitor) sample() {
	heap := min(m.heap(), math.MaxInt64)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.usage.HeapBytes = int64(heap)
	if m.usage.Limit <= 0 {
		return
	}
	m.usage.Ratio = float64(heap) / float64(m.usage.Limit)
	metrics.MemoryUsageRatio.Set(m.usage.Ratio)

	if !m.usage.Paused && m.usage.Ratio >= m.cfg.PauseAt {
		m.usage.Paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryGCPauses.Inc()
		logging.Warn("Heap at %.1f%% of limit, holding poster generation", m.usage.Ratio*100)
		go runtime.GC()
		return
	}
	if m.usage.Paused && m.usage.Ratio < m.cfg.ResumeBelow {
		m.usage.Paused = false
		metrics.MemoryPaused.Set(0)
		logging.Info("Heap back to %.1f%% of limit, resuming poster generation", m.usage.Ratio*100)
		close(m.resumed)
		m.resumed = make(chan struct{})
	}
}

// Wait returns immediately unless paused, then blocks until the pause lifts,
// ctx ends or the monitor stops.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.RLock()
	paused, resumed := m.usage.Paused, m.resumed
	m.mu.RUnlock()
	if !paused {
		return nil
	}

	select {
	case <-resumed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.stop:
		return ErrStopped
	}
}

func (m *Monitor) IsPaused() bool {
	return m.Usage().Paused
}

// Usage returns the last sample.
func (m *Monitor) Usage() Usage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usage
}
