package handlers

import (
	"sync/atomic"
	"time"

	"media-player/internal/memory"
	"media-player/internal/poster"
	"media-player/internal/session"
	"media-player/internal/startup"
	"media-player/internal/textconv"
)

type Handlers struct {
	sessions  *session.Manager
	posters   *poster.Generator
	text      *textconv.Converter
	memory    *memory.Monitor
	mediaDir  string
	startTime time.Time
	draining  atomic.Bool
}

// New wires the HTTP handlers to their collaborators. posters, text and
// mon may be nil; the matching endpoints then report the feature as unavailable.
func New(sessions *session.Manager, posters *poster.Generator, text *textconv.Converter, mon *memory.Monitor, config *startup.Config) *Handlers {
	return &Handlers{
		sessions:  sessions,
		posters:   posters,
		text:      text,
		memory:    mon,
		mediaDir:  config.MediaDir,
		startTime: time.Now(),
	}
}

// Drain marks the service as shutting down so readiness probes fail
// while in-flight requests complete.
func (h *Handlers) Drain() {
	h.draining.Store(true)
}
