package handlers

import (
	"net/http"
	"runtime"
	"time"

	"media-player/internal/startup"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
	statusDraining = "draining"
)

// HealthResponse is the /health body. Status is healthy, degraded while
// memory backpressure holds poster work, or draining during shutdown.
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	ActiveSessions   int `json:"activeSessions"`
	PortraitSessions int `json:"portraitSessions"`

	Posters        bool `json:"posters"`
	TextConversion bool `json:"textConversion"`

	MemoryPaused bool    `json:"memoryPaused"`
	MemoryUsage  float64 `json:"memoryUsage,omitempty"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	active, portrait := h.sessions.Stats()
	ready := !h.draining.Load()

	resp := HealthResponse{
		Status:           statusHealthy,
		Ready:            ready,
		Version:          startup.Version,
		Uptime:           time.Since(h.startTime).Round(time.Second).String(),
		ActiveSessions:   active,
		PortraitSessions: portrait,
		Posters:          h.posters != nil && h.posters.Enabled(),
		TextConversion:   h.text != nil && h.text.Available(),
		GoVersion:        runtime.Version(),
		NumCPU:           runtime.NumCPU(),
		NumGoroutine:     runtime.NumGoroutine(),
	}

	if h.memory != nil {
		usage := h.memory.Usage()
		resp.MemoryUsage = usage.Ratio
		resp.MemoryPaused = usage.Paused
		if usage.Paused {
			resp.Status = statusDegraded
		}
	}

	code := http.StatusOK
	if !ready {
		resp.Status = statusDraining
		code = http.StatusServiceUnavailable
	}
	writeJSONCode(w, resp, code)
}

// LivenessCheck answers as long as the process can serve HTTP. HEAD gets
// headers only.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSONStatus(w, "alive", http.StatusOK)
}

// ReadinessCheck fails once shutdown has begun so load balancers stop
// sending new sessions.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.draining.Load() {
		writeJSONStatus(w, "not_ready", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, "ready", http.StatusOK)
}

func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeJSONCode(w, startup.GetBuildInfo(), http.StatusOK)
}

// MetricsHandler serves the default Prometheus registry.
func (h *Handlers) MetricsHandler() http.Handler {
	return promhttp.Handler()
}
