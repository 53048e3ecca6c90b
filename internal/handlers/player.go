package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"os"

	"media-player/internal/logging"
	"media-player/internal/poster"
	"media-player/internal/rotation"
	"media-player/internal/session"

	"github.com/gorilla/mux"
)

// policyRequest overrides the server's rotation policy for one session.
// Empty fields keep the server default.
type policyRequest struct {
	Trigger   string          `json:"trigger,omitempty"`
	Cycle     string          `json:"cycle,omitempty"`
	AutoAngle *rotation.Angle `json:"autoAngle,omitempty"`
	Strategy  string          `json:"strategy,omitempty"`
}

type createSessionRequest struct {
	// Path is relative to the media directory.
	Path       string                  `json:"path,omitempty"`
	Container  *rotation.ContainerSize `json:"container,omitempty"`
	Fullscreen bool                    `json:"fullscreen,omitempty"`
	Metadata   *rotation.Size          `json:"metadata,omitempty"`
	Policy     *policyRequest          `json:"policy,omitempty"`
	Disabled   bool                    `json:"disabled,omitempty"`
}

type fullscreenRequest struct {
	Fullscreen *bool `json:"fullscreen"`
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// TransformResponse is the render instruction for the video element.
type TransformResponse struct {
	Angle     rotation.Angle           `json:"angle"`
	Transform rotation.TransformResult `json:"transform"`
	Style     map[string]string        `json:"style"`
}

// policy merges the request over base, parsing each supplied field.
// Validation happens when the controller is built.
func (p *policyRequest) policy(base rotation.Policy) (rotation.Policy, error) {
	var err error
	if p.Trigger != "" {
		if base.Trigger, err = rotation.ParseTrigger(p.Trigger); err != nil {
			return base, err
		}
	}
	if p.Cycle != "" {
		if base.Cycle, err = rotation.ParseCycleOrder(p.Cycle); err != nil {
			return base, err
		}
	}
	if p.AutoAngle != nil {
		base.AutoAngle = *p.AutoAngle
	}
	if p.Strategy != "" {
		if base.Strategy, err = rotation.ParseStrategy(p.Strategy); err != nil {
			return base, err
		}
	}
	return base, nil
}

func validSize(s *rotation.Size) bool {
	return s == nil || (s.Width >= 0 && s.Height >= 0)
}

func validContainer(c *rotation.ContainerSize) bool {
	if c == nil {
		return true
	}
	for _, v := range []float64{c.Width, c.Height} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// CreateSession opens a player session and returns its first snapshot.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !validSize(req.Metadata) || !validContainer(req.Container) {
		writeJSONError(w, "Sizes must be non-negative", http.StatusBadRequest)
		return
	}

	opts := session.CreateOptions{
		Fullscreen: req.Fullscreen,
		Metadata:   req.Metadata,
		Disabled:   req.Disabled,
	}
	if req.Container != nil {
		opts.Container = *req.Container
	}

	if req.Path != "" {
		fullPath, err := h.resolveVideo(r, req.Path)
		if err != nil {
			status, msg := pathErrorStatus(err)
			logging.Debug("CreateSession: %s: %v", req.Path, err)
			writeJSONError(w, msg, status)
			return
		}
		opts.Path = fullPath
	}

	if req.Policy != nil {
		policy, err := req.Policy.policy(h.sessions.Policy())
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts.Policy = &policy
	}

	s, err := h.sessions.Create(opts)
	if err != nil {
		if errors.Is(err, rotation.ErrInvalidPolicy) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logging.Error("CreateSession failed: %v", err)
		writeJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Location", "/api/player/sessions/"+s.ID)
	writeJSONCode(w, s.Snapshot(), http.StatusCreated)
}

// session looks up the session named in the route, writing a 404 if it is gone.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

// GetSession returns the current snapshot.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSONCode(w, s.Snapshot(), http.StatusOK)
}

// DeleteSession tears the session down.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(mux.Vars(r)["id"]); err != nil {
		writeJSONError(w, "Session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReportMetadata delivers the video's intrinsic size (loadedmetadata).
func (h *Handlers) ReportMetadata(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var size rotation.Size
	if err := decodeJSON(r, &size); err != nil || !validSize(&size) {
		writeJSONError(w, "Body must be {\"width\": n, \"height\": n}", http.StatusBadRequest)
		return
	}
	writeJSONCode(w, s.Metadata(size), http.StatusOK)
}

// SetFullscreen mirrors the host's fullscreen flag (fullscreenchange).
func (h *Handlers) SetFullscreen(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req fullscreenRequest
	if err := decodeJSON(r, &req); err != nil || req.Fullscreen == nil {
		writeJSONError(w, "Body must be {\"fullscreen\": bool}", http.StatusBadRequest)
		return
	}
	writeJSONCode(w, s.Fullscreen(*req.Fullscreen), http.StatusOK)
}

// ResizeContainer records the container's rendered size (resize).
func (h *Handlers) ResizeContainer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var size rotation.ContainerSize
	if err := decodeJSON(r, &size); err != nil || !validContainer(&size) {
		writeJSONError(w, "Body must be {\"width\": n, \"height\": n}", http.StatusBadRequest)
		return
	}
	writeJSONCode(w, s.Resize(size), http.StatusOK)
}

// ApplyEvents delivers notifications that fired in the same tick.
func (h *Handlers) ApplyEvents(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var batch session.Batch
	if err := decodeJSON(r, &batch); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !validSize(batch.Metadata) || !validContainer(batch.Container) {
		writeJSONError(w, "Sizes must be non-negative", http.StatusBadRequest)
		return
	}
	writeJSONCode(w, s.Apply(batch), http.StatusOK)
}

// ToggleRotation advances the angle one step and disables auto-rotation.
func (h *Handlers) ToggleRotation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSONCode(w, s.Toggle(), http.StatusOK)
}

// ResetRotation returns to 0° and re-enables auto-rotation.
func (h *Handlers) ResetRotation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSONCode(w, s.Reset(), http.StatusOK)
}

// SetAutoRotation switches automatic rotation on or off.
func (h *Handlers) SetAutoRotation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req enabledRequest
	if err := decodeJSON(r, &req); err != nil || req.Enabled == nil {
		writeJSONError(w, "Body must be {\"enabled\": bool}", http.StatusBadRequest)
		return
	}
	writeJSONCode(w, s.SetAutoRotation(*req.Enabled), http.StatusOK)
}

// SetRotationEnabled turns the whole engine on or off for the session.
func (h *Handlers) SetRotationEnabled(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req enabledRequest
	if err := decodeJSON(r, &req); err != nil || req.Enabled == nil {
		writeJSONError(w, "Body must be {\"enabled\": bool}", http.StatusBadRequest)
		return
	}
	writeJSONCode(w, s.SetEnabled(*req.Enabled), http.StatusOK)
}

// GetTransform returns only the render instruction.
func (h *Handlers) GetTransform(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	snap := s.Snapshot()
	writeJSONCode(w, TransformResponse{
		Angle:     snap.State.Angle,
		Transform: snap.Transform,
		Style:     snap.Style,
	}, http.StatusOK)
}

// GetPoster serves a still of the session's video rotated to its current angle.
func (h *Handlers) GetPoster(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if s.Path == "" {
		writeJSONError(w, "Session has no video path", http.StatusNotFound)
		return
	}
	if h.posters == nil || !h.posters.Enabled() {
		writeJSONError(w, "Posters are disabled", http.StatusServiceUnavailable)
		return
	}

	data, err := h.posters.Poster(r.Context(), s.Path, s.Angle())
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			logging.Debug("Poster request for %s canceled: %v", s.Path, err)
		case errors.Is(err, poster.ErrDisabled):
			writeJSONError(w, "Posters are disabled", http.StatusServiceUnavailable)
		case errors.Is(err, os.ErrNotExist):
			writeJSONError(w, "File not found", http.StatusNotFound)
		default:
			logging.Error("Poster generation failed for %s: %v", s.Path, err)
			writeJSONError(w, "Failed to generate poster", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(data); err != nil {
		logging.Debug("Poster write failed: %v", err)
	}
}
