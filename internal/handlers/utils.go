package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"media-player/internal/filesystem"
	"media-player/internal/logging"
	"media-player/internal/mediatypes"
)

// maxBodyBytes bounds JSON request bodies; player events are tiny.
const maxBodyBytes = 64 << 10

var (
	errInvalidPath = errors.New("invalid path")
	errNotVideo    = errors.New("not a video file")
)

type errorBody struct {
	Error string `json:"error"`
}

type statusBody struct {
	Status string `json:"status"`
}

// writeJSONCode sends v with the given status. Encoding failures can only
// be logged once the header is out.
func writeJSONCode(w http.ResponseWriter, v interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Writing JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, message string, code int) {
	writeJSONCode(w, errorBody{Error: message}, code)
}

// MethodNotAllowed answers a known path requested with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, "Method "+r.Method+" not allowed", http.StatusMethodNotAllowed)
}

func writeJSONStatus(w http.ResponseWriter, status string, code int) {
	writeJSONCode(w, statusBody{Status: status}, code)
}

// decodeJSON reads a single JSON value from the request body. An empty
// body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// isSubPath reports whether child is parent or lies beneath it.
func isSubPath(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveVideo maps a path relative to the media directory to an existing
// video file on disk.
func (h *Handlers) resolveVideo(r *http.Request, rel string) (string, error) {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	if rel == "" {
		return "", errInvalidPath
	}

	fullPath := filepath.Join(h.mediaDir, filepath.FromSlash(rel))
	if !isSubPath(h.mediaDir, fullPath) {
		return "", errInvalidPath
	}

	info, err := filesystem.Stat(r.Context(), fullPath)
	if err != nil {
		return "", err
	}
	if info.IsDir() || !mediatypes.IsVideo(fullPath) {
		return "", errNotVideo
	}
	return fullPath, nil
}

// pathErrorStatus maps resolveVideo errors to HTTP status codes.
func pathErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidPath):
		return http.StatusBadRequest, "Invalid path"
	case errors.Is(err, errNotVideo):
		return http.StatusUnsupportedMediaType, "Not a video file"
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound, "File not found"
	default:
		return http.StatusInternalServerError, "File not accessible"
	}
}
