package middleware

import (
	"net/http"
	"strings"
	"time"

	"media-player/internal/logging"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const sessionsPrefix = "/api/player/sessions/"

// LoggingConfig controls which requests reach the access log.
type LoggingConfig struct {
	// SkipPaths are path prefixes that are never logged.
	SkipPaths []string
	// LogHealthChecks includes probe endpoints, which Kubernetes polls constantly.
	LogHealthChecks bool
}

// DefaultLoggingConfig logs every request except /metrics.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:       []string{"/metrics"},
		LogHealthChecks: true,
	}
}

func (c LoggingConfig) skip(path string) bool {
	if !c.LogHealthChecks && isHealthPath(path) {
		return true
	}
	for _, prefix := range c.SkipPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func isHealthPath(path string) bool {
	switch path {
	case "/health", "/healthz", "/livez", "/readyz":
		return true
	}
	return false
}

// Logger writes one structured access log entry per request. Server errors
// are logged at error level and client errors at warn level.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	access := logging.WithField("log", "access")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			entry := access.WithFields(accessFields(r, rec, time.Since(start)))
			switch {
			case rec.status >= http.StatusInternalServerError:
				entry.Error("request failed")
			case rec.status >= http.StatusBadRequest:
				entry.Warn("request rejected")
			default:
				entry.Info("request")
			}
		})
	}
}

func accessFields(r *http.Request, rec *statusRecorder, elapsed time.Duration) logrus.Fields {
	fields := logrus.Fields{
		"client":      clientIP(r),
		"method":      clean(r.Method),
		"path":        clean(r.URL.Path),
		"status":      rec.status,
		"bytes":       rec.bytes,
		"duration_ms": elapsed.Milliseconds(),
	}
	if q := clean(r.URL.RawQuery); q != "" {
		fields["query"] = q
	}
	if ua := clean(r.UserAgent()); ua != "" {
		fields["user_agent"] = ua
	}
	if id := sessionID(r.URL.Path); id != "" {
		fields["session"] = id
	}
	return fields
}

// sessionID extracts the player session from /api/player/sessions/{id}/...
// Only well-formed UUIDs are returned.
func sessionID(path string) string {
	rest, ok := strings.CutPrefix(path, sessionsPrefix)
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

// clean drops control characters so request data cannot forge log lines.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return clean(strings.TrimSpace(first))
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return clean(xri)
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		host = host[:i]
	}
	return strings.Trim(host, "[]")
}
