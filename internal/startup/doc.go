// Package startup reads the server configuration and prints the startup and
// shutdown report.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - MEDIA_DIR: Path to media directory (default: /media)
//   - CACHE_DIR: Path to cache directory for posters (default: /cache)
//   - DATABASE_DIR: Path to database directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - SESSION_TTL: Idle time before a player session is closed (default: 30m)
//   - SESSION_SWEEP_INTERVAL: How often idle sessions are swept (default: 1m)
//   - ROTATION_TRIGGER: load or fullscreen (default: load)
//   - ROTATION_CYCLE: ascending or descending toggle order (default: ascending)
//   - ROTATION_AUTO_ANGLE: 90 or 270 (default: 90)
//   - ROTATION_STRATEGY: container, static or fullscreen-swap (default: container)
//   - OPENCC_CONVERSION: OpenCC conversion for search text (default: tw2s)
//   - POSTER_WORKERS: Concurrent poster generations (default: 1.5 per CPU, max 4)
//   - LOG_LEVEL, DEBUG, LOG_FORMAT: see package logging
//   - LOG_HEALTH_CHECKS: Keep probe requests in the access log (default: true)
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: see package memory
//
// Invalid ROTATION_* values are logged and replaced by the default for that
// field; they never stop the server.
//
// The database directory must be writable because it holds the probe cache.
// An unwritable cache directory only disables posters.
//
// Version, Commit and BuildTime are injected with -ldflags and reported by
// [GetBuildInfo].
package startup
