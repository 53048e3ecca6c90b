// Package main provides the entry point for the Media Player backend.
//
// Media Player serves the HTTP API behind a browser video player. Each
// player on a page opens a session; the browser reports what it sees
// (metadata loaded, fullscreen changes, container resizes, rotate clicks)
// and renders the transform the session returns. Portrait video is turned
// sideways so it fills a landscape container.
//
// # Application Lifecycle
//
//  1. Memory Configuration: Sets GOMEMLIMIT from environment or cgroup limits
//  2. Configuration Loading: Reads environment variables and validates directories
//  3. Database Initialization: Opens the SQLite probe cache
//  4. Component Initialization:
//     - Prober: ffprobe-based size and rotation detection
//     - Memory Monitor: Pauses poster decoding under memory pressure
//     - Poster Generator: Rotated still images (if the cache is writable)
//     - Session Manager: Player sessions with idle expiry
//     - Text Converter: OpenCC search normalization
//     - Metrics Collector: Session and cache gauges
//  5. HTTP Server Setup: Routes, middleware, and the optional metrics server
//  6. Graceful Shutdown: Handles SIGINT/SIGTERM and closes every session
//
// # Environment Variables
//
//   - MEDIA_DIR: Root directory containing video files (default: /media)
//   - CACHE_DIR: Directory for poster images (default: /cache)
//   - DATABASE_DIR: Directory for the SQLite database (default: /database)
//   - PORT: Main HTTP server port (default: 8080)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: true)
//   - SESSION_TTL: Idle time before a session is closed (default: 30m)
//   - SESSION_SWEEP_INTERVAL: How often idle sessions are swept (default: 1m)
//   - ROTATION_TRIGGER: load or fullscreen (default: load)
//   - ROTATION_CYCLE: ascending or descending (default: ascending)
//   - ROTATION_AUTO_ANGLE: 90 or 270 (default: 90)
//   - ROTATION_STRATEGY: container, static or fullscreen-swap (default: container)
//   - OPENCC_CONVERSION: OpenCC conversion for search text (default: tw2s)
//   - POSTER_WORKERS: Concurrent poster generations
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//   - GOMEMLIMIT, MEMORY_LIMIT, MEMORY_RATIO: Memory limit configuration
//
// # Build Requirements
//
// CGO is required for SQLite. FFmpeg and FFprobe are optional at runtime:
// without them sessions wait for the browser to report the video size and
// only sidecar posters are served.
//
//	go build -o media-player ./cmd/media-player
package main
