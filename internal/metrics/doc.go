// Package metrics provides Prometheus instrumentation for the media player service.
//
// All metrics are prefixed with "media_player_" and registered with the
// default registry through promauto.
//
// # Metric Categories
//
//   - HTTP: request counts, durations and in-flight requests.
//   - Rotation: transitions by kind, angle changes and transform cache
//     hits/misses, fed by [NewRotationObserver].
//   - Sessions: open sessions, portrait sessions, creations and closes by reason.
//   - Probe: ffprobe runs, durations and dimension cache hits.
//   - Poster: poster generations by source and cache hits.
//   - Text conversion: traditional to simplified conversion outcomes.
//   - Database: query counts and durations by operation.
//
// Gauges that reflect state rather than events are refreshed by a
// [Collector] on a fixed interval.
//
// Call [InitializeMetrics] once at startup so every label combination is
// exported from the first scrape.
package metrics
