package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_player_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_player_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_player_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Rotation engine metrics
var (
	RotationTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_player_rotation_transitions_total",
			Help: "Total number of rotation state transitions by kind",
		},
		[]string{"transition"},
	)

	RotationAngleChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_player_rotation_angle_changes_total",
			Help: "Total number of transitions that changed the angle, by resulting angle",
		},
		[]string{"angle"},
	)

	TransformComputationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_player_transform_computations_total",
			Help: "Total number of transform requests by cache result",
		},
		[]string{"cache"}, // "hit", "miss"
	)
)

// Session metrics
var (
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_player_sessions_active",
			Help: "Number of open player sessions",
		},
	)

	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_player_sessions_created_total",
			Help: "Total number of player sessions created",
		},
	)

	SessionsClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_player_sessions_closed_total",
			Help: "Total number of player sessions closed by reason",
		},
		[]string{"reason"}, // "deleted", "expired", "shutdown"
	)

	SessionsPortrait = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_player_sessions_portrait",
			Help: "Number of open sessions playing portrait video",
		},
	)
)

// Probe metrics
var (
	ProbeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_player_probe_total",
			Help: "Total number of ffprobe runs by status",
		},
		[]string{"status"},
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_player_probe_duration_seconds",
			Help:    "ffprobe duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ProbeCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_player_probe_cache_hits_total",
			Help: "Total number of video dimension lookups served from the database",
		},
	)

	ProbeCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_player_probe_cache_misses_total",
			Help: "Total number of video dimension lookups that required ffprobe",
		},
	)
)

// Poster metrics
var (
	PosterGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_player_poster_generations_total",
			Help: "Total number of poster generations by source and status",
		},
		[]string{"source", "status"}, // source: "sidecar", "ffmpeg"
	)

	PosterGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_player_poster_generation_duration_seconds",
			Help:    "Poster generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	PosterCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_player_poster_cache_hits_total",
			Help: "Total number of poster cache hits",
		},
	)
)

// Text conversion metrics
var (
	TextConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_player_text_conversions_total",
			Help: "Total number of traditional to simplified conversions by status",
		},
		[]string{"status"}, // "success", "error", "unavailable"
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_player_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_player_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBCachedVideos = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_player_db_cached_videos",
			Help: "Number of videos with cached dimensions",
		},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_player_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_player_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_player_memory_paused",
			Help: "Whether poster generation is paused for memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_player_memory_gc_pauses_total",
			Help: "Total number of times poster generation was paused for memory pressure",
		},
	)
)

// Filesystem metrics
var (
	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_player_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors from network filesystems",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_player_filesystem_retries_total",
			Help: "Total number of retried filesystem operations by outcome",
		},
		[]string{"operation", "volume", "result"}, // result: "success", "failure"
	)
)
