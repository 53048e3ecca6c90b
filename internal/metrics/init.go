package metrics

import (
	"strconv"

	"media-player/internal/rotation"
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, t := range rotation.Transitions {
		RotationTransitionsTotal.WithLabelValues(string(t))
	}
	for _, a := range rotation.Angles {
		RotationAngleChangesTotal.WithLabelValues(strconv.Itoa(int(a)))
	}
	for _, c := range []string{"hit", "miss"} {
		TransformComputationsTotal.WithLabelValues(c)
	}

	for _, reason := range []string{"deleted", "expired", "shutdown"} {
		SessionsClosedTotal.WithLabelValues(reason)
	}

	for _, status := range []string{"success", "error"} {
		ProbeTotal.WithLabelValues(status)
	}

	for _, source := range []string{"sidecar", "ffmpeg"} {
		for _, status := range []string{"success", "error"} {
			PosterGenerationsTotal.WithLabelValues(source, status)
		}
	}

	for _, status := range []string{"success", "error", "unavailable"} {
		TextConversionsTotal.WithLabelValues(status)
	}

	for _, op := range []string{"migrate", "get_dimensions", "save_dimensions", "count_dimensions"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, op := range []string{"stat", "open"} {
		for _, volume := range []string{"media", "cache", "database"} {
			FilesystemStaleErrors.WithLabelValues(op, volume)
			for _, result := range []string{"success", "failure"} {
				FilesystemRetriesTotal.WithLabelValues(op, volume, result)
			}
		}
	}
}
