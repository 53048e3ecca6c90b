package metrics

import (
	"strconv"

	"media-player/internal/rotation"
)

// rotationObserver implements rotation.Observer using the Prometheus
// metrics declared in this package.
type rotationObserver struct{}

// NewRotationObserver creates an observer that records controller events
// into the counters declared in metrics.go.
func NewRotationObserver() rotation.Observer {
	return &rotationObserver{}
}

func (o *rotationObserver) ObserveTransition(t rotation.Transition, from, to rotation.Angle) {
	RotationTransitionsTotal.WithLabelValues(string(t)).Inc()
	if from != to {
		RotationAngleChangesTotal.WithLabelValues(strconv.Itoa(int(to))).Inc()
	}
}

func (o *rotationObserver) ObserveTransform(cached bool) {
	if cached {
		TransformComputationsTotal.WithLabelValues("hit").Inc()
		return
	}
	TransformComputationsTotal.WithLabelValues("miss").Inc()
}
