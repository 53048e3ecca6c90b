package metrics

import (
	"context"
	"testing"
	"time"

	"media-player/internal/rotation"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRotationObserverCountsTransitions(t *testing.T) {
	obs := NewRotationObserver()

	before := testutil.ToFloat64(RotationTransitionsTotal.WithLabelValues(string(rotation.TransitionToggle)))
	beforeAngle := testutil.ToFloat64(RotationAngleChangesTotal.WithLabelValues("180"))

	obs.ObserveTransition(rotation.TransitionToggle, rotation.Angle90, rotation.Angle180)

	if got := testutil.ToFloat64(RotationTransitionsTotal.WithLabelValues(string(rotation.TransitionToggle))); got != before+1 {
		t.Errorf("toggle transitions = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(RotationAngleChangesTotal.WithLabelValues("180")); got != beforeAngle+1 {
		t.Errorf("angle changes to 180 = %v, want %v", got, beforeAngle+1)
	}
}

func TestRotationObserverSkipsUnchangedAngle(t *testing.T) {
	obs := NewRotationObserver()
	before := testutil.ToFloat64(RotationAngleChangesTotal.WithLabelValues("0"))

	obs.ObserveTransition(rotation.TransitionSizeKnown, rotation.Angle0, rotation.Angle0)

	if got := testutil.ToFloat64(RotationAngleChangesTotal.WithLabelValues("0")); got != before {
		t.Errorf("angle changes = %v, want unchanged %v", got, before)
	}
}

func TestRotationObserverTransformCache(t *testing.T) {
	obs := NewRotationObserver()
	hits := testutil.ToFloat64(TransformComputationsTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(TransformComputationsTotal.WithLabelValues("miss"))

	obs.ObserveTransform(true)
	obs.ObserveTransform(false)
	obs.ObserveTransform(false)

	if got := testutil.ToFloat64(TransformComputationsTotal.WithLabelValues("hit")); got != hits+1 {
		t.Errorf("hits = %v, want %v", got, hits+1)
	}
	if got := testutil.ToFloat64(TransformComputationsTotal.WithLabelValues("miss")); got != misses+2 {
		t.Errorf("misses = %v, want %v", got, misses+2)
	}
}

func TestInitializeMetricsDoesNotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("InitializeMetrics panicked: %v", r)
		}
	}()
	InitializeMetrics()
	InitializeMetrics()
}

func TestCollectorUpdatesGauges(t *testing.T) {
	sampled := make(chan struct{}, 1)
	source := StatsSource(func(ctx context.Context) Stats {
		select {
		case sampled <- struct{}{}:
		default:
		}
		return Stats{ActiveSessions: 3, PortraitSessions: 2, CachedVideos: 7}
	})

	c := NewCollector(source, time.Hour)
	c.Start()

	select {
	case <-sampled:
	case <-time.After(time.Second):
		t.Fatal("no sample taken on start")
	}
	// Stop waits for the in-flight sample, so the gauges are written.
	c.Stop()

	if got := testutil.ToFloat64(SessionsActive); got != 3 {
		t.Errorf("SessionsActive = %v, want 3", got)
	}
	if got := testutil.ToFloat64(SessionsPortrait); got != 2 {
		t.Errorf("SessionsPortrait = %v, want 2", got)
	}
	if got := testutil.ToFloat64(DBCachedVideos); got != 7 {
		t.Errorf("DBCachedVideos = %v, want 7", got)
	}
}

func TestCollectorSourceSeesCancellation(t *testing.T) {
	started := make(chan struct{})
	source := StatsSource(func(ctx context.Context) Stats {
		close(started)
		<-ctx.Done()
		return Stats{}
	})

	c := NewCollector(source, time.Hour)
	c.Start()
	<-started

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not cancel the running sample")
	}
}

func TestCollectorStopIsIdempotent(t *testing.T) {
	NewCollector(nil, time.Hour).Stop()

	c := NewCollector(nil, time.Hour)
	c.Start()
	c.Stop()
	c.Stop()
}
