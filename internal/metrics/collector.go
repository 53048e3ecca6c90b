package metrics

import (
	"context"
	"sync"
	"time"

	"media-player/internal/logging"
)

// Stats is a point-in-time sample for the gauges the collector owns.
type Stats struct {
	ActiveSessions   int
	PortraitSessions int
	CachedVideos     int
}

// StatsSource produces a sample. The context is cancelled when the
// collector stops or the sample takes longer than the collection timeout.
type StatsSource func(ctx context.Context) Stats

// Collector samples a StatsSource on a fixed interval.
type Collector struct {
	source   StatsSource
	interval time.Duration
	timeout  time.Duration

	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewCollector(source StatsSource, interval time.Duration) *Collector {
	return &Collector{
		source:   source,
		interval: interval,
		timeout:  min(interval, 5*time.Second),
		done:     make(chan struct{}),
	}
}

// Start samples once immediately, then every interval until Stop.
func (c *Collector) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx)
}

// Stop ends the loop and waits for an in-flight sample to finish.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() {
		if c.cancel == nil {
			close(c.done)
			return
		}
		c.cancel()
		<-c.done
	})
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)

	tick := time.NewTicker(c.interval)
	defer tick.Stop()

	for {
		c.sample(ctx)
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}

func (c *Collector) sample(ctx context.Context) {
	if c.source == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	s := c.source(ctx)
	SessionsActive.Set(float64(s.ActiveSessions))
	SessionsPortrait.Set(float64(s.PortraitSessions))
	DBCachedVideos.Set(float64(s.CachedVideos))

	logging.WithFields(map[string]interface{}{
		"component": "metrics",
		"sessions":  s.ActiveSessions,
		"portrait":  s.PortraitSessions,
		"cached":    s.CachedVideos,
	}).Debug("gauges updated")
}
