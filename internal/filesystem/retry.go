package filesystem

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"time"

	"media-player/internal/logging"
	"media-player/internal/metrics"
)

var defaultResolver atomic.Pointer[VolumeResolver]

// SetDefaultVolumeResolver sets the resolver used when a RetryConfig has none.
func SetDefaultVolumeResolver(vr *VolumeResolver) {
	defaultResolver.Store(vr)
}

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// VolumeResolver overrides the package-level resolver.
	VolumeResolver *VolumeResolver
}

// DefaultRetryConfig returns the retry settings used for media and cache files.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

func (c RetryConfig) volume(path string) string {
	if c.VolumeResolver != nil {
		return c.VolumeResolver.Resolve(path)
	}
	return defaultResolver.Load().Resolve(path)
}

// isStale reports whether err is an NFS stale file handle error.
func isStale(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == syscall.ESTALE
}

// Stat is os.Stat retried on stale NFS handles.
func Stat(ctx context.Context, path string) (os.FileInfo, error) {
	return StatWithRetry(ctx, path, DefaultRetryConfig())
}

// StatWithRetry is Stat with explicit retry settings.
func StatWithRetry(ctx context.Context, path string, config RetryConfig) (os.FileInfo, error) {
	return withRetry(ctx, "stat", path, config, os.Stat)
}

// Open is os.Open retried on stale NFS handles.
func Open(ctx context.Context, path string) (*os.File, error) {
	return withRetry(ctx, "open", path, DefaultRetryConfig(), os.Open)
}

// withRetry runs fn until it succeeds, fails with a non-ESTALE error, the
// retries are exhausted or ctx ends. Backoff doubles up to MaxBackoff.
func withRetry[T any](ctx context.Context, op, path string, config RetryConfig, fn func(string) (T, error)) (T, error) {
	backoff := config.InitialBackoff
	var volume string

	for attempt := 0; ; attempt++ {
		result, err := fn(path)
		if err == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", op, attempt, path)
				metrics.FilesystemRetriesTotal.WithLabelValues(op, volume, "success").Inc()
			}
			return result, nil
		}
		if !isStale(err) {
			return result, err
		}

		if volume == "" {
			volume = config.volume(path)
		}
		metrics.FilesystemStaleErrors.WithLabelValues(op, volume).Inc()

		if attempt >= config.MaxRetries {
			logging.Warn("NFS %s failed after %d retries for %s: %v", op, config.MaxRetries, path, err)
			metrics.FilesystemRetriesTotal.WithLabelValues(op, volume, "failure").Inc()
			return result, err
		}

		logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
			op, path, backoff, attempt+1, config.MaxRetries)

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		}

		backoff *= 2
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}
}
