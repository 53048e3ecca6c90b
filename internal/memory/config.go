package memory

import (
	"fmt"
	"math"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"media-player/internal/logging"
)

// DefaultHeapRatio is the share of the container limit given to the Go
// heap. ffmpeg, ffprobe and SQLite live in the rest.
const DefaultHeapRatio = 0.85

// LimitSource records where the effective GOMEMLIMIT came from.
type LimitSource string

const (
	SourceNone       LimitSource = "none"
	SourceGoMemLimit LimitSource = "GOMEMLIMIT"
	SourceContainer  LimitSource = "MEMORY_LIMIT"
)

// ConfigResult describes the memory limit chosen at startup.
type ConfigResult struct {
	Source         LimitSource
	ContainerLimit int64 // bytes, SourceContainer only
	GoMemLimit     int64 // bytes, 0 when no limit applies
	Ratio          float64
}

// Configured reports whether a limit is in effect.
func (r ConfigResult) Configured() bool {
	return r.GoMemLimit > 0
}

// ConfigureFromEnv applies GOMEMLIMIT for the process. Call it before the
// first large allocation.
func ConfigureFromEnv() ConfigResult {
	return Configure(os.Getenv, debug.SetMemoryLimit)
}

// Configure derives the limit from getenv and applies it with setLimit.
// An explicit GOMEMLIMIT was already applied by the runtime and is only
// read back. Otherwise MEMORY_LIMIT (bytes or a Kubernetes quantity such as
// 512Mi) is scaled by MEMORY_RATIO.
func Configure(getenv func(string) string, setLimit func(int64) int64) ConfigResult {
	if raw := getenv("GOMEMLIMIT"); raw != "" {
		r := ConfigResult{Source: SourceGoMemLimit}
		if l := setLimit(-1); l > 0 && l != math.MaxInt64 {
			r.GoMemLimit = l
		}
		logging.Info("GOMEMLIMIT=%s from environment", raw)
		return r
	}

	raw := getenv("MEMORY_LIMIT")
	if raw == "" {
		return ConfigResult{Source: SourceNone}
	}
	container, err := ParseQuantity(raw)
	if err != nil {
		logging.Warn("Ignoring MEMORY_LIMIT: %v", err)
		return ConfigResult{Source: SourceNone}
	}

	ratio := heapRatio(getenv("MEMORY_RATIO"))
	limit := int64(float64(container) * ratio)
	setLimit(limit)

	logging.Info("GOMEMLIMIT=%s (%.0f%% of %s)", FormatBytes(limit), ratio*100, FormatBytes(container))
	return ConfigResult{Source: SourceContainer, ContainerLimit: container, GoMemLimit: limit, Ratio: ratio}
}

func heapRatio(raw string) float64 {
	if raw == "" {
		return DefaultHeapRatio
	}
	r, err := strconv.ParseFloat(raw, 64)
	if err != nil || r <= 0 || r > 1 {
		logging.Warn("MEMORY_RATIO=%q must be in (0, 1], using %.2f", raw, DefaultHeapRatio)
		return DefaultHeapRatio
	}
	return r
}

var quantitySuffixes = []struct {
	suffix string
	mult   int64
}{
	{"Ki", 1 << 10}, {"Mi", 1 << 20}, {"Gi", 1 << 30}, {"Ti", 1 << 40},
	{"k", 1e3}, {"K", 1e3}, {"M", 1e6}, {"G", 1e9}, {"T", 1e12},
}

// ParseQuantity parses a positive byte count, optionally with a binary
// (Ki, Mi, Gi, Ti) or decimal (k, M, G, T) suffix.
func ParseQuantity(s string) (int64, error) {
	s = strings.TrimSpace(s)
	mult := int64(1)
	for _, q := range quantitySuffixes {
		if strings.HasSuffix(s, q.suffix) {
			s, mult = strings.TrimSuffix(s, q.suffix), q.mult
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 || n > math.MaxInt64/mult {
		return 0, fmt.Errorf("invalid byte quantity %q", s)
	}
	return n * mult, nil
}

// FormatBytes renders b with IEC units, e.g. "870.0 MiB".
func FormatBytes(b int64) string {
	if b < 1024 {
		return strconv.FormatInt(b, 10) + " B"
	}
	v, unit := float64(b), -1
	for v >= 1024 && unit < 5 {
		v /= 1024
		unit++
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + " " + string("KMGTPE"[unit]) + "iB"
}
