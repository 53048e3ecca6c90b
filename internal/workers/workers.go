package workers

import (
	"runtime"
	"strconv"
)

// Load describes how much of a CPU one unit of work keeps busy.
type Load float64

const (
	// CPUBound work saturates a core: one worker per CPU.
	CPUBound Load = 1.0
	// IOBound work mostly waits: two workers per CPU.
	IOBound Load = 2.0
	// Mixed work, such as an ffmpeg extraction followed by an in-process
	// resize, gets one and a half workers per CPU.
	Mixed Load = 1.5
)

// Size returns the worker count for load, capped at ceiling (0 means no
// cap). It is derived from GOMAXPROCS so container CPU limits are honored.
func Size(load Load, ceiling int) int {
	n := max(int(float64(runtime.GOMAXPROCS(0))*float64(load)), 1)
	return capAt(n, ceiling)
}

// Resolve is Size with an explicit override, typically the raw value of an
// environment variable. Overrides that are not positive integers are ignored.
func Resolve(override string, load Load, ceiling int) int {
	if n, err := strconv.Atoi(override); err == nil && n > 0 {
		return capAt(n, ceiling)
	}
	return Size(load, ceiling)
}

func capAt(n, ceiling int) int {
	if ceiling > 0 && n > ceiling {
		return ceiling
	}
	return n
}
