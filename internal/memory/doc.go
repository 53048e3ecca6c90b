// Package memory configures the Go memory limit for containerized
// deployments and pauses poster generation under memory pressure.
//
// # Configuration
//
// Go reads CPU quotas from cgroups but not memory limits, so GOMEMLIMIT
// must be set explicitly. Call [ConfigureFromEnv] first thing in main:
//
//   - GOMEMLIMIT: standard Go variable; takes precedence when set
//   - MEMORY_LIMIT: container limit in bytes or as a quantity such as 2Gi,
//     usually from the Downward API
//   - MEMORY_RATIO: share of MEMORY_LIMIT for the Go heap (default 0.85)
//
// The remainder of the container limit is left for ffmpeg and ffprobe
// subprocesses, which the Go runtime cannot see.
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
//	- name: MEMORY_RATIO
//	  value: "0.75"
//
// # Backpressure
//
// A [Monitor] samples live heap bytes every Interval. Once usage reaches
// PauseAt, [Monitor.Wait] blocks new poster work until usage falls back
// below ResumeBelow:
//
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
//
//	if err := monitor.Wait(ctx); err != nil {
//	    return err
//	}
//
// Player sessions themselves are tiny and are never paused.
package memory
