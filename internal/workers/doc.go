/*
Package workers sizes concurrency limits in containerized environments.

runtime.NumCPU reports the host's CPUs even when a cgroup limits the
container to fewer, so sizes are derived from GOMAXPROCS instead:

	n := workers.Resolve(os.Getenv("POSTER_WORKERS"), workers.Mixed, 4)
*/
package workers
