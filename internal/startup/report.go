package startup

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"time"

	"media-player/internal/logging"
	"media-player/internal/memory"
	"media-player/internal/rotation"

	"github.com/gorilla/mux"
)

// Set with -ldflags "-X media-player/internal/startup.Version=..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo is served by /version and exported as app_info.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

const rule = "------------------------------------------------------------"

func section(title string) {
	logging.Info("")
	logging.Info("%s", rule)
	logging.Info("%s", title)
	logging.Info("%s", rule)
}

func printBanner() {
	fmt.Println(rule)
	fmt.Println("  media-player :: rotation engine")
	fmt.Println(rule)
	logging.Info("  Version %s (%s), built %s", Version, Commit, BuildTime)
	logging.Info("  Started %s", time.Now().Format(time.RFC1123))
}

func logSystemInfo() {
	section("SYSTEM")
	procs, cpus := runtime.GOMAXPROCS(0), runtime.NumCPU()
	logging.Info("  %s on %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if procs < cpus {
		logging.Info("  GOMAXPROCS %d of %d CPUs (container limit)", procs, cpus)
	} else {
		logging.Info("  GOMAXPROCS %d", procs)
	}
	if host, err := os.Hostname(); err == nil {
		logging.Debug("  Host %s", host)
	}
}

// LogMemoryConfig reports how GOMEMLIMIT was chosen.
func LogMemoryConfig(result memory.ConfigResult) {
	section("MEMORY")
	switch result.Source {
	case memory.SourceGoMemLimit:
		logging.Info("  GOMEMLIMIT %s (set explicitly)", memory.FormatBytes(result.GoMemLimit))
	case memory.SourceContainer:
		logging.Info("  GOMEMLIMIT %s, %.0f%% of the %s container limit",
			memory.FormatBytes(result.GoMemLimit), result.Ratio*100, memory.FormatBytes(result.ContainerLimit))
	default:
		logging.Info("  No limit (set MEMORY_LIMIT or GOMEMLIMIT)")
	}
}

func LogDatabaseInit(took time.Duration) {
	section("DATABASE")
	logging.Info("  [OK] Probe cache opened in %v", took)
}

// LogProbeInit reports whether ffprobe can be used to learn video sizes
// before the browser reports them.
func LogProbeInit() {
	section("PROBE")
	if err := checkTool("ffprobe"); err != nil {
		logging.Warn("  %v; sessions will wait for the player to report sizes", err)
		return
	}
	logging.Info("  [OK] ffprobe available")
}

func LogPosterInit(enabled bool, workerCount int) {
	if !enabled {
		logging.Info("  Posters disabled: cache directory not writable")
		return
	}
	logging.Info("  Posters: %d workers", workerCount)
	if err := checkTool("ffmpeg"); err != nil {
		logging.Warn("  %v; only sidecar images can be used", err)
		return
	}
	logging.Info("  [OK] ffmpeg available")
}

func LogSessionInit(policy rotation.Policy, ttl, sweepInterval time.Duration) {
	section("PLAYER SESSIONS")
	logging.Info("  Idle sessions close after %v, checked every %v", ttl, sweepInterval)
	logging.Info("  Portrait video turns to %d° on %s", policy.AutoAngle, policy.Trigger)
	logging.Info("  Toggle order %s, fit strategy %s", policy.Cycle, policy.Strategy)
}

func LogTextConversionInit(conversion string, available bool) {
	if !available {
		logging.Warn("  OpenCC unavailable; search text is passed through unchanged")
		return
	}
	logging.Info("  [OK] Search text normalized with OpenCC %s", conversion)
}

// RouteInfo is one method and path pair registered on a router.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes flattens the router into one entry per method. Routes without
// a method matcher are reported as "*".
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tmpl, err := route.GetPathTemplate()
		if err != nil {
			return err
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, m := range methods {
			routes = append(routes, RouteInfo{Method: m, Path: tmpl, Name: route.GetName()})
		}
		return nil
	})
	return routes, err
}

// LogHTTPRoutes prints the route table at debug level, grouped by prefix.
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	section("HTTP")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("  Walking routes: %v", err)
		}
		byGroup := make(map[string][]RouteInfo)
		for _, r := range routes {
			g := routeGroup(r.Path)
			byGroup[g] = append(byGroup[g], r)
		}
		groups := make([]string, 0, len(byGroup))
		for g := range byGroup {
			groups = append(groups, g)
		}
		slices.Sort(groups)
		for _, g := range groups {
			logging.Debug("  [%s]", cmp.Or(g, "root"))
			for _, r := range byGroup[g] {
				logging.Debug("    %-6s %s", r.Method, r.Path)
			}
		}
	}

	if logHealthChecks {
		logging.Info("  Access log includes health checks")
	} else {
		logging.Info("  Access log skips health checks (LOG_HEALTH_CHECKS=false)")
	}
}

// routeGroup names the first path segment, or the first two under /api.
func routeGroup(path string) string {
	first, rest, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if first == "api" && rest != "" {
		sub, _, _ := strings.Cut(rest, "/")
		return "api/" + sub
	}
	return first
}

// ServerConfig is what LogServerStarted prints.
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

func LogServerStarted(config ServerConfig) {
	section("READY")
	logging.Info("  Started in %v", config.StartupDuration)
	logging.Info("  Player API  http://0.0.0.0:%s/api/player/sessions", config.Port)
	if config.MetricsEnabled {
		logging.Info("  Metrics     http://0.0.0.0:%s/metrics", config.MetricsPort)
	}
	logging.Info("%s", rule)
}

func LogShutdownInitiated(signal string) {
	section("SHUTDOWN (" + signal + ")")
}

func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs and exits with status 1.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// checkTool verifies name is on PATH and answers -version within 5s.
func checkTool(name string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("%s -version: %w", name, err)
	}
	first, _, _ := strings.Cut(string(out), "\n")
	logging.Debug("  %s: %s", path, strings.TrimSpace(first))
	return nil
}
