package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"media-player/internal/logging"
	"media-player/internal/rotation"
	"media-player/internal/workers"
)

// Config is everything the server reads from its environment.
type Config struct {
	MediaDir    string
	CacheDir    string
	DatabaseDir string

	Port           string
	MetricsPort    string
	MetricsEnabled bool

	// LogHealthChecks keeps probe requests in the access log.
	LogHealthChecks bool

	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	Rotation             rotation.Policy

	// TextConversion is the OpenCC conversion applied to search text.
	TextConversion string

	DatabasePath string
	PosterDir    string

	// PostersEnabled is false when the cache directory cannot be written.
	PostersEnabled bool
	PosterWorkers  int
}

// env reads typed settings from a lookup function, falling back to the
// default and warning when a value does not parse.
type env func(string) string

func (e env) str(key, def string) string {
	if v := e(key); v != "" {
		return v
	}
	return def
}

func (e env) boolean(key string, def bool) bool {
	raw := e(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		logging.Warn("  %s=%q is not a boolean, using %v", key, raw, def)
		return def
	}
	return v
}

func (e env) duration(key string, def time.Duration) time.Duration {
	raw := e(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		logging.Warn("  %s=%q is not a positive duration, using %v", key, raw, def)
		return def
	}
	return v
}

// LoadConfig reads the environment, prepares the working directories and
// logs the result. Only an unusable database directory is fatal.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()
	return load(os.Getenv)
}

func load(getenv env) (*Config, error) {
	section("CONFIGURATION")

	c := &Config{
		MediaDir:             getenv.str("MEDIA_DIR", "/media"),
		CacheDir:             getenv.str("CACHE_DIR", "/cache"),
		DatabaseDir:          getenv.str("DATABASE_DIR", "/database"),
		Port:                 getenv.str("PORT", "8080"),
		MetricsPort:          getenv.str("METRICS_PORT", "9090"),
		MetricsEnabled:       getenv.boolean("METRICS_ENABLED", true),
		LogHealthChecks:      getenv.boolean("LOG_HEALTH_CHECKS", true),
		SessionTTL:           getenv.duration("SESSION_TTL", 30*time.Minute),
		SessionSweepInterval: getenv.duration("SESSION_SWEEP_INTERVAL", time.Minute),
		Rotation:             loadRotationPolicy(getenv),
		TextConversion:       getenv.str("OPENCC_CONVERSION", "tw2s"),
		PosterWorkers:        workers.Resolve(getenv("POSTER_WORKERS"), workers.Mixed, 4),
	}

	for _, kv := range [][2]any{
		{"MEDIA_DIR", c.MediaDir},
		{"CACHE_DIR", c.CacheDir},
		{"DATABASE_DIR", c.DatabaseDir},
		{"PORT", c.Port},
		{"METRICS_PORT", c.MetricsPort},
		{"METRICS_ENABLED", c.MetricsEnabled},
		{"SESSION_TTL", c.SessionTTL},
		{"SESSION_SWEEP_INTERVAL", c.SessionSweepInterval},
		{"ROTATION_TRIGGER", c.Rotation.Trigger},
		{"ROTATION_CYCLE", c.Rotation.Cycle},
		{"ROTATION_AUTO_ANGLE", int(c.Rotation.AutoAngle)},
		{"ROTATION_STRATEGY", c.Rotation.Strategy},
		{"OPENCC_CONVERSION", c.TextConversion},
		{"POSTER_WORKERS", c.PosterWorkers},
		{"LOG_HEALTH_CHECKS", c.LogHealthChecks},
		{"LOG_LEVEL", logging.GetLevel()},
	} {
		logging.Info("  %-23s %v", kv[0].(string)+":", kv[1])
	}

	section("DIRECTORY SETUP")

	for _, dir := range []*string{&c.MediaDir, &c.CacheDir, &c.DatabaseDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", *dir, err)
		}
		*dir = abs
	}
	logging.Info("  Media:    %s", c.MediaDir)
	logging.Info("  Cache:    %s", c.CacheDir)
	logging.Info("  Database: %s", c.DatabaseDir)

	if err := mkdirAll(c.MediaDir); err != nil {
		logging.Warn("  Media directory unavailable: %v", err)
	}

	// The probe cache lives in SQLite, so this one is required.
	if err := mkdirAll(c.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory: %w", err)
	}
	if err := probeWrite(c.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable: %w", err)
	}

	c.DatabasePath = filepath.Join(c.DatabaseDir, "media-player.db")
	c.PosterDir = filepath.Join(c.CacheDir, "posters")
	c.PostersEnabled = writableDir(c.PosterDir)

	logging.Info("")
	logging.Info("  Database: %s", onOff(true))
	logging.Info("  Posters:  %s", onOff(c.PostersEnabled))
	logging.Info("  Metrics:  %s", onOff(c.MetricsEnabled))

	return c, nil
}

// loadRotationPolicy reads the ROTATION_* settings. A bad value is reported
// and only that field keeps its default.
func loadRotationPolicy(getenv env) rotation.Policy {
	p := rotation.DefaultPolicy()

	override := func(key string, apply func(string) error) {
		raw := getenv(key)
		if raw == "" {
			return
		}
		if err := apply(raw); err != nil {
			logging.Warn("  Ignoring %s=%q: %v", key, raw, err)
		}
	}

	override("ROTATION_TRIGGER", func(s string) (err error) {
		p.Trigger, err = parseOr(rotation.ParseTrigger, s, p.Trigger)
		return err
	})
	override("ROTATION_CYCLE", func(s string) (err error) {
		p.Cycle, err = parseOr(rotation.ParseCycleOrder, s, p.Cycle)
		return err
	})
	override("ROTATION_AUTO_ANGLE", func(s string) error {
		a, err := rotation.ParseAngle(s)
		if err != nil {
			return err
		}
		if !a.SwapsAxes() {
			return errors.New("must be 90 or 270")
		}
		p.AutoAngle = a
		return nil
	})
	override("ROTATION_STRATEGY", func(s string) (err error) {
		p.Strategy, err = parseOr(rotation.ParseStrategy, s, p.Strategy)
		return err
	})

	return p
}

func parseOr[T any](parse func(string) (T, error), s string, def T) (T, error) {
	v, err := parse(s)
	if err != nil {
		return def, err
	}
	return v, nil
}

func mkdirAll(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("  Creating %s", dir)
		return os.MkdirAll(dir, 0o755)
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// writableDir creates dir and reports whether files can be written there.
func writableDir(dir string) bool {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logging.Warn("  Cannot create %s: %v", dir, err)
		return false
	}
	if err := probeWrite(dir); err != nil {
		logging.Warn("  %s is not writable: %v", dir, err)
		return false
	}
	return true
}

func probeWrite(dir string) error {
	f, err := os.CreateTemp(dir, ".write-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func onOff(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}
