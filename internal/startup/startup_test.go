package startup

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"media-player/internal/logging"
	"media-player/internal/rotation"

	"github.com/gorilla/mux"
)

func vars(m map[string]string) env {
	return func(key string) string { return m[key] }
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version == "" || info.OS == "" || info.Arch == "" {
		t.Errorf("incomplete build info: %+v", info)
	}
	if info.GoVersion != GoVersion {
		t.Errorf("GoVersion = %s, want %s", info.GoVersion, GoVersion)
	}
}

func TestEnvStr(t *testing.T) {
	e := vars(map[string]string{"SET": "custom", "EMPTY": ""})
	for key, want := range map[string]string{"SET": "custom", "EMPTY": "default", "UNSET": "default"} {
		if got := e.str(key, "default"); got != want {
			t.Errorf("str(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestEnvBoolean(t *testing.T) {
	tests := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"0", true, false},
		{"1", false, true},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		e := vars(map[string]string{"B": tt.raw})
		if got := e.boolean("B", tt.def); got != tt.want {
			t.Errorf("boolean(%q, %v) = %v, want %v", tt.raw, tt.def, got, tt.want)
		}
	}
}

func TestEnvDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"":     time.Minute,
		"45s":  45 * time.Second,
		"soon": time.Minute,
		"0s":   time.Minute,
		"-5m":  time.Minute,
	}
	for raw, want := range tests {
		e := vars(map[string]string{"D": raw})
		if got := e.duration("D", time.Minute); got != want {
			t.Errorf("duration(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestLoadRotationPolicy(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want rotation.Policy
	}{
		{
			name: "defaults",
			vars: map[string]string{},
			want: rotation.DefaultPolicy(),
		},
		{
			name: "all overridden",
			vars: map[string]string{
				"ROTATION_TRIGGER":    "fullscreen",
				"ROTATION_CYCLE":      "descending",
				"ROTATION_AUTO_ANGLE": "270",
				"ROTATION_STRATEGY":   "static",
			},
			want: rotation.Policy{
				Trigger:   rotation.TriggerOnFullscreen,
				Cycle:     rotation.CycleDescending,
				AutoAngle: rotation.Angle270,
				Strategy:  rotation.StrategyStaticScale,
			},
		},
		{
			name: "bad values keep per-field defaults",
			vars: map[string]string{
				"ROTATION_TRIGGER":    "sometimes",
				"ROTATION_CYCLE":      "descending",
				"ROTATION_AUTO_ANGLE": "180",
				"ROTATION_STRATEGY":   "stretch",
			},
			want: rotation.Policy{
				Trigger:   rotation.TriggerOnLoad,
				Cycle:     rotation.CycleDescending,
				AutoAngle: rotation.Angle90,
				Strategy:  rotation.StrategyContainerRelative,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loadRotationPolicy(vars(tt.vars))
			if got != tt.want {
				t.Errorf("loadRotationPolicy() = %+v, want %+v", got, tt.want)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("loaded policy invalid: %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	config, err := load(vars(map[string]string{
		"MEDIA_DIR":           filepath.Join(root, "media"),
		"CACHE_DIR":           filepath.Join(root, "cache"),
		"DATABASE_DIR":        filepath.Join(root, "db"),
		"PORT":                "9000",
		"SESSION_TTL":         "10m",
		"ROTATION_AUTO_ANGLE": "270",
		"POSTER_WORKERS":      "2",
		"LOG_HEALTH_CHECKS":   "false",
	}))
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if config.Port != "9000" {
		t.Errorf("Port = %q, want 9000", config.Port)
	}
	if config.SessionTTL != 10*time.Minute {
		t.Errorf("SessionTTL = %v, want 10m", config.SessionTTL)
	}
	if config.SessionSweepInterval != time.Minute {
		t.Errorf("SessionSweepInterval = %v, want 1m", config.SessionSweepInterval)
	}
	if config.Rotation.AutoAngle != rotation.Angle270 {
		t.Errorf("Rotation.AutoAngle = %d, want 270", config.Rotation.AutoAngle)
	}
	if config.LogHealthChecks {
		t.Error("LogHealthChecks = true, want false")
	}
	if config.DatabasePath != filepath.Join(root, "db", "media-player.db") {
		t.Errorf("DatabasePath = %q", config.DatabasePath)
	}
	if !config.PostersEnabled {
		t.Error("PostersEnabled = false with a writable cache dir")
	}
	if _, err := os.Stat(config.PosterDir); err != nil {
		t.Errorf("poster dir not created: %v", err)
	}
	if config.PosterWorkers != 2 {
		t.Errorf("PosterWorkers = %d, want 2", config.PosterWorkers)
	}
	if config.TextConversion != "tw2s" {
		t.Errorf("TextConversion = %q, want tw2s", config.TextConversion)
	}
	if _, err := os.Stat(config.MediaDir); err != nil {
		t.Errorf("media dir not created: %v", err)
	}
}

func TestLoadDatabaseDirIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := load(vars(map[string]string{
		"MEDIA_DIR":    root,
		"CACHE_DIR":    filepath.Join(root, "cache"),
		"DATABASE_DIR": file,
	}))
	if err == nil {
		t.Error("expected error when DATABASE_DIR is a file")
	}
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	root := t.TempDir()
	t.Setenv("MEDIA_DIR", root)
	t.Setenv("CACHE_DIR", filepath.Join(root, "cache"))
	t.Setenv("DATABASE_DIR", filepath.Join(root, "db"))
	t.Setenv("OPENCC_CONVERSION", "hk2s")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.TextConversion != "hk2s" {
		t.Errorf("TextConversion = %q, want hk2s", config.TextConversion)
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	noop := func(http.ResponseWriter, *http.Request) {}
	router.HandleFunc("/api/player/sessions", noop).Methods("POST").Name("create")
	router.HandleFunc("/api/player/sessions/{id}", noop).Methods("GET", "DELETE")
	router.HandleFunc("/health", noop)

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	if len(routes) != 4 {
		t.Fatalf("got %d routes, want 4: %+v", len(routes), routes)
	}
	if routes[0].Name != "create" || routes[0].Method != "POST" {
		t.Errorf("first route = %+v", routes[0])
	}
	if routes[3].Method != "*" {
		t.Errorf("route without methods = %q, want *", routes[3].Method)
	}
}

func TestRouteGroup(t *testing.T) {
	tests := map[string]string{
		"/api/player/sessions/{id}": "api/player",
		"/api/search/normalize":     "api/search",
		"/health":                   "health",
		"/":                         "",
		"/api":                      "api",
	}
	for path, want := range tests {
		if got := routeGroup(path); got != want {
			t.Errorf("routeGroup(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestSectionLogsTitleVerbatim(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	t.Cleanup(func() { logging.SetOutput(os.Stderr) })

	section("Poster cache 100% warm")

	out := buf.String()
	if !strings.Contains(out, "Poster cache 100% warm") || strings.Contains(out, "%!") {
		t.Errorf("section output = %q", out)
	}
}
