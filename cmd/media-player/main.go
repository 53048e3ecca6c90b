package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-player/internal/database"
	"media-player/internal/filesystem"
	"media-player/internal/handlers"
	"media-player/internal/logging"
	"media-player/internal/memory"
	"media-player/internal/metrics"
	"media-player/internal/middleware"
	"media-player/internal/poster"
	"media-player/internal/probe"
	"media-player/internal/session"
	"media-player/internal/startup"
	"media-player/internal/textconv"

	"github.com/gorilla/mux"
)

// components holds everything the shutdown sequence has to stop.
type components struct {
	server        *http.Server
	metricsServer *http.Server
	handlers      *handlers.Handlers
	sessions      *session.Manager
	stopSweeper   context.CancelFunc
	collector     *metrics.Collector
	monitor       *memory.Monitor
	db            *database.Database
}

func main() {
	startTime := time.Now()

	// Configure GOMEMLIMIT before anything allocates heavily
	startup.LogMemoryConfig(memory.ConfigureFromEnv())

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"media":    config.MediaDir,
		"cache":    config.CacheDir,
		"database": config.DatabaseDir,
	}))

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart))

	startup.LogProbeInit()
	prober := probe.New(nil, db)

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	var posters *poster.Generator
	if config.PostersEnabled {
		posters = poster.New(config.PosterDir, config.PosterWorkers).WithGate(monitor)
	} else {
		posters = poster.New("", 0)
	}
	startup.LogPosterInit(config.PostersEnabled, config.PosterWorkers)

	startup.LogSessionInit(config.Rotation, config.SessionTTL, config.SessionSweepInterval)
	sessions := session.NewManager(session.Config{
		Policy:   config.Rotation,
		TTL:      config.SessionTTL,
		Prober:   prober,
		Observer: metrics.NewRotationObserver(),
	})
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go sessions.Run(sweepCtx, config.SessionSweepInterval)

	text := textconv.New(config.TextConversion)
	startup.LogTextConversionInit(config.TextConversion, text.Available())

	// Metrics
	metrics.InitializeMetrics()
	buildInfo := startup.GetBuildInfo()
	metrics.AppInfo.WithLabelValues(buildInfo.Version, buildInfo.Commit, buildInfo.GoVersion).Set(1)

	collector := metrics.NewCollector(statsProvider(sessions, db), time.Minute)
	collector.Start()

	h := handlers.New(sessions, posters, text, monitor, config)
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = startMetricsServer(config.MetricsPort, h)
	}

	done := make(chan struct{})
	go handleShutdown(done, components{
		server:        srv,
		metricsServer: metricsSrv,
		handlers:      h,
		sessions:      sessions,
		stopSweeper:   stopSweeper,
		collector:     collector,
		monitor:       monitor,
		db:            db,
	})

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

// statsProvider feeds the periodic gauges from the session registry and
// the probe cache.
func statsProvider(sessions *session.Manager, db *database.Database) metrics.StatsSource {
	return func(ctx context.Context) metrics.Stats {
		active, portrait := sessions.Stats()
		stats := metrics.Stats{ActiveSessions: active, PortraitSessions: portrait}

		if n, err := db.CountDimensions(ctx); err == nil {
			stats.CachedVideos = n
		} else {
			logging.Debug("Failed to count cached videos: %v", err)
		}
		return stats
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search/normalize", h.NormalizeSearch).Methods("GET")

	// Player sessions
	// mux only reports 405 from a nested subrouter that has its own handler.
	player := api.PathPrefix("/player/sessions").Subrouter()
	player.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)
	player.HandleFunc("", h.CreateSession).Methods("POST")
	player.HandleFunc("/{id}", h.GetSession).Methods("GET")
	player.HandleFunc("/{id}", h.DeleteSession).Methods("DELETE")
	player.HandleFunc("/{id}/metadata", h.ReportMetadata).Methods("POST")
	player.HandleFunc("/{id}/fullscreen", h.SetFullscreen).Methods("POST")
	player.HandleFunc("/{id}/container", h.ResizeContainer).Methods("POST")
	player.HandleFunc("/{id}/events", h.ApplyEvents).Methods("POST")
	player.HandleFunc("/{id}/toggle", h.ToggleRotation).Methods("POST")
	player.HandleFunc("/{id}/reset", h.ResetRotation).Methods("POST")
	player.HandleFunc("/{id}/auto-rotation", h.SetAutoRotation).Methods("PUT")
	player.HandleFunc("/{id}/enabled", h.SetRotationEnabled).Methods("PUT")
	player.HandleFunc("/{id}/transform", h.GetTransform).Methods("GET")
	player.HandleFunc("/{id}/poster", h.GetPoster).Methods("GET")

	return r
}

func startMetricsServer(port string, h *handlers.Handlers) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", h.MetricsHandler())
	metricsMux.HandleFunc("/health", h.LivenessCheck)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      metricsMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server error: %v", err)
		}
	}()
	return srv
}

func handleShutdown(done chan<- struct{}, c components) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())
	shutdown(c)
}

func shutdown(c components) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.handlers.Drain()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := c.server.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Closing player sessions")
	c.stopSweeper()
	c.sessions.Shutdown()
	startup.LogShutdownStepComplete("Player sessions closed")

	startup.LogShutdownStep("Stopping metrics collector")
	c.collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Stopping memory monitor")
	c.monitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	if c.metricsServer != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Closing database")
	if err := c.db.Close(); err != nil {
		logging.Warn("Database close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Database closed")
	}

	startup.LogShutdownComplete()
}
