package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"audio-relay/internal/catalog"
	"audio-relay/internal/extractor"
	"audio-relay/internal/handlers"
	"audio-relay/internal/logging"
	"audio-relay/internal/metrics"
	"audio-relay/internal/middleware"
	"audio-relay/internal/startup"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 30 * time.Second

	metricsReadTimeout  = 10 * time.Second
	metricsWriteTimeout = 10 * time.Second
	metricsIdleTimeout  = 30 * time.Second
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	buildInfo := startup.GetBuildInfo()
	metrics.InitializeMetrics()
	metrics.SetAppInfo(buildInfo.Version, buildInfo.Commit, buildInfo.GoVersion)

	producerOK := startup.LogProducerInit(config.YtDlpPath)
	launcher := extractor.New(extractor.DefaultConfig(config.YtDlpPath))

	searcher, err := extractor.NewSearcher(extractor.DefaultSearcherConfig(config.YtDlpPath))
	if err != nil {
		startup.LogFatal("Failed to initialize title lookup: %v", err)
	}

	cat, err := catalog.New(catalog.DefaultConfig(config.SpotifyClientID, config.SpotifyClientSecret))
	if err != nil {
		startup.LogFatal("Failed to initialize catalog client: %v", err)
	}
	startup.LogCatalogInit(cat.Configured())

	h := handlers.New(launcher, searcher, cat, config)
	h.SetProducerAvailable(producerOK)

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           wrapHandler(router, config),
		ReadHeaderTimeout: readHeaderTimeout,
		// Streams have no overall deadline; each chunk write sets its own.
		WriteTimeout: 0,
		IdleTimeout:  idleTimeout,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort, h)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return serve(srv)
	})
	if metricsSrv != nil {
		g.Go(func() error {
			return serve(metricsSrv)
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		reason := "server error"
		if ctx.Err() != nil {
			reason = "signal"
		}
		shutdown(reason, srv, metricsSrv, launcher, searcher, cat)
		return nil
	})

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	if err := g.Wait(); err != nil {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Request metrics are labeled by route template, so they go on the router.
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	// Audio
	r.HandleFunc("/youtube/{id}", h.StreamAudio).Methods(http.MethodGet)
	r.HandleFunc("/stream/{id}", h.StreamAudio).Methods(http.MethodGet)

	// Search
	r.HandleFunc("/yt/search", h.LookupTrack).Methods(http.MethodGet)
	r.HandleFunc("/spotify/search", h.SearchCatalog).Methods(http.MethodPost)

	return r
}

// wrapHandler applies the outer middleware chain. CORS is outermost so
// preflight requests are answered before logging and compression.
func wrapHandler(router http.Handler, config *startup.Config) http.Handler {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = config.CORSAllowedOrigins

	handler := middleware.Compression(middleware.DefaultCompressionConfig())(router)
	handler = middleware.Logger(loggingConfig)(handler)
	return middleware.CORS(corsConfig)(handler)
}

func newMetricsServer(port string, h *handlers.Handlers) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", h.MetricsHandler())
	metricsMux.HandleFunc("/health", h.LivenessCheck)

	return &http.Server{
		Addr:         ":" + port,
		Handler:      metricsMux,
		ReadTimeout:  metricsReadTimeout,
		WriteTimeout: metricsWriteTimeout,
		IdleTimeout:  metricsIdleTimeout,
	}
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func shutdown(reason string, srv, metricsSrv *http.Server, launcher *extractor.Launcher, searcher *extractor.Searcher, cat *catalog.Client) {
	startup.LogShutdownInitiated(reason)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Stopping producers")
	launcher.Cleanup()
	startup.LogShutdownStepComplete("Producers stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	searcher.Close()
	cat.Close()

	startup.LogShutdownComplete()
}
