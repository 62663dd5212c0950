// Package main is the entry point for the reviewlens-api server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"

	"github.com/reviewlens/reviewlens-api/internal/config"
	"github.com/reviewlens/reviewlens-api/internal/database"
	"github.com/reviewlens/reviewlens-api/internal/http/handlers"
	"github.com/reviewlens/reviewlens-api/internal/http/mw"
	"github.com/reviewlens/reviewlens-api/internal/http/routes"
	"github.com/reviewlens/reviewlens-api/internal/logging"
	"github.com/reviewlens/reviewlens-api/internal/repository"
	"github.com/reviewlens/reviewlens-api/internal/service"
	"github.com/reviewlens/reviewlens-api/internal/shutdown"
	"github.com/reviewlens/reviewlens-api/internal/version"
	"github.com/reviewlens/reviewlens-api/internal/worker"
)

func main() {
	// Local development convenience; absence of .env is fine
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	logger := logging.SetDefault()

	v := version.Get()
	logger.Info("starting reviewlens-api",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if !cfg.HasAnalysisCredentials() {
		logger.Warn("ANALYSIS_API_KEY not set - analysis will degrade to default results")
	}
	if !cfg.HasScrapeCredentials() {
		logger.Warn("SCRAPE_API_TOKEN not set - maps, hospitality and booking sources will be rejected")
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)

	services, err := service.NewServices(cfg, repos, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	// Background archive sweep
	archiveWorker := worker.New(repos.Report, services.Storage, worker.Config{
		SweepInterval: cfg.ArchiveInterval,
	}, logger)
	ctx, cancel := context.WithCancel(context.Background())
	archiveWorker.Start(ctx)

	idleMonitor := shutdown.NewIdleMonitor(cfg.IdleTimeout, []string{"/healthz", "/readyz"}, archiveWorker.Busy, logger)
	idleMonitor.Start()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mw.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(idleMonitor.Middleware)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Spreadsheet uploads arrive base64-encoded in JSON
	router.Use(middleware.RequestSize(20 * 1024 * 1024))
	router.Use(httprate.LimitByIP(60, time.Minute))

	humaConfig := huma.DefaultConfig("ReviewLens API", version.Get().Version)
	humaConfig.Info.Description = "Customer-review ingestion and analysis API producing aggregate sentiment, theme and NPS reports."
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.BaseURL, Description: "API Server"},
	}
	api := humachi.New(router, humaConfig)

	routes.Register(api, routes.NewHandlers(services, repos))

	// Kubernetes probes, hidden from docs
	hiddenConfig := huma.DefaultConfig("ReviewLens API", version.Get().Version)
	hiddenConfig.DocsPath = ""
	hiddenConfig.OpenAPIPath = ""
	hiddenConfig.SchemasPath = ""
	hiddenAPI := humachi.New(router, hiddenConfig)
	huma.Get(hiddenAPI, "/healthz", handlers.Livez)
	huma.Get(hiddenAPI, "/readyz", handlers.NewReadyzHandler(db).Readyz)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
		// Analyze requests can legitimately run for minutes
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.PipelineTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-sigChan:
			logger.Info("shutdown signal received")
		case <-idleMonitor.IdleChan():
			logger.Info("idle timeout reached")
		}

		cancel()
		archiveWorker.Stop()
		idleMonitor.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting server", "port", cfg.Port, "base_url", cfg.BaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
