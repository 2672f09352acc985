package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpAdapter "github.com/lorrc/triage-desk/internal/adapters/primary/http"
	mw "github.com/lorrc/triage-desk/internal/adapters/primary/http/middleware"
	"github.com/lorrc/triage-desk/internal/adapters/secondary/feed"
	"github.com/lorrc/triage-desk/internal/adapters/secondary/store"
	"github.com/lorrc/triage-desk/internal/config"
	"github.com/lorrc/triage-desk/internal/core/ports"
	"github.com/lorrc/triage-desk/internal/core/services"
	"github.com/lorrc/triage-desk/internal/infrastructure/logging"
	"github.com/lorrc/triage-desk/internal/infrastructure/metrics"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	// 3. Load Taxonomy
	taxonomy, err := config.LoadTaxonomy(cfg.Taxonomy.Path)
	if err != nil {
		logger.Error("failed to load taxonomy", "path", cfg.Taxonomy.Path, "error", err)
		os.Exit(1)
	}

	// 4. Open Override Storage
	ctx := context.Background()
	opened, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open override storage", "error", err)
		os.Exit(1)
	}
	defer opened.Close()

	// 5. Initialize Metrics & Rate Limiters
	var m *metrics.Metrics
	var triageMetrics ports.TriageMetrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		triageMetrics = m
	}

	var generalRateLimiter, writeRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
		defer generalRateLimiter.Stop()

		writeRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.WriteRPS,
			BurstSize:         cfg.RateLimit.WriteBurst,
			CleanupInterval:   time.Minute,
			TTL:               5 * time.Minute,
		})
		defer writeRateLimiter.Stop()
	}

	// 6. Dependency Injection (Wiring the Hexagon)
	ticketFeed := feed.New(cfg.Feed.Path, cfg.Feed.URL, cfg.Feed.Timeout)

	triageService := services.NewTriageService(ticketFeed, opened.Storage, triageMetrics, services.TriageConfig{
		Taxonomy:    taxonomy,
		StorageKey:  cfg.Store.Key,
		ReplySender: cfg.Triage.ReplySender,
	}, logger)

	// A failed initial load leaves an empty working set; the operator can
	// retry through POST /api/v1/tickets/reload.
	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.Feed.Timeout+5*time.Second)
	if err := triageService.Load(loadCtx); err != nil {
		logger.Error("initial ticket load failed", "source", ticketFeed.Source(), "error", err)
	}
	cancelLoad()

	errorHandler := httpAdapter.NewErrorHandler(logger)
	triageHandler := httpAdapter.NewTriageHandler(triageService, errorHandler, logger)
	healthHandler := httpAdapter.NewHealthHandler(opened.Storage, triageService, cfg.App.Version)

	// 7. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	if m != nil {
		r.Use(mw.Metrics(m))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	// Health check endpoints (outside /api/v1 for standard probe paths)
	healthHandler.RegisterRoutes(r)
	if m != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, m.Handler())
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		if generalRateLimiter != nil {
			r.Use(generalRateLimiter.Middleware)
		}

		var write []func(http.Handler) http.Handler
		if writeRateLimiter != nil {
			write = append(write, writeRateLimiter.Middleware)
		}
		triageHandler.RegisterRoutes(r, write...)
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server shutdown complete")
}
