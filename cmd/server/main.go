package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Lixing-Zhang/pizza-api/internal/config"
	"github.com/Lixing-Zhang/pizza-api/internal/handlers"
	"github.com/Lixing-Zhang/pizza-api/internal/metrics"
	"github.com/Lixing-Zhang/pizza-api/internal/middleware"
	"github.com/Lixing-Zhang/pizza-api/internal/repository"
	"github.com/Lixing-Zhang/pizza-api/internal/service"
	"github.com/Lixing-Zhang/pizza-api/pkg/logger"
)

const version = "1.0.0"

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Log.Level)
	slog.SetDefault(log)

	log.Info("starting pizza api server",
		"address", cfg.Addr(),
		"store_driver", cfg.Store.Driver,
		"log_level", cfg.Log.Level,
		"auth_enabled", len(cfg.Auth.APIKeys) > 0,
	)

	ctx := context.Background()

	// Open the key-value store
	tables, err := repository.Open(ctx, cfg.Store)
	if err != nil {
		log.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := tables.Close(); err != nil {
			log.Warn("failed to close store", "error", err)
		}
	}()

	handler := newServer(cfg, log, tables, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// newServer wires the services, the dispatcher and the chi middleware stack.
// The dispatcher answers CORS for the API routes itself; go-chi/cors covers
// the operational endpoints.
func newServer(cfg *config.Config, log *slog.Logger, tables *repository.Tables, reg prometheus.Registerer, gatherer prometheus.Gatherer) http.Handler {
	// Initialize services
	catalogService := service.NewCatalogService(tables.Catalog, log)
	orderService := service.NewOrderService(tables.Orders, log)

	// Initialize handlers
	dispatcher := handlers.NewRouter(catalogService, orderService, log,
		handlers.WithObserver(metrics.NewRequestMetricsWithRegisterer(reg)),
		handlers.WithAllowedOrigins(cfg.CORS.AllowedOrigins),
	)
	apiHandler := handlers.NewHTTPAdapter(dispatcher, log)
	healthHandler := handlers.NewHealthHandler(log, version, map[string]handlers.Pinger{
		cfg.Store.CatalogTable: tables.Catalog,
		cfg.Store.OrdersTable:  tables.Orders,
	})

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Operational endpoints
	withCORS := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	})
	r.Handle("/health", withCORS(healthHandler))
	r.Handle("/metrics", withCORS(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Everything else goes through the dispatcher
	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.Auth, log))
		r.Handle("/*", apiHandler)
	})

	return r
}
