package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kpgen/kpgen/internal"
	"github.com/kpgen/kpgen/internal/catalog"
	"github.com/kpgen/kpgen/internal/handler"
	"github.com/kpgen/kpgen/internal/metrics"
	"github.com/kpgen/kpgen/internal/middleware"
	"github.com/kpgen/kpgen/internal/report"
	"github.com/kpgen/kpgen/internal/service"
	"github.com/kpgen/kpgen/internal/storage"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Load the price and promotion catalogs before accepting traffic
	store := catalog.NewStore()
	loader := catalog.NewLoader(cfg.PricelistPath, cfg.PromotionsPath, logger)
	catalogService := service.NewCatalogService(store, loader, logger)
	if _, err := catalogService.Reload(ctx); err != nil {
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	// Initialize the offer archive
	archive, err := newStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	// Initialize services
	generators := []report.Generator{
		report.NewDOCXGenerator(),
		report.NewPDFGenerator(cfg.OfferFontPath, cfg.OfferFontBoldPath),
	}
	quoteService := service.NewQuoteService(store, generators, archive, logger)

	// Initialize middleware
	isSecure := cfg.Env != "development"
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	metricsAuth := middleware.NewBasicAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword, "metrics")
	adminAuth := middleware.NewBasicAuthMiddleware(cfg.AdminUsername, cfg.AdminPassword, "admin")
	offerLimiter := middleware.NewRateLimiter(cfg.OfferRateLimit, cfg.OfferRateWindow, logger)
	offerRateMw := middleware.NewRateLimitMiddleware(offerLimiter, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Quote form and assets
	staticFS := http.FileServer(http.Dir("web/static"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFS))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/static/index.html")
	})

	handler.NewHealthHandler(store).RegisterRoutes(mux)
	handler.NewCatalogHandler(catalogService, logger).RegisterRoutes(mux)
	handler.NewQuoteHandler(quoteService, logger).RegisterRoutes(mux, offerRateMw.Limit)
	handler.NewAdminHandler(catalogService, logger).RegisterRoutes(mux, adminAuth.Handler)

	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	root := securityMw.Handler(metrics.Middleware(loggingMw.Handler(mux)))

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// newStorage builds the configured offer archive backend.
func newStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		return storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
	default:
		return storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
