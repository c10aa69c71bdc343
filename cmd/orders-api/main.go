package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/bookstack/orders-management-api/books"
	"github.com/bookstack/orders-management-api/config"
	"github.com/bookstack/orders-management-api/httpapi"
	"github.com/bookstack/orders-management-api/orders"
	"github.com/bookstack/orders-management-api/orderstore"
	"github.com/bookstack/orders-management-api/orderstore/oteladapters"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("orders-api failed: %v", err)
	}
}

func run() error {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storeOptions, handlerOptions, shutdownObservability, err := buildObservability(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownObservability()

	pool, err := config.NewPGXPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := orderstore.NewOrderStoreFromPGXPool(pool, storeOptions...)
	if err != nil {
		return fmt.Errorf("creating order store: %w", err)
	}

	if err = store.CreateSchema(ctx); err != nil {
		return fmt.Errorf("creating orders schema: %w", err)
	}

	creationHandler, err := orders.NewCreateOrderHandler(store, handlerOptions...)
	if err != nil {
		return fmt.Errorf("creating order handler: %w", err)
	}

	booksDB, err := config.OpenBooksDB(ctx, cfg.BooksDriver, cfg.BooksDSN)
	if err != nil {
		return err
	}
	defer func() { _ = booksDB.Close() }()

	bookStore, err := books.NewSQLStore(booksDB)
	if err != nil {
		return fmt.Errorf("creating book store: %w", err)
	}

	if err = bookStore.CreateSchema(ctx); err != nil {
		return fmt.Errorf("creating books schema: %w", err)
	}

	router := httpapi.NewRouter(
		httpapi.NewOrderHandler(creationHandler, store, logger),
		httpapi.NewBookHandler(books.NewService(bookStore, logger), logger),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		serverDone <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			return fmt.Errorf("shutting down http server: %w", shutdownErr)
		}
	case serveErr := <-serverDone:
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", serveErr)
		}
	}

	return nil
}

// buildObservability assembles the store and handler options. With OTel
// enabled, logs bridge into the OTLP pipeline and metrics and traces export
// to the collector; otherwise everything logs through the process slog
// logger and the metrics sink records creation outcomes as log entries.
func buildObservability(
	ctx context.Context,
	cfg config.AppConfig,
	logger *slog.Logger,
) ([]orderstore.Option, []orders.HandlerOption, func(), error) {
	slogAdapter := oteladapters.NewSlogLogger(logger)

	if !cfg.OTELEnabled {
		storeOptions := []orderstore.Option{orderstore.WithLogger(slogAdapter)}
		handlerOptions := []orders.HandlerOption{
			orders.WithLogger(slogAdapter),
			orders.WithMetricsSink(orders.NewLoggingMetricsSink(slogAdapter)),
		}

		return storeOptions, handlerOptions, func() {}, nil
	}

	providers, err := config.NewObservabilityProviders(ctx, cfg.ServiceName, cfg.OTELEndpoint)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating observability providers: %w", err)
	}

	bridgeLogger := oteladapters.NewSlogBridgeLogger(cfg.ServiceName)
	metricsCollector := oteladapters.NewMetricsCollector(otel.Meter(cfg.ServiceName))
	tracingCollector := oteladapters.NewTracingCollector(otel.Tracer(cfg.ServiceName))

	storeOptions := []orderstore.Option{
		orderstore.WithContextualLogger(bridgeLogger),
		orderstore.WithMetrics(metricsCollector),
	}
	handlerOptions := []orders.HandlerOption{
		orders.WithContextualLogger(bridgeLogger),
		orders.WithMetrics(metricsCollector),
		orders.WithTracing(tracingCollector),
		orders.WithMetricsSink(orders.NewLoggingMetricsSink(slogAdapter)),
	}

	shutdown := func() {
		if shutdownErr := providers.Shutdown(); shutdownErr != nil {
			logger.Error("observability shutdown failed", slog.String("error", shutdownErr.Error()))
		}
	}

	return storeOptions, handlerOptions, shutdown, nil
}
