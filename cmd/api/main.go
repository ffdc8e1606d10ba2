package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"showcase/internal/capture"
	"showcase/internal/config"
	"showcase/internal/page"
	"showcase/internal/platform/cloudinary"
	"showcase/internal/platform/logger"
	"showcase/internal/platform/screenshotone"
	"showcase/internal/product"
)

func main() {
	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", logger.Err(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := openDB(ctx, cfg.DSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()
	log.Info("database connection OK", logger.String("dsn", redactDSN(cfg.DSN)))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := capture.NewMetrics(registry)

	shots := screenshotone.NewClient(cfg.ScreenshotOne.AccessKey, cfg.ScreenshotOne.SecretKey, cfg.ScreenshotOne.BaseURL)
	assets, err := cloudinary.NewClient(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
	if err != nil {
		return fmt.Errorf("cloudinary: %w", err)
	}
	if !shots.Configured() {
		log.Warn("screenshot provider not configured; captures are skipped")
	}
	if !assets.Configured() {
		log.Warn("cloudinary not configured; uploads will fail")
	}

	pipeline := capture.NewPipeline(shots, assets, nil, metrics, log.With(logger.String("component", "capture")))
	batcher := capture.NewBatcher(pipeline, cfg.BatchInterval, metrics, log.With(logger.String("component", "batch")))

	productService := product.NewService(product.NewPostgresRepo(dbPool, cfg.DBTimeout), product.Deps{
		Capturer: pipeline,
		Batch:    batcher,
		Assets:   assets,
		Log:      log.With(logger.String("component", "product")),
	})
	pageService := page.NewService(page.NewPostgresRepo(dbPool, cfg.DBTimeout), productService, page.Deps{
		Capturer: pipeline,
		Assets:   assets,
		Log:      log.With(logger.String("component", "page")),
	})
	productService.SetLandingPages(pageService)

	handler := newRouter(routerDeps{
		cfg:      cfg,
		log:      log,
		db:       dbPool,
		registry: registry,
		products: product.NewHTTPHandler(productService),
		pages:    page.NewHTTPHandler(pageService),
		capture:  capture.NewHTTPHandler(pipeline, batcher),
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// batch captures run inside the request
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", logger.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", redactDSN(dsn), err)
	}
	return pool, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
