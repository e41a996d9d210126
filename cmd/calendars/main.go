package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calendars/internal/calendar"
	"calendars/internal/config"
	"calendars/internal/db"
	"calendars/internal/health"
	httpx "calendars/internal/http"
	"calendars/internal/http/handler"
	"calendars/internal/logger"
	"calendars/internal/metadata"
	"calendars/internal/observability"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped", "error", err)
		log.Sync()
		os.Exit(1)
	}
	log.Info("Server stopped")
	log.Sync()
}

// run owns every resource it opens and releases them before returning.
func run(cfg config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connect (%s): %w", cfg.DatabaseDriver, err)
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("database migrate: %w", err)
	}

	shutdownOTel := observability.InitOTel(ctx, log, cfg)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Warn("otel shutdown", "error", err)
		}
	}()

	ready := func(ctx context.Context) error { return db.Ready(ctx, gdb) }
	probe := health.NewProbe(cfg.HealthCheckRetries, cfg.HealthCheckDelay, log)
	probe.Register("database", ready)

	calSvc := calendar.NewService(calendar.NewStore(gdb, log), log)
	metaSvc := metadata.NewService(metadata.NewMemoryRepo(log), log)

	r := httpx.NewRouter(httpx.Deps{
		Cfg:       cfg,
		Log:       log,
		Calendars: calSvc,
		Metadata:  metaSvc,
		Ready:     ready,
		Probe:     probe,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Listening", "addr", cfg.HTTPAddr, "driver", cfg.DatabaseDriver)
		for _, ep := range handler.Endpoints(r) {
			log.Debug("Endpoint", "method", ep.Method, "path", ep.Path)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// runs beside the server; requests are served while it waits
	g.Go(func() error {
		probe.Run(gctx)
		return nil
	})

	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("HTTP shutdown", "error", err)
		}
		return nil
	})

	return g.Wait()
}
