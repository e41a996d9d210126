// Command calseed loads calendar fixtures into the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"calendars/internal/calendar"
	"calendars/internal/config"
	"calendars/internal/db"
	"calendars/internal/logger"
	"calendars/internal/seed"
)

func main() {
	file := flag.String("file", "", "YAML fixture to load (default: bundled sample)")
	reset := flag.Bool("reset", false, "delete every calendar before loading")
	flag.Parse()

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
	log = log.With("component", "seed")

	res, err := run(cfg, log, *file, *reset)
	if err != nil {
		log.Error("Seeding failed", "file", *file, "created", res.Created, "skipped", res.Skipped, "error", err)
		log.Sync()
		os.Exit(1)
	}
	log.Info("Seeding done", "created", res.Created, "skipped", res.Skipped)
	log.Sync()
}

func run(cfg config.Config, log *logger.Logger, file string, reset bool) (seed.Result, error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		cals []calendar.Calendar
		err  error
	)
	if file == "" {
		cals, err = seed.Sample()
	} else {
		cals, err = seed.LoadFile(file)
	}
	if err != nil {
		return seed.Result{}, fmt.Errorf("load fixture: %w", err)
	}

	gdb, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return seed.Result{}, fmt.Errorf("database connect (%s): %w", cfg.DatabaseDriver, err)
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := db.Migrate(gdb); err != nil {
		return seed.Result{}, fmt.Errorf("database migrate: %w", err)
	}

	svc := calendar.NewService(calendar.NewStore(gdb, log), log)
	if reset {
		if err := svc.DeleteAll(ctx); err != nil {
			return seed.Result{}, fmt.Errorf("reset: %w", err)
		}
		log.Info("Existing calendars removed")
	}

	return seed.Apply(ctx, svc, cals, log)
}
