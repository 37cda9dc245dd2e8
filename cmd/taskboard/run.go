package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/notify"
	"taskboard/internal/server"
	"taskboard/internal/storage/sqlite"
	"taskboard/internal/telemetry"
)

func run(ctx context.Context, cfg config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	store, err := sqlite.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		return err
	}
	defer store.Close()

	tel, err := telemetry.Init(telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Interval: cfg.Telemetry.Interval,
	}, os.Stdout)
	if err != nil {
		return err
	}
	metrics, err := notify.NewMetrics(tel.Meter)
	if err != nil {
		return err
	}

	bus := notify.NewBus(cfg.EventBuffer)
	emitter := notify.Multi{bus, metrics, notify.Log{Logger: logger}}
	svc := board.New(store, emitter, logger)
	srv := server.New(svc, bus, logger)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr), slog.String("db", cfg.DBPath))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		bus.Close()
		_ = tel.Shutdown(context.Background())
		return fmt.Errorf("serve %s: %w", cfg.Addr, err)
	case <-sigCtx.Done():
	}

	// Close the bus first so open event streams return and Shutdown can drain.
	bus.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to flush metrics", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	return nil
}
