// main is the students-api record store: the remote system of truth the
// roster client reads and writes.
//
//	students-api --config=config/local.yaml
//	CONFIG_PATH=config/local.yaml students-api
//
// The process serves the Student REST routes plus GET /metrics and stops
// gracefully on SIGINT or SIGTERM.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aanand-mishra/student-roster/internal/config"
	"github.com/aanand-mishra/student-roster/internal/http/handlers/student"
	"github.com/aanand-mishra/student-roster/internal/logging"
	"github.com/aanand-mishra/student-roster/internal/metrics"
	"github.com/aanand-mishra/student-roster/internal/storage"
	"github.com/aanand-mishra/student-roster/internal/storage/postgres"
	"github.com/aanand-mishra/student-roster/internal/storage/sqlite"
)

const shutdownGrace = 5 * time.Second

func main() {
	cfg := config.MustLoad()

	log := logging.New(cfg.Env, os.Stdout)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("students-api stopped", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("starting students-api",
		slog.String("env", cfg.Env),
		slog.String("driver", cfg.StorageDriver),
	)

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	handler, err := newHandler(store, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, stopping server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}

// newHandler mounts the Student routes, instrumented on reg, and the
// exposition endpoint for reg.
func newHandler(store storage.Storage, reg *prometheus.Registry) (http.Handler, error) {
	rec, err := metrics.NewPrometheus(reg, "server")
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	mux := http.NewServeMux()
	student.Register(mux, store, rec)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux, nil
}

// openStorage picks the backend named by cfg.StorageDriver. Everything
// downstream only sees the storage.Storage interface.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageDriver == config.DriverPostgres {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return postgres.New(ctx, cfg.PostgresDSN)
	}
	return sqlite.New(cfg)
}
