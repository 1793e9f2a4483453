// Package main is the entry point for the logscope server. It loads
// configuration from the environment, applies migrations, and serves the
// scoped activity-log API until SIGINT or SIGTERM.
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

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/data2rest/logscope/internal/api"
	"github.com/data2rest/logscope/internal/config"
	"github.com/data2rest/logscope/internal/db"
	"github.com/data2rest/logscope/internal/db/migrations"
	"github.com/data2rest/logscope/internal/dbpool"
	"github.com/data2rest/logscope/internal/scope"
	"github.com/data2rest/logscope/internal/service"
	"github.com/data2rest/logscope/internal/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	base := store.Base{Pool: pool, Log: log, QueryTimeout: cfg.QueryTimeout}
	directory := store.NewDirectoryStore(base)
	activity := store.NewActivityStore(base)

	logs := service.NewLogService(activity, scope.NewResolver(directory, log), service.LogOptions{
		DefaultPageSize: cfg.DefaultPageSize,
		TopLimit:        cfg.TopEndpointsLimit,
		TopTenantWide:   cfg.TopEndpointsTenantWide(),
		ExportLimit:     cfg.ExportLimit,
	}, log)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Logs:        logs,
		Sessions:    directory,
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
		Limits:      api.PageLimits{Default: cfg.DefaultPageSize, Max: cfg.MaxPageSize},
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.QueryTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"version": config.Version,
			"top":     cfg.TopEndpointsScope,
		}).Info("logscope listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}

		return nil
	})

	return g.Wait()
}

// newLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)

	if cfg.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return log, nil
}
