package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"crudrouter/internal/adapters/driving/httpadapter"
	"crudrouter/internal/app"
	"crudrouter/internal/assets"
	"crudrouter/internal/config"
	"crudrouter/internal/logging"
	"crudrouter/internal/pkg/watch"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides SERVER_ADDR)")
	serveCmd.Flags().String("data-dir", "", "file backend directory (overrides DATA_DIR)")
	serveCmd.Flags().Bool("watch", false, "reload data and the resources file on change (overrides WATCH)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Fprintln(cmd.OutOrStdout(), assets.BannerString)
	logger.Info("starting crudrouter",
		zap.String("addr", cfg.ServerAddr),
		zap.String("resources", cfg.ResourcesFile),
		zap.Bool("debug", cfg.Debug),
	)

	resources, err := config.LoadResources(cfg.ResourcesFile)
	if err != nil {
		return err
	}

	appCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	setupSignalHandler(cancel, logger)

	backends, release, err := app.OpenBackends(appCtx, cfg, resources, logger)
	if err != nil {
		return err
	}
	defer release()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := httpadapter.NewMetrics(registry)

	api, err := app.NewApp(resources, backends, cfg, logger, httpadapter.WithMetrics(metrics))
	if err != nil {
		return err
	}
	handler := app.NewSwapHandler(api.Handler())

	if cfg.Watch {
		reload := func() error {
			resources, err := config.LoadResources(cfg.ResourcesFile)
			if err != nil {
				return err
			}
			next, err := app.NewApp(resources, backends, cfg, logger, httpadapter.WithMetrics(metrics))
			if err != nil {
				return err
			}
			handler.Store(next.Handler())
			logger.Info("resources reloaded", zap.Int("count", len(resources)))
			return nil
		}

		w, err := watch.New(cfg.ResourcesFile, reload, logger.Named("resources"))
		if err != nil {
			return err
		}
		if err := w.Watch(appCtx); err != nil {
			logger.Warn("resources file will not be watched", zap.Error(err))
		}
	}

	root := chi.NewRouter()
	root.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	root.Handle("/*", handler)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      root,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return run(appCtx, server, logger)
}

// run serves until ctx is cancelled, then shuts the server down gracefully.
func run(appCtx context.Context, server *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen error: %w", err)
	case <-appCtx.Done():
		logger.Info("context cancelled, initiating server shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited gracefully")
	return nil
}
