package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crudrouter/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "crudrouter",
	Short: "crudrouter serves CRUD routes for the resources declared in a YAML file",
	Long: `crudrouter reads resource definitions (name, backend, id field, schema) and mounts five
routes per resource: list, read, create, update and delete.

Configuration comes from environment variables, an optional .env file and flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("resources", "", "resources file (overrides RESOURCES_FILE)")
	rootCmd.PersistentFlags().Bool("debug", false, "include error details in responses (overrides DEBUG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routesCmd)
}

// loadConfig reads the environment, then applies the flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("resources") {
		cfg.ResourcesFile, _ = flags.GetString("resources")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("addr") {
		cfg.ServerAddr, _ = flags.GetString("addr")
	}
	if flags.Changed("watch") {
		cfg.Watch, _ = flags.GetBool("watch")
	}
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}

	return cfg, nil
}

// setupSignalHandler configures a listener for OS signals to trigger a graceful shutdown.
func setupSignalHandler(cancelFunc context.CancelFunc, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancelFunc()
	}()
}
