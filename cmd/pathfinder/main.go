// Command pathfinder runs the API server and its data maintenance tasks.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pathfinder/internal/server"
	"pathfinder/pkg/logger"
	"pathfinder/pkg/utils"
)

var (
	version    = "0.1.0-dev"
	configPath string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "pathfinder",
		Short:         "Career guidance API for students choosing colleges",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (optional)")

	rootCmd.AddCommand(
		newServeCmd(),
		newSeedCmd(),
		newImportAPICmd(),
		newImportCSVCmd(),
		newExportCSVCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}

// env carries what every command needs.
type env struct {
	cfg utils.Config
	log *logger.Logger
}

func loadEnv() (*env, error) {
	cfg, err := utils.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return &env{cfg: cfg, log: log}, nil
}

// withDB opens the migrated database, runs fn, and cleans up.
func withDB(fn func(e *env, db *sql.DB) error) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.log.Sync()

	db, err := server.OpenDB(e.cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return fn(e, db)
}
