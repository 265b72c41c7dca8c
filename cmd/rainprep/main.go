// Command rainprep prepares monthly provincial rainfall data for model
// training: it derives seasonal features, one-hot encodes categories,
// min-max scales rainfall columns and writes the encoded table.
//
// Usage:
//
//	rainprep prepare --input data/raw-rain-data.csv --output data/processed_rain_data.csv
//	rainprep features --model models/best_rf_model.json
//	rainprep validate --file data/processed_rain_data.csv
//	rainprep serve
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/rainfall-features/internal/config"
	"github.com/couchcryptid/rainfall-features/internal/observability"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	newMetrics func() *observability.Metrics

	envFile  string
	logLevel string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "rainprep",
		Short:         "Prepare rainfall data for model training",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newPrepareCmd(a),
		newFeaturesCmd(a),
		newValidateCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

// init loads the dotenv file, the environment and the logger.
func (a *app) init() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logger = observability.NewLogger(cfg)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd(&app{newMetrics: observability.NewMetrics}).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skips config loading so version works without a valid environment.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "rainprep %s\n", version)
			return err
		},
	}
}
