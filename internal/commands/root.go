// Package commands defines the CLI surface: the HTTP server, the cleanup
// worker and offline import/export and user management.
package commands

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"saldo/internal/config"
	"saldo/internal/log"
)

var (
	verbose bool
	cfg     *config.Config
	logger  *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "saldo",
	Short: "Shared expense ledger with running balances",
	Long: `Saldo keeps a shared ledger of expense records and projects a running
balance over them. It serves a JSON API with live snapshot events,
reconciles imported export files record by record, and cleans up
attachment blobs left behind by deleted records.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env file is fine; the environment wins anyway.
		_ = godotenv.Load()

		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = log.New(log.Config{Level: level, Component: log.ComponentApp})
		log.SetDefault(logger)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(registerCmd)
}
