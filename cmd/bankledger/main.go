package main

import (
	"log/slog"
	"os"

	"github.com/safebank/ledger_backend/internal/platform/config"
	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "bankledger",
		Short: "Bank ledger backend",
	}
	rootCmd.AddCommand(newServeCommand(cfg, logger))
	rootCmd.AddCommand(newWorkerCommand(cfg, logger))

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
