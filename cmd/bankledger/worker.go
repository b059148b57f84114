package main

import (
	"fmt"
	"log/slog"

	"github.com/safebank/ledger_backend/internal/notification"
	"github.com/safebank/ledger_backend/internal/platform/config"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
)

func newWorkerCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the notification delivery worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cfg, logger)
		},
	}
}

func runWorker(cfg *config.Config, logger *slog.Logger) error {
	if cfg.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR must be set to run the worker")
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				notification.QueueNotifications: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	handler := notification.NewDeliveryHandler(cfg.NotificationWebhookURL, logger)
	mux.HandleFunc(notification.TaskTypeNotify, handler.ProcessTask)

	logger.Info("Notification worker starting",
		slog.String("redis_addr", cfg.RedisAddr),
		slog.Int("concurrency", cfg.WorkerConcurrency))
	return srv.Run(mux)
}
