package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/safebank/ledger_backend/internal/core/domain"
	portssvc "github.com/safebank/ledger_backend/internal/core/ports/services"
	"github.com/safebank/ledger_backend/internal/middleware"
	"github.com/hibiken/asynq"
)

// TaskTypeNotify is the asynq task type for account notifications.
const TaskTypeNotify = "notification:deliver"

// QueueNotifications is the queue the notification worker consumes.
const QueueNotifications = "notifications"

// AsynqNotifier enqueues notifications for asynchronous delivery by the
// worker process. Enqueueing happens after the ledger change commits, so a
// delivery failure never rolls back money movement.
type AsynqNotifier struct {
	client *asynq.Client
}

// NewAsynqNotifier creates a Notifier backed by the given asynq client.
func NewAsynqNotifier(client *asynq.Client) portssvc.Notifier {
	return &AsynqNotifier{client: client}
}

var _ portssvc.Notifier = (*AsynqNotifier)(nil)

func (n *AsynqNotifier) Notify(ctx context.Context, notification domain.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	task := asynq.NewTask(TaskTypeNotify, payload, asynq.Queue(QueueNotifications), asynq.MaxRetry(5))
	info, err := n.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification task: %w", err)
	}

	logger := middleware.GetLoggerFromCtx(ctx)
	logger.DebugContext(ctx, "Notification enqueued",
		"task_id", info.ID, "queue", info.Queue, "kind", string(notification.Kind))
	return nil
}

// LogNotifier writes notifications to the request logger instead of a queue.
// It is the fallback when no Redis address is configured, so single-process
// deployments keep working without a worker.
type LogNotifier struct{}

func NewLogNotifier() portssvc.Notifier {
	return &LogNotifier{}
}

var _ portssvc.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Notify(ctx context.Context, notification domain.Notification) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.InfoContext(ctx, "Account notification",
		"kind", string(notification.Kind),
		"user_id", notification.UserID,
		"account_id", notification.AccountID,
		"amount", notification.Amount.String())
	return nil
}
