package services

import (
	"context"

	"github.com/safebank/ledger_backend/internal/core/domain"
)

// Notifier dispatches an out-of-band message to the account owner after a
// mutation commits. Implementations must be safe to call after the database
// transaction has committed; the ledger service logs a failed dispatch and
// moves on.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}
