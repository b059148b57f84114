package repositories

import (
	"context"
	"time"

	"github.com/safebank/ledger_backend/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
// Balance writes are deliberately absent here: balances change only through
// the LedgerRepository's locked mutation path.
type AccountRepository interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountByNo(ctx context.Context, accountNo string) (*domain.Account, error)
	FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error)
	SetBankruptFlag(ctx context.Context, accountID string, bankrupt bool, userID string, now time.Time) error
}
