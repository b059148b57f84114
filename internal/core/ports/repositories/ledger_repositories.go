package repositories

import (
	"context"
	"time"

	"github.com/safebank/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerMutator is the write surface available inside a locked ledger
// mutation. Every call operates within the same database transaction; the
// account rows named when the mutation began are already exclusively locked.
type LedgerMutator interface {
	// Account returns the locked snapshot of an account fetched at mutation start.
	Account(accountID string) (domain.Account, bool)
	// UpdateBalance sets an account's balance to the given value.
	UpdateBalance(ctx context.Context, accountID string, newBalance decimal.Decimal, userID string, now time.Time) error
	// InsertTransaction appends a ledger entry.
	InsertTransaction(ctx context.Context, txn domain.Transaction) error
	// LoanForUpdate re-reads a loan entry under lock so its status is current
	// for the duration of the mutation.
	LoanForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error)
	// UpdateLoanStatus advances the lifecycle field of a LOAN entry.
	UpdateLoanStatus(ctx context.Context, transactionID string, status domain.LoanStatus, userID string, now time.Time) error
}

// LedgerRepository provides the transaction ledger: reads, plus a locked
// mutation scope for balance changes.
type LedgerRepository interface {
	// MutateAccounts locks the given account rows (in a fixed global order, so
	// two-account transfers cannot deadlock), runs fn within the transaction,
	// and commits iff fn returns nil. A lock that cannot be acquired promptly
	// surfaces as apperrors.ErrTransientLock.
	MutateAccounts(ctx context.Context, accountIDs []string, fn func(ctx context.Context, m LedgerMutator) error) error

	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	CountLoansByStatus(ctx context.Context, accountID string, status domain.LoanStatus) (int, error)
	ListLoansByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error)
	// ListTransactionsByAccount returns an account's entries ordered by
	// timestamp; from/to bound the range inclusively when non-nil.
	ListTransactionsByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]domain.Transaction, error)
}
