package services

import (
	"context"

	"github.com/safebank/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerSvcFacade is the balance-mutation engine: one operation per kind of
// balance-affecting request. Each operation validates, applies the balance
// rule under an account lock, appends the ledger entry atomically, and
// dispatches the notification only after commit.
type LedgerSvcFacade interface {
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal, userID string) (*domain.Transaction, error)
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, userID string) (*domain.Transaction, error)
	Transfer(ctx context.Context, sourceAccountID string, destAccountNo string, amount decimal.Decimal, userID string) (*domain.TransferResult, error)
	RequestLoan(ctx context.Context, accountID string, amount decimal.Decimal, userID string) (*domain.Transaction, error)
	ApproveLoan(ctx context.Context, loanTransactionID string, userID string) (*domain.Transaction, error)
	PayLoan(ctx context.Context, loanTransactionID string, userID string) (*domain.Transaction, error)
	ListLoans(ctx context.Context, accountID string) ([]domain.Transaction, error)
}
