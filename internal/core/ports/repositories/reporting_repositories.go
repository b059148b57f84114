package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReportingRepository provides aggregate figures over the ledger.
type ReportingRepository interface {
	// SumAmountsByAccount sums entry amounts for one account within the
	// inclusive time range.
	SumAmountsByAccount(ctx context.Context, accountID string, from, to time.Time) (decimal.Decimal, error)
	// SumAmountsSystemWide sums entry amounts across all accounts within the
	// inclusive time range. This reproduces the unscoped aggregate the
	// original report view computed; see ReportingService for how callers
	// choose between the two.
	SumAmountsSystemWide(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}
