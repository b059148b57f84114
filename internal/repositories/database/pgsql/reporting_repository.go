package pgsql

import (
	"context"
	"fmt"
	"time"

	portsrepo "github.com/safebank/ledger_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxReportingRepository struct {
	BaseRepository
}

// NewReportingRepository creates a new repository for report aggregates.
func NewReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// SumAmountsByAccount sums raw transaction amounts for one account inside
// the inclusive [from, to] range. Amounts are summed as recorded, without
// sign adjustment for direction.
func (r *PgxReportingRepository) SumAmountsByAccount(ctx context.Context, accountID string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE account_id = $1 AND timestamp >= $2 AND timestamp <= $3;
	`
	var sum decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, accountID, from, to).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum amounts for account %s: %w", accountID, err)
	}
	return sum, nil
}

// SumAmountsSystemWide sums raw transaction amounts across all accounts
// inside the inclusive [from, to] range.
func (r *PgxReportingRepository) SumAmountsSystemWide(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE timestamp >= $1 AND timestamp <= $2;
	`
	var sum decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, from, to).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum amounts system-wide: %w", err)
	}
	return sum, nil
}
