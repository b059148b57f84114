package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/safebank/ledger_backend/internal/apperrors"
	"github.com/safebank/ledger_backend/internal/core/domain"
	portsrepo "github.com/safebank/ledger_backend/internal/core/ports/repositories"
	"github.com/safebank/ledger_backend/internal/models"
	"github.com/safebank/ledger_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, account_id, amount, transaction_type, balance_after_transaction, loan_status, transfer_id, related_transaction_id, timestamp, created_at, created_by, last_updated_at, last_updated_by`

type PgxLedgerRepository struct {
	BaseRepository
}

// NewLedgerRepository creates a new repository for the transaction ledger.
func NewLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

// pgxLedgerMutator implements the locked mutation surface on top of one
// open pgx transaction.
type pgxLedgerMutator struct {
	tx       pgx.Tx
	accounts map[string]domain.Account
}

var _ portsrepo.LedgerMutator = (*pgxLedgerMutator)(nil)

func (m *pgxLedgerMutator) Account(accountID string) (domain.Account, bool) {
	acc, ok := m.accounts[accountID]
	return acc, ok
}

func (m *pgxLedgerMutator) UpdateBalance(ctx context.Context, accountID string, newBalance decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	cmdTag, err := m.tx.Exec(ctx, query, accountID, newBalance, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s disappeared during balance update", apperrors.ErrNotFound, accountID)
	}
	return nil
}

func (m *pgxLedgerMutator) InsertTransaction(ctx context.Context, txn domain.Transaction) error {
	modelTxn := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := m.tx.Exec(ctx, query,
		modelTxn.TransactionID,
		modelTxn.AccountID,
		modelTxn.Amount,
		modelTxn.TransactionType,
		modelTxn.BalanceAfter,
		nullable(modelTxn.LoanStatus),
		nullable(modelTxn.TransferID),
		nullable(modelTxn.RelatedTransactionID),
		modelTxn.Timestamp,
		modelTxn.CreatedAt,
		modelTxn.CreatedBy,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", modelTxn.TransactionID, err)
	}
	return nil
}

func (m *pgxLedgerMutator) LoanForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_id = $1 AND transaction_type = $2
		FOR UPDATE NOWAIT;
	`
	txn, err := scanTransaction(m.tx.QueryRow(ctx, query, transactionID, string(domain.Loan)))
	if err != nil {
		if isLockNotAvailable(err) {
			return nil, fmt.Errorf("%w: loan %s", apperrors.ErrTransientLock, transactionID)
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock loan %s: %w", transactionID, err)
	}
	return txn, nil
}

func (m *pgxLedgerMutator) UpdateLoanStatus(ctx context.Context, transactionID string, status domain.LoanStatus, userID string, now time.Time) error {
	query := `
		UPDATE transactions
		SET loan_status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1 AND transaction_type = $5;
	`
	cmdTag, err := m.tx.Exec(ctx, query, transactionID, string(status), now, userID, string(domain.Loan))
	if err != nil {
		return fmt.Errorf("failed to update loan status for %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MutateAccounts locks the named account rows with FOR UPDATE NOWAIT in
// ascending account_id order (a fixed global order, so transfers touching
// two accounts cannot deadlock), runs fn inside the transaction, and commits
// iff fn returns nil. An unavailable lock surfaces as ErrTransientLock so the
// caller can retry instead of blocking.
func (r *PgxLedgerRepository) MutateAccounts(ctx context.Context, accountIDs []string, fn func(ctx context.Context, m portsrepo.LedgerMutator) error) error {
	ids := make([]string, len(accountIDs))
	copy(ids, accountIDs)
	sort.Strings(ids)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE NOWAIT;
	`
	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		if isLockNotAvailable(err) {
			return fmt.Errorf("%w: accounts %v", apperrors.ErrTransientLock, ids)
		}
		return fmt.Errorf("failed to lock accounts %v: %w", ids, err)
	}

	accounts := make(map[string]domain.Account, len(ids))
	for rows.Next() {
		var m models.Account
		err := rows.Scan(
			&m.AccountID,
			&m.AccountNo,
			&m.UserID,
			&m.Balance,
			&m.IsBankrupt,
			&m.IsActive,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accounts[m.AccountID] = mapping.ToDomainAccount(m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		if isLockNotAvailable(err) {
			return fmt.Errorf("%w: accounts %v", apperrors.ErrTransientLock, ids)
		}
		return fmt.Errorf("error iterating locked account rows: %w", err)
	}

	if err := fn(ctx, &pgxLedgerMutator{tx: tx, accounts: accounts}); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var m models.Transaction
	var loanStatus, transferID, relatedID sql.NullString

	err := row.Scan(
		&m.TransactionID,
		&m.AccountID,
		&m.Amount,
		&m.TransactionType,
		&m.BalanceAfter,
		&loanStatus,
		&transferID,
		&relatedID,
		&m.Timestamp,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	m.LoanStatus = loanStatus.String
	m.TransferID = transferID.String
	m.RelatedTransactionID = relatedID.String
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// FindTransactionByID retrieves a ledger entry by its ID.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return txn, nil
}

// CountLoansByStatus counts an account's LOAN entries in the given status.
func (r *PgxLedgerRepository) CountLoansByStatus(ctx context.Context, accountID string, status domain.LoanStatus) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE account_id = $1 AND transaction_type = $2 AND loan_status = $3;
	`
	var count int
	err := r.Pool.QueryRow(ctx, query, accountID, string(domain.Loan), string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count loans for account %s: %w", accountID, err)
	}
	return count, nil
}

// ListLoansByAccount returns an account's LOAN entries, newest first.
func (r *PgxLedgerRepository) ListLoansByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND transaction_type = $2
		ORDER BY timestamp DESC;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, string(domain.Loan))
	if err != nil {
		return nil, fmt.Errorf("failed to query loans for account %s: %w", accountID, err)
	}
	defer rows.Close()

	return collectTransactions(rows, accountID)
}

// ListTransactionsByAccount returns an account's entries ordered by
// timestamp ascending, bounded inclusively by from/to when non-nil.
func (r *PgxLedgerRepository) ListTransactionsByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		  AND ($2::timestamptz IS NULL OR timestamp >= $2)
		  AND ($3::timestamptz IS NULL OR timestamp <= $3)
		ORDER BY timestamp ASC, transaction_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	return collectTransactions(rows, accountID)
}

func collectTransactions(rows pgx.Rows, accountID string) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row for account %s: %w", accountID, err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows for account %s: %w", accountID, err)
	}
	return transactions, nil
}

// nullable maps an empty string to a SQL NULL.
func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
