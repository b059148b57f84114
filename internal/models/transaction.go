package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the database representation of one ledger entry.
// loan_status is non-null only for LOAN rows; transfer_id and
// related_transaction_id are nullable link columns.
type Transaction struct {
	TransactionID        string          `db:"transaction_id"`
	AccountID            string          `db:"account_id"`
	Amount               decimal.Decimal `db:"amount"` // NUMERIC(18,2), > 0
	TransactionType      string          `db:"transaction_type"`
	BalanceAfter         decimal.Decimal `db:"balance_after_transaction"`
	LoanStatus           string          `db:"loan_status"`
	TransferID           string          `db:"transfer_id"`
	RelatedTransactionID string          `db:"related_transaction_id"`
	Timestamp            time.Time       `db:"timestamp"`
	AuditFields
}
