package models

import (
	"github.com/shopspring/decimal"
)

// Account is the database representation of a customer account.
type Account struct {
	AccountID  string          `db:"account_id"`
	AccountNo  string          `db:"account_no"`
	UserID     string          `db:"user_id"`
	Balance    decimal.Decimal `db:"balance"` // NUMERIC(18,2)
	IsBankrupt bool            `db:"is_bankrupt"`
	IsActive   bool            `db:"is_active"`
	AuditFields
}
