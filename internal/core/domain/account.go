package domain

import (
	"github.com/shopspring/decimal"
)

// Account represents a customer's balance-holding record.
// Balance is mutated only by the ledger service, under a row lock;
// non-negativity is a business rule enforced there, not by storage.
type Account struct {
	AccountID  string          `json:"accountID"` // Primary key (UUID)
	AccountNo  string          `json:"accountNo"` // Customer-facing account number
	UserID     string          `json:"userID"`    // Owning user reference
	Balance    decimal.Decimal `json:"balance"`   // Scale 2
	IsBankrupt bool            `json:"isBankrupt"`
	IsActive   bool            `json:"isActive"`
	AuditFields
}
