package dto

import (
	"github.com/safebank/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the payload for opening a new account.
type CreateAccountRequest struct {
	AccountNo      string          `json:"accountNo" binding:"required,accountno"`
	UserID         string          `json:"userID" binding:"required"`
	InitialDeposit decimal.Decimal `json:"initialDeposit"` // Optional; zero when absent
}

// SetBankruptRequest toggles the bank-operational bankrupt flag on an account.
type SetBankruptRequest struct {
	Bankrupt *bool `json:"bankrupt" binding:"required"`
}

// AccountResponse is the API representation of an account.
type AccountResponse struct {
	AccountID  string          `json:"accountID"`
	AccountNo  string          `json:"accountNo"`
	UserID     string          `json:"userID"`
	Balance    decimal.Decimal `json:"balance"`
	IsBankrupt bool            `json:"isBankrupt"`
	IsActive   bool            `json:"isActive"`
}

// ToAccountResponse maps a domain account to its API representation.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:  a.AccountID,
		AccountNo:  a.AccountNo,
		UserID:     a.UserID,
		Balance:    a.Balance,
		IsBankrupt: a.IsBankrupt,
		IsActive:   a.IsActive,
	}
}
