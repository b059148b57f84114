package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry by the operation that produced it.
type TransactionType string

const (
	Deposit          TransactionType = "DEPOSIT"
	Withdrawal       TransactionType = "WITHDRAWAL"
	Loan             TransactionType = "LOAN"
	LoanPaid         TransactionType = "LOAN_PAID"
	TransferSent     TransactionType = "TRANSFER_SENT"
	TransferReceived TransactionType = "TRANSFER_RECEIVED"
)

// LoanStatus is the lifecycle state of a LOAN ledger entry.
// Approval is an administrative transition; settlement appends a separate
// LOAN_PAID entry rather than rewriting the loan record.
type LoanStatus string

const (
	LoanPending  LoanStatus = "PENDING"
	LoanApproved LoanStatus = "APPROVED"
	LoanSettled  LoanStatus = "PAID"
)

// CanTransitionTo reports whether a loan may move from its current status to next.
// The only legal path is PENDING -> APPROVED -> PAID.
func (s LoanStatus) CanTransitionTo(next LoanStatus) bool {
	switch s {
	case LoanPending:
		return next == LoanApproved
	case LoanApproved:
		return next == LoanSettled
	default:
		return false
	}
}

// Transaction is a ledger entry recording one balance-affecting event on one
// account. Entries are append-only; the narrow exception is the LoanStatus
// lifecycle field on LOAN entries, which is advanced in place.
type Transaction struct {
	TransactionID   string          `json:"transactionID"` // Primary key (UUID)
	AccountID       string          `json:"accountID"`     // Account whose balance this entry affects
	Amount          decimal.Decimal `json:"amount"`        // Always positive
	TransactionType TransactionType `json:"transactionType"`
	BalanceAfter    decimal.Decimal `json:"balanceAfterTransaction"` // Account balance snapshot right after applying
	LoanStatus      LoanStatus      `json:"loanStatus,omitempty"`    // LOAN entries only

	// TransferID links the TRANSFER_SENT and TRANSFER_RECEIVED legs of one transfer.
	TransferID string `json:"transferID,omitempty"`
	// RelatedTransactionID links a LOAN_PAID settlement entry back to its LOAN entry.
	RelatedTransactionID string `json:"relatedTransactionID,omitempty"`

	Timestamp time.Time `json:"timestamp"` // Creation time, immutable
	AuditFields
}

// SignedAmount returns the amount with the sign of its effect on the account
// balance: inflows positive, outflows negative. LOAN entries are zero because
// a loan request moves no funds at request time.
func (t Transaction) SignedAmount() (decimal.Decimal, error) {
	switch t.TransactionType {
	case Deposit, TransferReceived:
		return t.Amount, nil
	case Withdrawal, TransferSent, LoanPaid:
		return t.Amount.Neg(), nil
	case Loan:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown transaction type %q", t.TransactionType)
	}
}

// IsLoan reports whether this entry is a loan request record.
func (t Transaction) IsLoan() bool {
	return t.TransactionType == Loan
}
