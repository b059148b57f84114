package dto

import (
	"time"

	"github.com/safebank/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AmountRequest carries the amount for deposit, withdrawal and loan requests.
// The form layer validates amounts, but the ledger service re-checks.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// TransferRequest carries a transfer to another account, addressed by its
// customer-facing account number.
type TransferRequest struct {
	AccountNo string          `json:"accountNo" binding:"required,accountno"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// TransactionResponse is the API representation of one ledger entry.
type TransactionResponse struct {
	TransactionID        string                 `json:"transactionID"`
	AccountID            string                 `json:"accountID"`
	Amount               decimal.Decimal        `json:"amount"`
	TransactionType      domain.TransactionType `json:"transactionType"`
	BalanceAfter         decimal.Decimal        `json:"balanceAfterTransaction"`
	LoanStatus           domain.LoanStatus      `json:"loanStatus,omitempty"`
	TransferID           string                 `json:"transferID,omitempty"`
	RelatedTransactionID string                 `json:"relatedTransactionID,omitempty"`
	Timestamp            time.Time              `json:"timestamp"`
}

// TransferResponse reports both committed legs of a transfer.
type TransferResponse struct {
	TransferID         string              `json:"transferID"`
	Sent               TransactionResponse `json:"sent"`
	Received           TransactionResponse `json:"received"`
	SourceBalance      decimal.Decimal     `json:"sourceBalance"`
	DestinationBalance decimal.Decimal     `json:"destinationBalance"`
}

// ToTransactionResponse maps a domain ledger entry to its API representation.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:        t.TransactionID,
		AccountID:            t.AccountID,
		Amount:               t.Amount,
		TransactionType:      t.TransactionType,
		BalanceAfter:         t.BalanceAfter,
		LoanStatus:           t.LoanStatus,
		TransferID:           t.TransferID,
		RelatedTransactionID: t.RelatedTransactionID,
		Timestamp:            t.Timestamp,
	}
}

// ToTransactionResponses maps a slice of domain ledger entries.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToTransactionResponse(&txns[i])
	}
	return out
}

// ToTransferResponse maps a committed transfer result.
func ToTransferResponse(r *domain.TransferResult) TransferResponse {
	return TransferResponse{
		TransferID:         r.TransferID,
		Sent:               ToTransactionResponse(&r.Sent),
		Received:           ToTransactionResponse(&r.Received),
		SourceBalance:      r.SourceBalance,
		DestinationBalance: r.DestinationBalance,
	}
}
