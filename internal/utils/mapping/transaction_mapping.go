package mapping

import (
	"github.com/safebank/ledger_backend/internal/core/domain"
	"github.com/safebank/ledger_backend/internal/models"
)

// ToModelTransaction converts a domain ledger entry to its database
// representation. Empty link fields map to empty strings here; the
// repository turns them into NULLs.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:        d.TransactionID,
		AccountID:            d.AccountID,
		Amount:               d.Amount,
		TransactionType:      string(d.TransactionType),
		BalanceAfter:         d.BalanceAfter,
		LoanStatus:           string(d.LoanStatus),
		TransferID:           d.TransferID,
		RelatedTransactionID: d.RelatedTransactionID,
		Timestamp:            d.Timestamp,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// ToDomainTransaction converts a database transaction row to the domain type.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:        m.TransactionID,
		AccountID:            m.AccountID,
		Amount:               m.Amount,
		TransactionType:      domain.TransactionType(m.TransactionType),
		BalanceAfter:         m.BalanceAfter,
		LoanStatus:           domain.LoanStatus(m.LoanStatus),
		TransferID:           m.TransferID,
		RelatedTransactionID: m.RelatedTransactionID,
		Timestamp:            m.Timestamp,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}
