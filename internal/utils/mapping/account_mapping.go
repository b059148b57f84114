package mapping

import (
	"github.com/safebank/ledger_backend/internal/core/domain"
	"github.com/safebank/ledger_backend/internal/models"
)

// ToModelAccount converts a domain account to its database representation.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:  d.AccountID,
		AccountNo:  d.AccountNo,
		UserID:     d.UserID,
		Balance:    d.Balance,
		IsBankrupt: d.IsBankrupt,
		IsActive:   d.IsActive,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// ToDomainAccount converts a database account row to the domain type.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:  m.AccountID,
		AccountNo:  m.AccountNo,
		UserID:     m.UserID,
		Balance:    m.Balance,
		IsBankrupt: m.IsBankrupt,
		IsActive:   m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}
