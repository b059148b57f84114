package services

import (
	"context"

	"github.com/safebank/ledger_backend/internal/core/domain"
	"github.com/safebank/ledger_backend/internal/dto"
)

// AccountSvcFacade manages account records. Account opening and the bankrupt
// flag are administrative concerns; balance changes never go through here.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	GetAccountByNo(ctx context.Context, accountNo string) (*domain.Account, error)
	GetAccountByUserID(ctx context.Context, userID string) (*domain.Account, error)
	SetBankruptFlag(ctx context.Context, accountID string, bankrupt bool, userID string) error
}
