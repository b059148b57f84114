package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/safebank/ledger_backend/internal/core/domain"
	portsrepo "github.com/safebank/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/safebank/ledger_backend/internal/core/ports/services"
	"github.com/safebank/ledger_backend/internal/dto"
	"github.com/safebank/ledger_backend/internal/middleware"
	"github.com/shopspring/decimal"
)

// accountService manages account records: opening, lookup and the
// bank-operational bankrupt flag.
type accountService struct {
	accountRepo portsrepo.AccountRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepository) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount opens a new account. An optional initial deposit becomes the
// opening balance; it produces no ledger entry because nothing existed to
// mutate yet.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	balance := req.InitialDeposit
	if balance.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: initial deposit cannot be negative", ErrInvalidAmount)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:  uuid.NewString(),
		AccountNo:  req.AccountNo,
		UserID:     req.UserID,
		Balance:    balance,
		IsBankrupt: false,
		IsActive:   true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("account_no", req.AccountNo), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("account_no", account.AccountNo))
	return &account, nil
}

// GetAccountByID retrieves an account by its identifier.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return account, nil
}

// GetAccountByNo retrieves an account by its customer-facing number.
func (s *accountService) GetAccountByNo(ctx context.Context, accountNo string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByNo(ctx, accountNo)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by number %s: %w", accountNo, err)
	}
	return account, nil
}

// GetAccountByUserID retrieves the account owned by the given user.
func (s *accountService) GetAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account for user %s: %w", userID, err)
	}
	return account, nil
}

// SetBankruptFlag toggles the bankrupt marker on an account. The flag only
// gates specific withdrawal patterns; it does not freeze the account.
func (s *accountService) SetBankruptFlag(ctx context.Context, accountID string, bankrupt bool, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	if err := s.accountRepo.SetBankruptFlag(ctx, accountID, bankrupt, userID, now); err != nil {
		return fmt.Errorf("failed to set bankrupt flag on account %s: %w", accountID, err)
	}

	logger.Info("Bankrupt flag updated", slog.String("account_id", accountID), slog.Bool("bankrupt", bankrupt))
	return nil
}
