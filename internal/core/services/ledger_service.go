package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safebank/ledger_backend/internal/apperrors"
	"github.com/safebank/ledger_backend/internal/core/domain"
	portsrepo "github.com/safebank/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/safebank/ledger_backend/internal/core/ports/services"
	"github.com/safebank/ledger_backend/internal/middleware"
)

var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrBankBankrupt       = errors.New("bank is bankrupt")
	ErrAccountNotFound    = errors.New("account not found")
	ErrSameAccount        = errors.New("source and destination accounts are the same")
	ErrLoanLimitExceeded  = errors.New("loan limit exceeded")
	ErrLoanNotFound       = errors.New("loan not found")
	ErrLoanNotPending     = errors.New("loan is not pending approval")
	ErrLoanNotApproved    = errors.New("loan has not been approved")
	ErrLoanExceedsBalance = errors.New("loan amount is greater than available balance")
)

// maxApprovedLoans caps how many approved loans an account may hold at once.
const maxApprovedLoans = 3

// ledgerService is the balance-mutation engine. Every operation runs its
// read-modify-write under an exclusive per-account row lock supplied by the
// ledger repository, with the ledger entry insert in the same atomic unit.
// Notifications are dispatched only after the mutation commits.
type ledgerService struct {
	ledgerRepo  portsrepo.LedgerRepository
	accountRepo portsrepo.AccountRepository
	notifier    portssvc.Notifier
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepository, accountRepo portsrepo.AccountRepository, notifier portssvc.Notifier) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		notifier:    notifier,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, amount.String())
	}
	return nil
}

// notify dispatches a post-commit notification. Failures are logged and
// swallowed: a committed mutation is never unwound for a messaging problem.
func (s *ledgerService) notify(ctx context.Context, n domain.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to dispatch notification",
			slog.String("kind", string(n.Kind)),
			slog.String("account_id", n.AccountID),
			slog.String("error", err.Error()))
	}
}

// lockedAccount fetches the locked snapshot for accountID or reports the
// account missing.
func lockedAccount(m portsrepo.LedgerMutator, accountID string) (domain.Account, error) {
	acc, ok := m.Account(accountID)
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: ID %s", ErrAccountNotFound, accountID)
	}
	return acc, nil
}

// Deposit credits amount to the account and appends a DEPOSIT entry.
// Deposits never fail for insufficient funds.
func (s *ledgerService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var committed domain.Transaction
	var owner string
	err := s.ledgerRepo.MutateAccounts(ctx, []string{accountID}, func(ctx context.Context, m portsrepo.LedgerMutator) error {
		acc, err := lockedAccount(m, accountID)
		if err != nil {
			return err
		}
		owner = acc.UserID

		now := time.Now().UTC()
		newBalance := acc.Balance.Add(amount)
		txn := domain.Transaction{
			TransactionID:   uuid.NewString(),
			AccountID:       acc.AccountID,
			Amount:          amount,
			TransactionType: domain.Deposit,
			BalanceAfter:    newBalance,
			Timestamp:       now,
			AuditFields:     auditFields(userID, now),
		}

		if err := m.UpdateBalance(ctx, acc.AccountID, newBalance, userID, now); err != nil {
			return err
		}
		if err := m.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		committed = txn
		return nil
	})
	if err != nil {
		return nil, mapMutationError(err, accountID)
	}

	logger.Info("Deposit applied", slog.String("account_id", accountID), slog.String("amount", amount.String()))
	s.notify(ctx, domain.Notification{UserID: owner, AccountID: accountID, Amount: amount, Kind: domain.NotifyDeposit})
	return &committed, nil
}

// Withdraw debits amount from the account and appends a WITHDRAWAL entry.
// A withdrawal of the entire remaining balance is blocked while the bankrupt
// flag is set; smaller withdrawals from a bankrupt account stay permitted.
// That asymmetry is an inherited business rule, not an accident.
func (s *ledgerService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var committed domain.Transaction
	var owner string
	err := s.ledgerRepo.MutateAccounts(ctx, []string{accountID}, func(ctx context.Context, m portsrepo.LedgerMutator) error {
		acc, err := lockedAccount(m, accountID)
		if err != nil {
			return err
		}
		owner = acc.UserID

		if amount.GreaterThan(acc.Balance) {
			return fmt.Errorf("%w: requested %s, balance %s", ErrInsufficientFunds, amount.String(), acc.Balance.String())
		}
		if amount.Equal(acc.Balance) && acc.IsBankrupt {
			return ErrBankBankrupt
		}

		now := time.Now().UTC()
		newBalance := acc.Balance.Sub(amount)
		txn := domain.Transaction{
			TransactionID:   uuid.NewString(),
			AccountID:       acc.AccountID,
			Amount:          amount,
			TransactionType: domain.Withdrawal,
			BalanceAfter:    newBalance,
			Timestamp:       now,
			AuditFields:     auditFields(userID, now),
		}

		if err := m.UpdateBalance(ctx, acc.AccountID, newBalance, userID, now); err != nil {
			return err
		}
		if err := m.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		committed = txn
		return nil
	})
	if err != nil {
		return nil, mapMutationError(err, accountID)
	}

	logger.Info("Withdrawal applied", slog.String("account_id", accountID), slog.String("amount", amount.String()))
	s.notify(ctx, domain.Notification{UserID: owner, AccountID: accountID, Amount: amount, Kind: domain.NotifyWithdrawal})
	return &committed, nil
}

// Transfer moves amount from the source account to the account addressed by
// destAccountNo. Both balance updates and both ledger legs commit in one
// atomic unit; insufficient funds is a hard failure, never a silent success.
func (s *ledgerService) Transfer(ctx context.Context, sourceAccountID string, destAccountNo string, amount decimal.Decimal, userID string) (*domain.TransferResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	dest, err := s.accountRepo.FindAccountByNo(ctx, destAccountNo)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account number %s", ErrAccountNotFound, destAccountNo)
		}
		return nil, fmt.Errorf("failed to resolve destination account %s: %w", destAccountNo, err)
	}
	if dest.AccountID == sourceAccountID {
		return nil, ErrSameAccount
	}

	var result domain.TransferResult
	var srcOwner, dstOwner string
	err = s.ledgerRepo.MutateAccounts(ctx, []string{sourceAccountID, dest.AccountID}, func(ctx context.Context, m portsrepo.LedgerMutator) error {
		src, err := lockedAccount(m, sourceAccountID)
		if err != nil {
			return err
		}
		dst, err := lockedAccount(m, dest.AccountID)
		if err != nil {
			return err
		}
		srcOwner, dstOwner = src.UserID, dst.UserID

		if amount.GreaterThan(src.Balance) {
			return fmt.Errorf("%w: requested %s, balance %s", ErrInsufficientFunds, amount.String(), src.Balance.String())
		}

		now := time.Now().UTC()
		transferID := uuid.NewString()
		newSrcBalance := src.Balance.Sub(amount)
		newDstBalance := dst.Balance.Add(amount)

		sent := domain.Transaction{
			TransactionID:   uuid.NewString(),
			AccountID:       src.AccountID,
			Amount:          amount,
			TransactionType: domain.TransferSent,
			BalanceAfter:    newSrcBalance,
			TransferID:      transferID,
			Timestamp:       now,
			AuditFields:     auditFields(userID, now),
		}
		received := domain.Transaction{
			TransactionID:   uuid.NewString(),
			AccountID:       dst.AccountID,
			Amount:          amount,
			TransactionType: domain.TransferReceived,
			BalanceAfter:    newDstBalance,
			TransferID:      transferID,
			Timestamp:       now,
			AuditFields:     auditFields(userID, now),
		}

		if err := m.UpdateBalance(ctx, src.AccountID, newSrcBalance, userID, now); err != nil {
			return err
		}
		if err := m.UpdateBalance(ctx, dst.AccountID, newDstBalance, userID, now); err != nil {
			return err
		}
		if err := m.InsertTransaction(ctx, sent); err != nil {
			return err
		}
		if err := m.InsertTransaction(ctx, received); err != nil {
			return err
		}

		result = domain.TransferResult{
			TransferID:         transferID,
			Sent:               sent,
			Received:           received,
			SourceBalance:      newSrcBalance,
			DestinationBalance: newDstBalance,
		}
		return nil
	})
	if err != nil {
		return nil, mapMutationError(err, sourceAccountID)
	}

	logger.Info("Transfer applied",
		slog.String("transfer_id", result.TransferID),
		slog.String("source_account_id", sourceAccountID),
		slog.String("destination_account_id", dest.AccountID),
		slog.String("amount", amount.String()))
	s.notify(ctx, domain.Notification{UserID: srcOwner, AccountID: sourceAccountID, Amount: amount, Kind: domain.NotifyTransferSent})
	s.notify(ctx, domain.Notification{UserID: dstOwner, AccountID: dest.AccountID, Amount: amount, Kind: domain.NotifyTransferReceived})
	return &result, nil
}

// RequestLoan records a pending loan request. No funds move at request time;
// the entry's balance snapshot is the account's unchanged balance. An account
// holding the maximum number of approved loans may not request another.
func (s *ledgerService) RequestLoan(ctx context.Context, accountID string, amount decimal.Decimal, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	approved, err := s.ledgerRepo.CountLoansByStatus(ctx, accountID, domain.LoanApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to count approved loans for account %s: %w", accountID, err)
	}
	if approved >= maxApprovedLoans {
		return nil, fmt.Errorf("%w: account %s already has %d approved loans", ErrLoanLimitExceeded, accountID, approved)
	}

	var committed domain.Transaction
	var owner string
	err = s.ledgerRepo.MutateAccounts(ctx, []string{accountID}, func(ctx context.Context, m portsrepo.LedgerMutator) error {
		acc, err := lockedAccount(m, accountID)
		if err != nil {
			return err
		}
		owner = acc.UserID

		now := time.Now().UTC()
		txn := domain.Transaction{
			TransactionID:   uuid.NewString(),
			AccountID:       acc.AccountID,
			Amount:          amount,
			TransactionType: domain.Loan,
			BalanceAfter:    acc.Balance, // unchanged until settlement
			LoanStatus:      domain.LoanPending,
			Timestamp:       now,
			AuditFields:     auditFields(userID, now),
		}
		if err := m.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		committed = txn
		return nil
	})
	if err != nil {
		return nil, mapMutationError(err, accountID)
	}

	logger.Info("Loan requested", slog.String("account_id", accountID), slog.String("loan_id", committed.TransactionID), slog.String("amount", amount.String()))
	s.notify(ctx, domain.Notification{UserID: owner, AccountID: accountID, Amount: amount, Kind: domain.NotifyLoanRequested})
	return &committed, nil
}

// ApproveLoan moves a pending loan to APPROVED. This is the administrative
// step that makes the loan payable; it moves no funds.
func (s *ledgerService) ApproveLoan(ctx context.Context, loanTransactionID string, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	loan, err := s.findLoan(ctx, loanTransactionID)
	if err != nil {
		return nil, err
	}

	var owner string
	err = s.ledgerRepo.MutateAccounts(ctx, []string{loan.AccountID}, func(ctx context.Context, m portsrepo.LedgerMutator) error {
		acc, err := lockedAccount(m, loan.AccountID)
		if err != nil {
			return err
		}
		owner = acc.UserID

		current, err := m.LoanForUpdate(ctx, loanTransactionID)
		if err != nil {
			return err
		}
		if !current.LoanStatus.CanTransitionTo(domain.LoanApproved) {
			return fmt.Errorf("%w: loan %s is %s", ErrLoanNotPending, loanTransactionID, current.LoanStatus)
		}

		now := time.Now().UTC()
		if err := m.UpdateLoanStatus(ctx, loanTransactionID, domain.LoanApproved, userID, now); err != nil {
			return err
		}
		loan = *current
		loan.LoanStatus = domain.LoanApproved
		loan.LastUpdatedAt = now
		loan.LastUpdatedBy = userID
		return nil
	})
	if err != nil {
		return nil, mapMutationError(err, loan.AccountID)
	}

	logger.Info("Loan approved", slog.String("loan_id", loanTransactionID), slog.String("account_id", loan.AccountID))
	s.notify(ctx, domain.Notification{UserID: owner, AccountID: loan.AccountID, Amount: loan.Amount, Kind: domain.NotifyLoanApproved})
	return &loan, nil
}

// PayLoan settles an approved loan: the loan amount is debited from the
// account and a LOAN_PAID entry referencing the loan is appended, keeping the
// ledger append-only. Settlement of a loan whose amount equals or exceeds the
// balance is rejected; the equality boundary is deliberate.
func (s *ledgerService) PayLoan(ctx context.Context, loanTransactionID string, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	loan, err := s.findLoan(ctx, loanTransactionID)
	if err != nil {
		return nil, err
	}

	var committed domain.Transaction
	var owner string
	err = s.ledgerRepo.MutateAccounts(ctx, []string{loan.AccountID}, func(ctx context.Context, m portsrepo.LedgerMutator) error {
		acc, err := lockedAccount(m, loan.AccountID)
		if err != nil {
			return err
		}
		owner = acc.UserID

		current, err := m.LoanForUpdate(ctx, loanTransactionID)
		if err != nil {
			return err
		}
		if current.LoanStatus != domain.LoanApproved {
			return fmt.Errorf("%w: loan %s is %s", ErrLoanNotApproved, loanTransactionID, current.LoanStatus)
		}
		if current.Amount.GreaterThanOrEqual(acc.Balance) {
			return fmt.Errorf("%w: loan %s, balance %s", ErrLoanExceedsBalance, current.Amount.String(), acc.Balance.String())
		}

		now := time.Now().UTC()
		newBalance := acc.Balance.Sub(current.Amount)
		settlement := domain.Transaction{
			TransactionID:        uuid.NewString(),
			AccountID:            acc.AccountID,
			Amount:               current.Amount,
			TransactionType:      domain.LoanPaid,
			BalanceAfter:         newBalance,
			RelatedTransactionID: current.TransactionID,
			Timestamp:            now,
			AuditFields:          auditFields(userID, now),
		}

		if err := m.UpdateBalance(ctx, acc.AccountID, newBalance, userID, now); err != nil {
			return err
		}
		if err := m.InsertTransaction(ctx, settlement); err != nil {
			return err
		}
		if err := m.UpdateLoanStatus(ctx, loanTransactionID, domain.LoanSettled, userID, now); err != nil {
			return err
		}
		committed = settlement
		return nil
	})
	if err != nil {
		return nil, mapMutationError(err, loan.AccountID)
	}

	logger.Info("Loan settled", slog.String("loan_id", loanTransactionID), slog.String("account_id", loan.AccountID), slog.String("amount", loan.Amount.String()))
	s.notify(ctx, domain.Notification{UserID: owner, AccountID: loan.AccountID, Amount: loan.Amount, Kind: domain.NotifyLoanPaid})
	return &committed, nil
}

// ListLoans returns an account's loan entries, any status.
func (s *ledgerService) ListLoans(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	loans, err := s.ledgerRepo.ListLoansByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans for account %s: %w", accountID, err)
	}
	return loans, nil
}

// findLoan resolves a loan entry by ID, distinguishing "no such transaction"
// and "transaction is not a loan" from other failures.
func (s *ledgerService) findLoan(ctx context.Context, loanTransactionID string) (domain.Transaction, error) {
	txn, err := s.ledgerRepo.FindTransactionByID(ctx, loanTransactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Transaction{}, fmt.Errorf("%w: ID %s", ErrLoanNotFound, loanTransactionID)
		}
		return domain.Transaction{}, fmt.Errorf("failed to find loan %s: %w", loanTransactionID, err)
	}
	if !txn.IsLoan() {
		return domain.Transaction{}, fmt.Errorf("%w: transaction %s is not a loan", ErrLoanNotFound, loanTransactionID)
	}
	return *txn, nil
}

// mapMutationError translates repository-level failures into the engine's
// error kinds where a mapping exists.
func mapMutationError(err error, accountID string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: ID %s", ErrAccountNotFound, accountID)
	}
	return err
}

func auditFields(userID string, now time.Time) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
}
