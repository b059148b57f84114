package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/safebank/ledger_backend/internal/core/domain"
	portsrepo "github.com/safebank/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/safebank/ledger_backend/internal/core/ports/services"
	"github.com/safebank/ledger_backend/internal/dto"
	"github.com/safebank/ledger_backend/internal/middleware"
)

// reportingService produces the transaction report view. It carries no state
// between requests; every figure is computed from the parameters passed in.
type reportingService struct {
	ledgerRepo    portsrepo.LedgerRepository
	accountRepo   portsrepo.AccountRepository
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new ReportingService.
func NewReportingService(ledgerRepo portsrepo.LedgerRepository, accountRepo portsrepo.AccountRepository, reportingRepo portsrepo.ReportingRepository) portssvc.ReportingSvcFacade {
	return &reportingService{
		ledgerRepo:    ledgerRepo,
		accountRepo:   accountRepo,
		reportingRepo: reportingRepo,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// GenerateReport returns the account's ledger entries, date-filtered when a
// range is given, together with a summary balance.
//
// Without a range the summary is the live account balance. With a range, two
// aggregate sums are computed: account-scoped, and system-wide across all
// accounts. The system-wide figure reproduces what the original report view
// displayed (its list filter was account-scoped but its sum was not); the
// requested scope decides which one lands in SummaryBalance, and both are
// returned so the discrepancy stays visible to the caller.
func (s *reportingService) GenerateReport(ctx context.Context, accountID string, params dto.ReportParams) (*domain.Report, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	transactions, err := s.ledgerRepo.ListTransactionsByAccount(ctx, accountID, params.From, params.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountID, err)
	}

	report := &domain.Report{
		AccountID:    accountID,
		Transactions: transactions,
	}

	if params.From == nil || params.To == nil {
		report.SummaryBalance = account.Balance
		logger.Debug("Report generated", slog.String("account_id", accountID), slog.Int("transaction_count", len(transactions)))
		return report, nil
	}

	accountSum, err := s.reportingRepo.SumAmountsByAccount(ctx, accountID, *params.From, *params.To)
	if err != nil {
		return nil, fmt.Errorf("failed to sum amounts for account %s: %w", accountID, err)
	}
	systemSum, err := s.reportingRepo.SumAmountsSystemWide(ctx, *params.From, *params.To)
	if err != nil {
		return nil, fmt.Errorf("failed to sum amounts system-wide: %w", err)
	}

	report.AccountRangeSum = &accountSum
	report.SystemRangeSum = &systemSum
	if params.Scope == domain.SumScopeSystem {
		report.SummaryBalance = systemSum
	} else {
		report.SummaryBalance = accountSum
	}

	logger.Debug("Date-ranged report generated",
		slog.String("account_id", accountID),
		slog.Int("transaction_count", len(transactions)),
		slog.String("sum_scope", string(params.Scope)))
	return report, nil
}
