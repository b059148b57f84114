package services

import (
	"context"

	"github.com/safebank/ledger_backend/internal/core/domain"
	"github.com/safebank/ledger_backend/internal/dto"
)

// ReportingSvcFacade produces the transaction report view over the ledger.
type ReportingSvcFacade interface {
	GenerateReport(ctx context.Context, accountID string, params dto.ReportParams) (*domain.Report, error)
}
