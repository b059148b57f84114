package dto

import (
	"fmt"
	"time"

	"github.com/safebank/ledger_backend/internal/apperrors"
	"github.com/safebank/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

const reportDateLayout = "2006-01-02"

// ReportQuery binds the transaction report query parameters. Dates use the
// YYYY-MM-DD form; both must be present to apply a range.
type ReportQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	SumScope  string `form:"sum_scope"`
}

// ReportParams are the parsed report parameters passed to the reporting
// service. From/To are inclusive calendar-day bounds; both nil means the
// full history with the live balance as summary.
type ReportParams struct {
	From  *time.Time
	To    *time.Time
	Scope domain.SumScope
}

// ToReportParams validates and parses the raw query. An end date resolves to
// the last instant of that calendar day so the range is day-inclusive.
func (q ReportQuery) ToReportParams() (ReportParams, error) {
	params := ReportParams{Scope: domain.SumScopeAccount}

	switch q.SumScope {
	case "", string(domain.SumScopeAccount):
	case string(domain.SumScopeSystem):
		params.Scope = domain.SumScopeSystem
	default:
		return params, fmt.Errorf("%w: sum_scope must be %q or %q", apperrors.ErrValidation, domain.SumScopeAccount, domain.SumScopeSystem)
	}

	if q.StartDate == "" && q.EndDate == "" {
		return params, nil
	}
	if q.StartDate == "" || q.EndDate == "" {
		return params, fmt.Errorf("%w: start_date and end_date must be provided together", apperrors.ErrValidation)
	}

	start, err := time.Parse(reportDateLayout, q.StartDate)
	if err != nil {
		return params, fmt.Errorf("%w: invalid start_date %q", apperrors.ErrValidation, q.StartDate)
	}
	end, err := time.Parse(reportDateLayout, q.EndDate)
	if err != nil {
		return params, fmt.Errorf("%w: invalid end_date %q", apperrors.ErrValidation, q.EndDate)
	}
	if end.Before(start) {
		return params, fmt.Errorf("%w: end_date precedes start_date", apperrors.ErrValidation)
	}

	endOfDay := end.Add(24*time.Hour - time.Nanosecond)
	params.From = &start
	params.To = &endOfDay
	return params, nil
}

// ReportResponse is the API representation of a transaction report.
type ReportResponse struct {
	AccountID       string                `json:"accountID"`
	Transactions    []TransactionResponse `json:"transactions"`
	SummaryBalance  decimal.Decimal       `json:"summaryBalance"`
	AccountRangeSum *decimal.Decimal      `json:"accountRangeSum,omitempty"`
	SystemRangeSum  *decimal.Decimal      `json:"systemRangeSum,omitempty"`
}

// ToReportResponse maps a domain report to its API representation.
func ToReportResponse(r *domain.Report) ReportResponse {
	return ReportResponse{
		AccountID:       r.AccountID,
		Transactions:    ToTransactionResponses(r.Transactions),
		SummaryBalance:  r.SummaryBalance,
		AccountRangeSum: r.AccountRangeSum,
		SystemRangeSum:  r.SystemRangeSum,
	}
}
