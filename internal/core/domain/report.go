package domain

import "github.com/shopspring/decimal"

// SumScope selects which aggregate figure a report's summary balance reflects
// when a date range is applied. The original system summed amounts across all
// accounts system-wide while listing only the requested account's entries;
// both figures are computed so the caller can choose explicitly.
type SumScope string

const (
	SumScopeAccount SumScope = "account"
	SumScopeSystem  SumScope = "system"
)

// Report is the date-filtered view over one account's ledger entries.
// Without a date range, SummaryBalance is the account's live balance and the
// range sums are nil. With a range, AccountRangeSum and SystemRangeSum hold
// the account-scoped and system-wide amount sums for the range, and
// SummaryBalance mirrors whichever one the requested scope selected.
type Report struct {
	AccountID      string          `json:"accountID"`
	Transactions   []Transaction   `json:"transactions"`
	SummaryBalance decimal.Decimal `json:"summaryBalance"`

	AccountRangeSum *decimal.Decimal `json:"accountRangeSum,omitempty"`
	SystemRangeSum  *decimal.Decimal `json:"systemRangeSum,omitempty"`
}

// TransferResult reports a committed transfer: both ledger legs and the
// post-transfer balances of the two accounts involved.
type TransferResult struct {
	TransferID         string          `json:"transferID"`
	Sent               Transaction     `json:"sent"`
	Received           Transaction     `json:"received"`
	SourceBalance      decimal.Decimal `json:"sourceBalance"`
	DestinationBalance decimal.Decimal `json:"destinationBalance"`
}
