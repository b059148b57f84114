package dto_test

import (
	"testing"
	"time"

	"github.com/safebank/ledger_backend/internal/apperrors"
	"github.com/safebank/ledger_backend/internal/core/domain"
	"github.com/safebank/ledger_backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToReportParams_NoRange(t *testing.T) {
	params, err := dto.ReportQuery{}.ToReportParams()

	require.NoError(t, err)
	assert.Nil(t, params.From)
	assert.Nil(t, params.To)
	assert.Equal(t, domain.SumScopeAccount, params.Scope)
}

func TestToReportParams_RangeIsDayInclusive(t *testing.T) {
	q := dto.ReportQuery{StartDate: "2024-03-01", EndDate: "2024-03-31"}

	params, err := q.ToReportParams()

	require.NoError(t, err)
	require.NotNil(t, params.From)
	require.NotNil(t, params.To)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *params.From)
	// The end date covers the whole calendar day.
	assert.True(t, params.To.After(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.True(t, params.To.Before(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestToReportParams_HalfOpenRangeRejected(t *testing.T) {
	_, err := dto.ReportQuery{StartDate: "2024-03-01"}.ToReportParams()
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = dto.ReportQuery{EndDate: "2024-03-31"}.ToReportParams()
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestToReportParams_InvalidDates(t *testing.T) {
	_, err := dto.ReportQuery{StartDate: "01/03/2024", EndDate: "2024-03-31"}.ToReportParams()
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = dto.ReportQuery{StartDate: "2024-03-31", EndDate: "2024-03-01"}.ToReportParams()
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestToReportParams_SumScope(t *testing.T) {
	params, err := dto.ReportQuery{SumScope: "system"}.ToReportParams()
	require.NoError(t, err)
	assert.Equal(t, domain.SumScopeSystem, params.Scope)

	_, err = dto.ReportQuery{SumScope: "global"}.ToReportParams()
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
