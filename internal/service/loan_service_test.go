package service

import (
	"testing"
	"time"

	"saccosphere/internal/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateScheduleZeroRate(t *testing.T) {
	svc := NewLoanService()

	schedule, err := svc.CalculateSchedule(LoanScheduleRequest{
		Principal:     decimal.NewFromInt(1200),
		AnnualRatePct: decimal.Zero,
		TermMonths:    12,
	})
	require.NoError(t, err)

	assert.True(t, schedule.MonthlyPayment.Equal(decimal.NewFromInt(100)),
		"payment = %s", schedule.MonthlyPayment)
	assert.True(t, schedule.TotalInterest.IsZero())
	require.Len(t, schedule.Installments, 12)
	last := schedule.Installments[11]
	assert.True(t, last.Balance.IsZero(), "final balance = %s", last.Balance)
}

func TestCalculateScheduleBalanceReachesZero(t *testing.T) {
	svc := NewLoanService()

	schedule, err := svc.CalculateSchedule(LoanScheduleRequest{
		Principal:     decimal.NewFromInt(100000),
		AnnualRatePct: decimal.NewFromInt(12),
		TermMonths:    24,
	})
	require.NoError(t, err)

	require.Len(t, schedule.Installments, 24)
	last := schedule.Installments[23]
	assert.True(t, last.Balance.IsZero(), "final balance = %s", last.Balance)

	// Principal parts sum back to the full principal.
	sum := decimal.Zero
	for _, inst := range schedule.Installments {
		sum = sum.Add(inst.Principal)
	}
	assert.True(t, sum.Equal(schedule.Principal), "principal sum = %s", sum)

	// With interest the total paid exceeds the principal.
	assert.True(t, schedule.TotalPayment.GreaterThan(schedule.Principal))
	assert.True(t, schedule.TotalInterest.IsPositive())
}

func TestCalculateScheduleDueDates(t *testing.T) {
	svc := NewLoanService()

	first := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	schedule, err := svc.CalculateSchedule(LoanScheduleRequest{
		Principal:        decimal.NewFromInt(3000),
		AnnualRatePct:    decimal.NewFromInt(10),
		TermMonths:       3,
		FirstPaymentDate: &first,
	})
	require.NoError(t, err)

	require.Len(t, schedule.Installments, 3)
	assert.Equal(t, "2026-01-15", schedule.Installments[0].DueDate)
	assert.Equal(t, "2026-02-15", schedule.Installments[1].DueDate)
	assert.Equal(t, "2026-03-15", schedule.Installments[2].DueDate)
}

func TestCalculateScheduleValidation(t *testing.T) {
	svc := NewLoanService()

	cases := []struct {
		name string
		req  LoanScheduleRequest
	}{
		{"zero principal", LoanScheduleRequest{Principal: decimal.Zero, AnnualRatePct: decimal.NewFromInt(10), TermMonths: 12}},
		{"negative principal", LoanScheduleRequest{Principal: decimal.NewFromInt(-5), AnnualRatePct: decimal.NewFromInt(10), TermMonths: 12}},
		{"negative rate", LoanScheduleRequest{Principal: decimal.NewFromInt(1000), AnnualRatePct: decimal.NewFromInt(-1), TermMonths: 12}},
		{"zero term", LoanScheduleRequest{Principal: decimal.NewFromInt(1000), AnnualRatePct: decimal.NewFromInt(10), TermMonths: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CalculateSchedule(tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}
