package service

import (
	"time"

	"saccosphere/internal/apperror"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type LoanScheduleRequest struct {
	Principal        decimal.Decimal `json:"principal" binding:"required"`
	AnnualRatePct    decimal.Decimal `json:"annual_rate_pct" binding:"required"`
	TermMonths       int             `json:"term_months" binding:"required,min=1,max=600"`
	FirstPaymentDate *time.Time      `json:"first_payment_date"`
}

type LoanInstallment struct {
	Number    int             `json:"number"`
	DueDate   string          `json:"due_date,omitempty"`
	Payment   decimal.Decimal `json:"payment"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Balance   decimal.Decimal `json:"balance"`
}

type LoanSchedule struct {
	Principal      decimal.Decimal   `json:"principal"`
	AnnualRatePct  decimal.Decimal   `json:"annual_rate_pct"`
	TermMonths     int               `json:"term_months"`
	MonthlyPayment decimal.Decimal   `json:"monthly_payment"`
	TotalInterest  decimal.Decimal   `json:"total_interest"`
	TotalPayment   decimal.Decimal   `json:"total_payment"`
	Installments   []LoanInstallment `json:"installments"`
}

// --- Interface ---

type LoanService interface {
	CalculateSchedule(req LoanScheduleRequest) (*LoanSchedule, error)
}

type loanService struct{}

func NewLoanService() LoanService {
	return &loanService{}
}

var twelve = decimal.NewFromInt(12)

// CalculateSchedule produces an amortization schedule with a level monthly
// payment. All arithmetic stays in decimals; the final installment absorbs
// the rounding remainder so the balance lands on exactly zero.
func (s *loanService) CalculateSchedule(req LoanScheduleRequest) (*LoanSchedule, error) {
	if !req.Principal.IsPositive() {
		return nil, apperror.Validation("principal must be greater than zero")
	}
	if req.AnnualRatePct.IsNegative() {
		return nil, apperror.Validation("annual rate cannot be negative")
	}
	if req.TermMonths < 1 {
		return nil, apperror.Validation("term must be at least one month")
	}

	monthlyRate := req.AnnualRatePct.Div(decimal.NewFromInt(100)).Div(twelve)
	term := int64(req.TermMonths)

	var payment decimal.Decimal
	if monthlyRate.IsZero() {
		payment = req.Principal.Div(decimal.NewFromInt(term)).Round(2)
	} else {
		// payment = P * r * (1+r)^n / ((1+r)^n - 1)
		growth := decimal.NewFromInt(1).Add(monthlyRate).Pow(decimal.NewFromInt(term))
		payment = req.Principal.Mul(monthlyRate).Mul(growth).
			Div(growth.Sub(decimal.NewFromInt(1))).Round(2)
	}

	schedule := &LoanSchedule{
		Principal:      req.Principal,
		AnnualRatePct:  req.AnnualRatePct,
		TermMonths:     req.TermMonths,
		MonthlyPayment: payment,
		Installments:   make([]LoanInstallment, 0, req.TermMonths),
	}

	balance := req.Principal
	totalInterest := decimal.Zero
	totalPayment := decimal.Zero

	for n := 1; n <= req.TermMonths; n++ {
		interest := balance.Mul(monthlyRate).Round(2)
		principalPart := payment.Sub(interest)
		installmentPayment := payment

		// Last installment clears whatever is left.
		if n == req.TermMonths || principalPart.GreaterThan(balance) {
			principalPart = balance
			installmentPayment = principalPart.Add(interest)
		}
		balance = balance.Sub(principalPart)

		installment := LoanInstallment{
			Number:    n,
			Payment:   installmentPayment,
			Principal: principalPart,
			Interest:  interest,
			Balance:   balance,
		}
		if req.FirstPaymentDate != nil {
			installment.DueDate = req.FirstPaymentDate.AddDate(0, n-1, 0).Format("2006-01-02")
		}

		schedule.Installments = append(schedule.Installments, installment)
		totalInterest = totalInterest.Add(interest)
		totalPayment = totalPayment.Add(installmentPayment)
	}

	schedule.TotalInterest = totalInterest
	schedule.TotalPayment = totalPayment
	return schedule, nil
}
