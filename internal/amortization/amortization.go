// Package amortization computes equated monthly installments for loans.
package amortization

import (
	"fmt"
	"time"

	"github.com/Dan9191/fintrack/internal/models"
	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// Summary holds the repayment figures of a loan
type Summary struct {
	EMI           decimal.Decimal `json:"emi"`
	TotalPayable  decimal.Decimal `json:"total_payable"`
	TotalInterest decimal.Decimal `json:"total_interest"`
}

// Installment is one period of an amortization schedule
type Installment struct {
	Period    int             `json:"period"`
	DueDate   time.Time       `json:"due_date"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Total     decimal.Decimal `json:"total"`
	Remaining decimal.Decimal `json:"remaining"`
}

// MonthlyRate converts an annual percentage rate to a monthly decimal rate
func MonthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.Div(twelve).Div(hundred)
}

func validate(principal, annualRate decimal.Decimal, tenureMonths int) error {
	if tenureMonths <= 0 {
		return fmt.Errorf("%w: tenure must be positive, got %d months", models.ErrPrecondition, tenureMonths)
	}
	if principal.IsNegative() {
		return fmt.Errorf("%w: principal must not be negative, got %s", models.ErrPrecondition, principal)
	}
	if annualRate.IsNegative() {
		return fmt.Errorf("%w: rate must not be negative, got %s", models.ErrPrecondition, annualRate)
	}
	return nil
}

// EMI returns the installment rounded to the currency minor unit.
//
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1), r = annual / 12 / 100
//
// A zero rate splits the principal evenly across the tenure.
func EMI(principal, annualRate decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	if err := validate(principal, annualRate, tenureMonths); err != nil {
		return decimal.Zero, err
	}

	n := decimal.NewFromInt(int64(tenureMonths))
	r := MonthlyRate(annualRate)
	if r.IsZero() {
		return principal.Div(n).Round(2), nil
	}

	factor := one.Add(r).Pow(n)
	emi := principal.Mul(r).Mul(factor).Div(factor.Sub(one))
	return emi.Round(2), nil
}

// Calculate returns EMI, total payable and total interest
func Calculate(principal, annualRate decimal.Decimal, tenureMonths int) (Summary, error) {
	emi, err := EMI(principal, annualRate, tenureMonths)
	if err != nil {
		return Summary{}, err
	}
	total := emi.Mul(decimal.NewFromInt(int64(tenureMonths)))
	return Summary{
		EMI:           emi,
		TotalPayable:  total,
		TotalInterest: total.Sub(principal),
	}, nil
}

// ForLoan calculates the summary of a stored loan
func ForLoan(loan *models.Loan) (Summary, error) {
	s, err := Calculate(loan.Principal, loan.Rate, loan.TenureMonths)
	if err != nil {
		return Summary{}, fmt.Errorf("loan %q: %w", loan.Name, err)
	}
	return s, nil
}

// TotalEMI sums each loan's installment. Loans amortize independently, so this
// is not the EMI of the summed principal.
func TotalEMI(loans []models.Loan) (decimal.Decimal, error) {
	total := decimal.Zero
	for i := range loans {
		emi, err := EMI(loans[i].Principal, loans[i].Rate, loans[i].TenureMonths)
		if err != nil {
			return decimal.Zero, fmt.Errorf("loan %q: %w", loans[i].Name, err)
		}
		total = total.Add(emi)
	}
	return total, nil
}

// Schedule builds the month-by-month repayment plan. The first installment is
// due one month after start; the last one absorbs rounding so the balance ends at zero.
func Schedule(principal, annualRate decimal.Decimal, tenureMonths int, start time.Time) ([]Installment, error) {
	emi, err := EMI(principal, annualRate, tenureMonths)
	if err != nil {
		return nil, err
	}

	r := MonthlyRate(annualRate)
	remaining := principal
	schedule := make([]Installment, 0, tenureMonths)

	for period := 1; period <= tenureMonths; period++ {
		interest := remaining.Mul(r).Round(2)
		principalPart := emi.Sub(interest)
		if period == tenureMonths || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}
		remaining = remaining.Sub(principalPart)

		schedule = append(schedule, Installment{
			Period:    period,
			DueDate:   start.AddDate(0, period, 0),
			Principal: principalPart,
			Interest:  interest,
			Total:     principalPart.Add(interest),
			Remaining: remaining,
		})
	}
	return schedule, nil
}
