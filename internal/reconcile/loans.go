package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/utils"
)

// LoanBinding creates loans for unseen bureau trades. Existing loans are never modified by a trade.
func LoanBinding(store interfaces.LoanStore) Binding[models.Trade, models.Loan] {
	return Binding[models.Trade, models.Loan]{
		Source: "loans",
		Key:    func(t models.Trade) string { return strings.TrimSpace(t.TradeID) },
		Find:   store.FindLoanByExternalID,
		Build:  loanFromTrade,
		Create: store.CreateLoan,
	}
}

func loanFromTrade(t models.Trade, key string) (*models.Loan, error) {
	if t.OriginalAmount == nil || t.OriginalAmount.IsNegative() {
		return nil, fmt.Errorf("%w: original amount missing or negative", models.ErrMalformedRecord)
	}
	if t.InterestRate == nil || t.InterestRate.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate missing or negative", models.ErrMalformedRecord)
	}
	if t.TenureMonths <= 0 {
		return nil, fmt.Errorf("%w: tenure %d", models.ErrMalformedRecord, t.TenureMonths)
	}
	start, err := utils.ParseDate(t.OpenDate)
	if err != nil {
		return nil, fmt.Errorf("%w: open date: %v", models.ErrMalformedRecord, err)
	}

	return &models.Loan{
		Name:         loanName(t.AccountType, t.AccountNumber),
		Principal:    *t.OriginalAmount,
		Rate:         *t.InterestRate,
		TenureMonths: t.TenureMonths,
		StartDate:    start,
		ExternalID:   &key,
		Benchmark:    models.BenchmarkNone,
	}, nil
}

func loanName(accountType, accountNumber string) string {
	if accountType == "" {
		accountType = "Loan"
	}
	tail := accountNumber
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	if tail == "" {
		return accountType
	}
	return fmt.Sprintf("%s (%s)", accountType, tail)
}

// applyBenchmarkRates overwrites the rate of benchmark-linked loans with the current market figure
func applyBenchmarkRates(ctx context.Context, store interfaces.LoanStore, b *models.LoanBenchmarks) (models.SourceStatus, error) {
	status := models.SourceStatus{Source: "benchmarks"}

	loans, err := store.ListLoans(ctx)
	if err != nil {
		return status, fmt.Errorf("failed to list loans: %w", err)
	}
	for i := range loans {
		loan := &loans[i]
		bench, ok := b.For(loan.Benchmark)
		if !ok {
			continue
		}
		status.Seen++
		if bench.Rate.LessThanOrEqual(decimal.Zero) {
			status.Skipped++
			continue
		}
		if loan.Rate.Equal(bench.Rate) {
			status.Unchanged++
			continue
		}
		loan.Rate = bench.Rate
		if err := store.UpdateLoan(ctx, loan); err != nil {
			return status, fmt.Errorf("failed to update loan %d rate: %w", loan.ID, err)
		}
		status.Updated++
	}

	status.Fresh = true
	return status, nil
}
