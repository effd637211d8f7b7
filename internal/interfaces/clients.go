package interfaces

import (
	"context"

	"github.com/Dan9191/fintrack/internal/models"
)

// LoanSource pulls loan trades from a credit bureau
type LoanSource interface {
	FetchTrades(ctx context.Context) ([]models.Trade, error)
}

// HoldingSource pulls positions from a brokerage
type HoldingSource interface {
	FetchHoldings(ctx context.Context) ([]models.BrokerHolding, error)
}

// BenchmarkProvider supplies market reference rates
type BenchmarkProvider interface {
	LoanBenchmarks(ctx context.Context) (*models.LoanBenchmarks, error)
	InsuranceBenchmarks() models.InsuranceBenchmarks
}

// BenchmarkCache keeps recently fetched loan benchmarks.
// GetLoanBenchmarks returns models.ErrNotFound on a miss.
type BenchmarkCache interface {
	GetLoanBenchmarks(ctx context.Context) (*models.LoanBenchmarks, error)
	SetLoanBenchmarks(ctx context.Context, b *models.LoanBenchmarks) error
}

// ReminderSender delivers a digest of upcoming dues
type ReminderSender interface {
	SendDueReminders(to string, reminders []models.Reminder) error
}
