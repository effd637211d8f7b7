// Package interfaces defines the contracts between the engine and its collaborators
package interfaces

import (
	"context"
	"time"

	"github.com/Dan9191/fintrack/internal/models"
)

// LoanStore persists loans. Find methods return models.ErrNotFound when absent.
type LoanStore interface {
	FindLoanByExternalID(ctx context.Context, externalID string) (*models.Loan, error)
	CreateLoan(ctx context.Context, loan *models.Loan) error
	UpdateLoan(ctx context.Context, loan *models.Loan) error
	ListLoans(ctx context.Context) ([]models.Loan, error)
}

// InvestmentStore persists investment holdings
type InvestmentStore interface {
	FindInvestmentByExternalID(ctx context.Context, externalID string) (*models.Investment, error)
	CreateInvestment(ctx context.Context, inv *models.Investment) error
	UpdateInvestment(ctx context.Context, inv *models.Investment) error
	ListInvestments(ctx context.Context, r models.DateRange) ([]models.Investment, error)
}

// SavingStore persists saving entries
type SavingStore interface {
	CreateSaving(ctx context.Context, s *models.Saving) error
	ListSavings(ctx context.Context, r models.DateRange) ([]models.Saving, error)
}

// ExpenseStore persists expenses
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e *models.Expense) error
	ListExpenses(ctx context.Context, r models.DateRange) ([]models.Expense, error)
}

// TemplateStore persists recurring templates
type TemplateStore interface {
	CreateTemplate(ctx context.Context, t *models.RecurringTemplate) error
	ListActiveTemplates(ctx context.Context) ([]models.RecurringTemplate, error)
	// MarkTemplateProcessed moves last_processed_date from prev to day. It returns
	// models.ErrConflict when the stored value no longer equals prev.
	MarkTemplateProcessed(ctx context.Context, id int64, prev *time.Time, day time.Time) error
}

// ProfileStore persists user profiles
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	// CreateProfile inserts a profile, leaving an existing one untouched
	CreateProfile(ctx context.Context, p *models.Profile) error
	SaveProfile(ctx context.Context, p *models.Profile) error
}

// PolicyStore persists insurance policies
type PolicyStore interface {
	CreatePolicy(ctx context.Context, p *models.Policy) error
	ListPolicies(ctx context.Context) ([]models.Policy, error)
}

// Store is the full set of persistence operations the engine consumes
type Store interface {
	LoanStore
	InvestmentStore
	SavingStore
	ExpenseStore
	TemplateStore
	ProfileStore
	PolicyStore

	// InTx runs fn against a transactional view of the store. Writes made by fn
	// are committed together, or discarded when fn returns an error.
	InTx(ctx context.Context, fn func(Store) error) error
}
