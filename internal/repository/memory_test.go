package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_ExternalIDUnique(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	ext := "INE081A01012"

	require.NoError(t, repo.CreateInvestment(ctx, &models.Investment{Name: "Tata Steel", ExternalID: &ext}))
	err := repo.CreateInvestment(ctx, &models.Investment{Name: "Duplicate", ExternalID: &ext})
	assert.ErrorIs(t, err, models.ErrConflict)

	found, err := repo.FindInvestmentByExternalID(ctx, ext)
	require.NoError(t, err)
	assert.Equal(t, "Tata Steel", found.Name)

	_, err = repo.FindInvestmentByExternalID(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryRepository_UpdateKeepsExternalID(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	ext := "EXP_1001"
	loan := &models.Loan{Name: "Personal", Principal: decimal.NewFromInt(1000), TenureMonths: 12, ExternalID: &ext}
	require.NoError(t, repo.CreateLoan(ctx, loan))

	changed := *loan
	changed.ExternalID = nil
	changed.Rate = decimal.NewFromInt(11)
	require.NoError(t, repo.UpdateLoan(ctx, &changed))

	got, err := repo.FindLoanByExternalID(ctx, ext)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(11).Equal(got.Rate))
}

func TestMemoryRepository_InTxRollsBack(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	day := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	tmpl := &models.RecurringTemplate{Name: "SIP", Kind: models.KindSaving, Active: true, StartDate: day}
	require.NoError(t, repo.CreateTemplate(ctx, tmpl))

	err := repo.InTx(ctx, func(s interfaces.Store) error {
		require.NoError(t, s.CreateSaving(ctx, &models.Saving{Name: "SIP (Auto)", Amount: decimal.NewFromInt(10), Date: day}))
		require.NoError(t, s.MarkTemplateProcessed(ctx, tmpl.ID, nil, day))
		return errors.New("late failure")
	})
	require.Error(t, err)

	savings, err := repo.ListSavings(ctx, models.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, savings)

	templates, err := repo.ListActiveTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Nil(t, templates[0].LastProcessed)
}

func TestMemoryRepository_MarkTemplateProcessedGuard(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	day := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	tmpl := &models.RecurringTemplate{Name: "Rent", Kind: models.KindExpenseBill, Active: true}
	require.NoError(t, repo.CreateTemplate(ctx, tmpl))

	require.NoError(t, repo.MarkTemplateProcessed(ctx, tmpl.ID, nil, day))
	assert.ErrorIs(t, repo.MarkTemplateProcessed(ctx, tmpl.ID, nil, day), models.ErrConflict)
	assert.ErrorIs(t, repo.MarkTemplateProcessed(ctx, 999, nil, day), models.ErrNotFound)
}

func TestMemoryRepository_ListByRange(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	for _, d := range []int{1, 15, 28} {
		require.NoError(t, repo.CreateExpense(ctx, &models.Expense{
			Title: "x", Amount: decimal.NewFromInt(int64(d)), Category: models.ExpenseFood,
			Date: time.Date(2026, time.September, d, 0, 0, 0, 0, time.UTC),
		}))
	}

	got, err := repo.ListExpenses(ctx, models.DateRange{
		From: time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.September, 28, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 15, got[0].Date.Day())
	assert.Equal(t, 28, got[1].Date.Day())
}

func TestMemoryRepository_Profiles(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveProfile(ctx, &models.Profile{UserID: "u1", MonthlyIncome: decimal.NewFromInt(100000)}))
	require.NoError(t, repo.CreateProfile(ctx, &models.Profile{UserID: "u1"}))

	p, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100000).Equal(p.MonthlyIncome))

	_, err = repo.GetProfile(ctx, "u2")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryRepository_InTxKeepsConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

	for name, txErr := range map[string]error{"rollback": errors.New("late failure"), "commit": nil} {
		t.Run(name, func(t *testing.T) {
			repo := NewMemoryRepository()
			done := make(chan error, 1)

			err := repo.InTx(ctx, func(s interfaces.Store) error {
				go func() {
					done <- repo.CreateSaving(ctx, &models.Saving{Name: "Manual", Amount: decimal.NewFromInt(500), Date: day})
				}()
				require.NoError(t, s.CreateSaving(ctx, &models.Saving{Name: "RD (Auto)", Amount: decimal.NewFromInt(10), Date: day}))
				return txErr
			})
			assert.Equal(t, txErr, err)
			require.NoError(t, <-done)

			savings, err := repo.ListSavings(ctx, models.DateRange{})
			require.NoError(t, err)
			names := make([]string, 0, len(savings))
			for _, s := range savings {
				names = append(names, s.Name)
			}
			if txErr != nil {
				assert.Equal(t, []string{"Manual"}, names)
			} else {
				assert.ElementsMatch(t, []string{"RD (Auto)", "Manual"}, names)
			}
		})
	}
}

func TestMemoryRepository_InTxIsolatesUncommittedWrites(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	day := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

	err := repo.InTx(ctx, func(s interfaces.Store) error {
		require.NoError(t, s.CreateSaving(ctx, &models.Saving{Name: "RD (Auto)", Amount: decimal.NewFromInt(10), Date: day}))
		outside, err := repo.ListSavings(ctx, models.DateRange{})
		require.NoError(t, err)
		assert.Empty(t, outside)
		inside, err := s.ListSavings(ctx, models.DateRange{})
		require.NoError(t, err)
		assert.Len(t, inside, 1)
		return nil
	})
	require.NoError(t, err)

	savings, err := repo.ListSavings(ctx, models.DateRange{})
	require.NoError(t, err)
	assert.Len(t, savings, 1)
}
