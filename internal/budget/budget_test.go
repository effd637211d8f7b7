package budget

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/utils"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func alloc(needs, wants, savings string) models.Allocation {
	return models.Allocation{Needs: d(needs), Wants: d(wants), Savings: d(savings)}
}

func assertAlloc(t *testing.T, want, got models.Allocation) {
	t.Helper()
	assert.True(t, want.Needs.Equal(got.Needs), "needs: want %s got %s", want.Needs, got.Needs)
	assert.True(t, want.Wants.Equal(got.Wants), "wants: want %s got %s", want.Wants, got.Wants)
	assert.True(t, want.Savings.Equal(got.Savings), "savings: want %s got %s", want.Savings, got.Savings)
}

var defaultCats = NewCategories([]string{"BIL", "TRA", "EMI", "FOO"}, []string{"ENT", "OTH"})

func TestIdeal(t *testing.T) {
	assertAlloc(t, alloc("50000", "30000", "20000"), Ideal(d("100000")))
	assertAlloc(t, alloc("0", "0", "0"), Ideal(decimal.Zero))
	assertAlloc(t, alloc("0", "0", "0"), Ideal(d("-10")))
}

func TestActual(t *testing.T) {
	start := utils.Date(2026, time.October, 1)
	expenses := []models.Expense{
		{Amount: d("1000"), Category: models.ExpenseBills, Date: utils.Date(2026, time.October, 3)},
		{Amount: d("500"), Category: models.ExpenseFood, Date: utils.Date(2026, time.October, 10)},
		{Amount: d("700"), Category: models.ExpenseEntertainment, Date: utils.Date(2026, time.October, 12)},
		{Amount: d("9999"), Category: models.ExpenseBills, Date: utils.Date(2026, time.September, 30)},
	}
	savings := []models.Saving{
		{Amount: d("2000"), Date: utils.Date(2026, time.October, 1)},
		{Amount: d("3000"), Date: utils.Date(2026, time.August, 1)},
	}
	investments := []models.Investment{
		{Amount: d("1500"), Date: utils.Date(2026, time.October, 5)},
	}

	got := Actual(expenses, savings, investments, defaultCats, models.DateRange{From: start})
	assertAlloc(t, alloc("1500", "700", "3500"), got)
}

func TestActual_UnmappedCategoryIgnored(t *testing.T) {
	cats := NewCategories([]string{"bil"}, []string{"ent"})
	expenses := []models.Expense{
		{Amount: d("10"), Category: models.ExpenseBills, Date: utils.Date(2026, time.October, 3)},
		{Amount: d("20"), Category: models.ExpenseFood, Date: utils.Date(2026, time.October, 3)},
	}
	got := Actual(expenses, nil, nil, cats, models.DateRange{})
	assertAlloc(t, alloc("10", "0", "0"), got)
}

func TestAlerts_Thresholds(t *testing.T) {
	ideal := alloc("50000", "30000", "0")

	t.Run("at ideal", func(t *testing.T) {
		alerts := Alerts(alloc("50000", "0", "0"), ideal)
		assert.Empty(t, alerts)
	})

	t.Run("one over", func(t *testing.T) {
		alerts := Alerts(alloc("50001", "0", "0"), ideal)
		require.Len(t, alerts, 1)
		assert.Equal(t, "Needs", alerts[0].Category)
		assert.Equal(t, models.SeverityWarning, alerts[0].Severity)
	})

	t.Run("twenty percent over", func(t *testing.T) {
		alerts := Alerts(alloc("60000", "0", "0"), ideal)
		require.Len(t, alerts, 1)
		assert.Equal(t, models.SeverityDanger, alerts[0].Severity)
	})

	t.Run("far over", func(t *testing.T) {
		alerts := Alerts(alloc("90000", "0", "0"), ideal)
		require.Len(t, alerts, 1)
		assert.Equal(t, models.SeverityDanger, alerts[0].Severity)
	})

	t.Run("zero ideal", func(t *testing.T) {
		alerts := Alerts(alloc("0", "0", "100"), ideal)
		require.Len(t, alerts, 1)
		assert.Equal(t, "Savings", alerts[0].Category)
		assert.Equal(t, models.SeverityWarning, alerts[0].Severity)
		assert.Contains(t, alerts[0].Message, "(0.0%)")
	})
}

func TestPercentages(t *testing.T) {
	got, err := Percentages(alloc("60000", "20000", "15000"), d("100000"))
	require.NoError(t, err)
	assertAlloc(t, alloc("60", "20", "15"), got)

	got, err = Percentages(alloc("60000", "20000", "15000"), decimal.Zero)
	require.NoError(t, err)
	assertAlloc(t, alloc("0", "0", "0"), got)

	_, err = Percentages(alloc("1", "1", "1"), d("-1"))
	assert.ErrorIs(t, err, models.ErrPrecondition)
}

func TestAnalyze_MonthScenario(t *testing.T) {
	today := utils.Date(2026, time.October, 19)
	expenses := []models.Expense{
		{Amount: d("40000"), Category: models.ExpenseBills, Date: utils.Date(2026, time.October, 2)},
		{Amount: d("20000"), Category: models.ExpenseFood, Date: utils.Date(2026, time.October, 9)},
		{Amount: d("20000"), Category: models.ExpenseEntertainment, Date: utils.Date(2026, time.October, 11)},
	}
	savings := []models.Saving{{Amount: d("10000"), Date: utils.Date(2026, time.October, 1)}}
	investments := []models.Investment{{Amount: d("5000"), Date: utils.Date(2026, time.October, 15)}}

	actual := Actual(expenses, savings, investments, defaultCats, models.DateRange{From: utils.MonthStart(today)})
	analysis, err := Analyze(d("100000"), actual)
	require.NoError(t, err)

	assertAlloc(t, alloc("50000", "30000", "20000"), analysis.Ideal)
	assertAlloc(t, alloc("60", "20", "15"), analysis.Percentages)
	require.Len(t, analysis.Alerts, 2)

	assert.Equal(t, models.BudgetAlert{
		Category: "Needs",
		Message:  "You've exceeded your needs budget by ₹10,000.00 (20.0%)",
		Severity: models.SeverityDanger,
	}, analysis.Alerts[0])
	assert.Equal(t, models.BudgetAlert{
		Category: "Savings",
		Message:  "You're ₹5,000.00 short of your savings goal this month",
		Severity: models.SeverityInfo,
	}, analysis.Alerts[1])
}

func TestAnalyze_ZeroIncome(t *testing.T) {
	analysis, err := Analyze(decimal.Zero, alloc("100", "0", "0"))
	require.NoError(t, err)
	assertAlloc(t, alloc("0", "0", "0"), analysis.Ideal)
	assertAlloc(t, alloc("0", "0", "0"), analysis.Percentages)
}

func TestTrailingMonths(t *testing.T) {
	months := TrailingMonths(utils.Date(2026, time.February, 10), 6)
	require.Len(t, months, 6)
	assert.Equal(t, utils.Date(2025, time.September, 1), months[0].From)
	assert.Equal(t, utils.Date(2025, time.September, 30), months[0].To)
	assert.Equal(t, utils.Date(2026, time.February, 1), months[5].From)
	assert.Equal(t, utils.Date(2026, time.February, 28), months[5].To)
	assert.Nil(t, TrailingMonths(time.Now(), 0))
}

func TestTrend(t *testing.T) {
	today := utils.Date(2026, time.October, 19)
	expenses := []models.Expense{
		{Amount: d("100"), Category: models.ExpenseBills, Date: utils.Date(2026, time.September, 30)},
		{Amount: d("200"), Category: models.ExpenseBills, Date: utils.Date(2026, time.October, 1)},
		{Amount: d("999"), Category: models.ExpenseBills, Date: utils.Date(2026, time.March, 1)},
	}

	points := Trend(today, 6, d("1000"), expenses, nil, nil, defaultCats)
	require.Len(t, points, 6)
	assert.Equal(t, "May 2026", points[0].Month)
	assert.Equal(t, "Oct 2026", points[5].Month)
	assert.True(t, d("100").Equal(points[4].Actual.Needs))
	assert.True(t, d("200").Equal(points[5].Actual.Needs))
	assert.True(t, points[0].Actual.Needs.IsZero())
	assertAlloc(t, alloc("500", "300", "200"), points[5].Ideal)
}
