package recurrence

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/utils"
)

func datePtr(t time.Time) *time.Time { return &t }

func rolling(freq models.Frequency, start time.Time, last *time.Time) *models.RecurringTemplate {
	return &models.RecurringTemplate{
		ID:            1,
		Name:          "Emergency fund",
		Kind:          models.KindSaving,
		Amount:        decimal.NewFromInt(5000),
		Frequency:     freq,
		StartDate:     start,
		LastProcessed: last,
		Active:        true,
	}
}

func calendar(day int, start time.Time, last *time.Time) *models.RecurringTemplate {
	return &models.RecurringTemplate{
		ID:            2,
		Name:          "Broadband",
		Kind:          models.KindExpenseBill,
		Amount:        decimal.NewFromInt(999),
		Frequency:     models.FrequencyMonthly,
		PaymentDay:    day,
		Category:      string(models.ExpenseBills),
		StartDate:     start,
		LastProcessed: last,
		Active:        true,
	}
}

func mustDue(t *testing.T, tmpl *models.RecurringTemplate, today time.Time) bool {
	t.Helper()
	due, err := IsDue(tmpl, today)
	require.NoError(t, err)
	return due
}

func TestIsDue_RollingMonthly(t *testing.T) {
	last := utils.Date(2026, time.October, 1)
	tmpl := rolling(models.FrequencyMonthly, utils.Date(2026, time.January, 1), &last)

	assert.False(t, mustDue(t, tmpl, last))
	assert.False(t, mustDue(t, tmpl, last.AddDate(0, 0, 29)))
	assert.True(t, mustDue(t, tmpl, last.AddDate(0, 0, 30)))
	assert.True(t, mustDue(t, tmpl, last.AddDate(0, 0, 45)))
}

func TestIsDue_RollingWeeklyFromStart(t *testing.T) {
	start := utils.Date(2026, time.October, 1)
	tmpl := rolling(models.FrequencyWeekly, start, nil)

	assert.False(t, mustDue(t, tmpl, start.AddDate(0, 0, 6)))
	assert.True(t, mustDue(t, tmpl, start.AddDate(0, 0, 7)))
}

func TestIsDue_CalendarDay(t *testing.T) {
	tmpl := calendar(15, utils.Date(2026, time.September, 1), nil)

	assert.True(t, mustDue(t, tmpl, utils.Date(2026, time.October, 20)))

	tmpl.LastProcessed = datePtr(utils.Date(2026, time.October, 20))
	assert.False(t, mustDue(t, tmpl, utils.Date(2026, time.October, 20)))
	assert.False(t, mustDue(t, tmpl, utils.Date(2026, time.October, 31)))
	assert.False(t, mustDue(t, tmpl, utils.Date(2026, time.November, 14)))
	assert.True(t, mustDue(t, tmpl, utils.Date(2026, time.November, 15)))
	assert.True(t, mustDue(t, tmpl, utils.Date(2026, time.November, 28)))
}

func TestIsDue_CalendarDayEdges(t *testing.T) {
	t.Run("clamped to short month", func(t *testing.T) {
		tmpl := calendar(31, utils.Date(2026, time.January, 1), datePtr(utils.Date(2026, time.January, 31)))
		assert.False(t, mustDue(t, tmpl, utils.Date(2026, time.February, 27)))
		assert.True(t, mustDue(t, tmpl, utils.Date(2026, time.February, 28)))
	})

	t.Run("not before start date", func(t *testing.T) {
		tmpl := calendar(1, utils.Date(2026, time.November, 10), nil)
		assert.False(t, mustDue(t, tmpl, utils.Date(2026, time.October, 20)))
		assert.True(t, mustDue(t, tmpl, utils.Date(2026, time.November, 10)))
	})

	t.Run("default payment day", func(t *testing.T) {
		tmpl := calendar(0, utils.Date(2026, time.January, 1), nil)
		assert.True(t, mustDue(t, tmpl, utils.Date(2026, time.March, 1)))
	})

	t.Run("year boundary", func(t *testing.T) {
		tmpl := calendar(5, utils.Date(2025, time.January, 1), datePtr(utils.Date(2025, time.December, 5)))
		assert.True(t, mustDue(t, tmpl, utils.Date(2026, time.January, 5)))
		tmpl.LastProcessed = datePtr(utils.Date(2025, time.January, 5))
		assert.True(t, mustDue(t, tmpl, utils.Date(2026, time.January, 5)))
	})
}

func TestIsDue_InvalidTemplates(t *testing.T) {
	start := utils.Date(2026, time.January, 1)
	today := utils.Date(2026, time.October, 20)

	tests := map[string]*models.RecurringTemplate{
		"unknown kind":      {Kind: "GIFT", Amount: decimal.NewFromInt(1), Frequency: models.FrequencyMonthly, StartDate: start},
		"unknown frequency": {Kind: models.KindSaving, Amount: decimal.NewFromInt(1), Frequency: "DAY", StartDate: start},
		"bad category":      {Kind: models.KindExpenseBill, Amount: decimal.NewFromInt(1), Category: "XYZ", StartDate: start},
		"bad fund category": {Kind: models.KindInvestment, Amount: decimal.NewFromInt(1), Frequency: models.FrequencyMonthly, Category: "BIL", StartDate: start},
		"bad sip category":  {Kind: models.KindExpenseSIP, Amount: decimal.NewFromInt(1), PaymentDay: 15, Category: string(models.InvestmentMutualFund), StartDate: start},
		"zero amount":       {Kind: models.KindSaving, Amount: decimal.Zero, Frequency: models.FrequencyMonthly, StartDate: start},
		"payment day":       {Kind: models.KindExpenseSIP, Amount: decimal.NewFromInt(1), PaymentDay: 32, StartDate: start},
		"no start date":     {Kind: models.KindSaving, Amount: decimal.NewFromInt(1), Frequency: models.FrequencyMonthly},
	}
	for name, tmpl := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := IsDue(tmpl, today)
			assert.ErrorIs(t, err, models.ErrInvalidTemplate)
			_, err = NextDue(tmpl, today)
			assert.ErrorIs(t, err, models.ErrInvalidTemplate)
		})
	}
}

func TestNextDue(t *testing.T) {
	today := utils.Date(2026, time.October, 19)

	tests := []struct {
		name string
		tmpl *models.RecurringTemplate
		want time.Time
	}{
		{
			name: "rolling ahead",
			tmpl: rolling(models.FrequencyMonthly, utils.Date(2026, time.January, 1), datePtr(utils.Date(2026, time.October, 1))),
			want: utils.Date(2026, time.October, 31),
		},
		{
			name: "rolling overdue clamps to today",
			tmpl: rolling(models.FrequencyWeekly, utils.Date(2026, time.January, 1), datePtr(utils.Date(2026, time.September, 1))),
			want: today,
		},
		{
			name: "calendar later this month",
			tmpl: calendar(25, utils.Date(2026, time.January, 1), datePtr(utils.Date(2026, time.September, 25))),
			want: utils.Date(2026, time.October, 25),
		},
		{
			name: "calendar already fired this month",
			tmpl: calendar(10, utils.Date(2026, time.January, 1), datePtr(utils.Date(2026, time.October, 10))),
			want: utils.Date(2026, time.November, 10),
		},
		{
			name: "calendar missed this month",
			tmpl: calendar(10, utils.Date(2026, time.January, 1), datePtr(utils.Date(2026, time.September, 10))),
			want: today,
		},
		{
			name: "calendar future start",
			tmpl: calendar(5, utils.Date(2026, time.December, 20), nil),
			want: utils.Date(2026, time.December, 20),
		},
		{
			name: "calendar clamped next month",
			tmpl: calendar(31, utils.Date(2026, time.January, 1), datePtr(utils.Date(2026, time.October, 31))),
			want: utils.Date(2026, time.November, 30),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDue(tt.tmpl, today)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextDueAgreesWithIsDue(t *testing.T) {
	tmpl := calendar(15, utils.Date(2026, time.September, 1), datePtr(utils.Date(2026, time.September, 15)))
	for day := utils.Date(2026, time.October, 1); day.Month() == time.October; day = day.AddDate(0, 0, 1) {
		next, err := NextDue(tmpl, day)
		require.NoError(t, err)
		assert.Equal(t, next.Equal(day), mustDue(t, tmpl, day), day.Format(utils.DateLayout))
	}
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, RollingWindow, PolicyFor(&models.RecurringTemplate{Kind: models.KindSaving}))
	assert.Equal(t, RollingWindow, PolicyFor(&models.RecurringTemplate{Kind: models.KindInvestment}))
	assert.Equal(t, CalendarDay, PolicyFor(&models.RecurringTemplate{Kind: models.KindExpenseBill}))
	assert.Equal(t, CalendarDay, PolicyFor(&models.RecurringTemplate{Kind: models.KindExpenseSIP}))
}
