// Package budget evaluates spending against the 50/30/20 allocation rule
package budget

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/utils"
)

var (
	needsShare   = decimal.RequireFromString("0.50")
	wantsShare   = decimal.RequireFromString("0.30")
	savingsShare = decimal.RequireFromString("0.20")

	hundred         = decimal.NewFromInt(100)
	dangerThreshold = decimal.NewFromInt(20)
	bucketsInOrder  = []string{models.BucketNeeds, models.BucketWants, models.BucketSavings}
	title           = cases.Title(language.English)
)

// Categories maps expense category codes onto the needs and wants buckets
type Categories struct {
	needs map[string]struct{}
	wants map[string]struct{}
}

// NewCategories builds the bucket mapping; codes are compared case-insensitively
func NewCategories(needs, wants []string) Categories {
	c := Categories{needs: map[string]struct{}{}, wants: map[string]struct{}{}}
	for _, code := range needs {
		c.needs[strings.ToUpper(code)] = struct{}{}
	}
	for _, code := range wants {
		c.wants[strings.ToUpper(code)] = struct{}{}
	}
	return c
}

// Bucket returns the bucket an expense category belongs to, or "" when unmapped
func (c Categories) Bucket(category models.ExpenseCategory) string {
	code := strings.ToUpper(string(category))
	if _, ok := c.needs[code]; ok {
		return models.BucketNeeds
	}
	if _, ok := c.wants[code]; ok {
		return models.BucketWants
	}
	return ""
}

// Ideal returns the 50/30/20 split of the monthly income
func Ideal(income decimal.Decimal) models.Allocation {
	if !income.IsPositive() {
		return models.Allocation{Needs: decimal.Zero, Wants: decimal.Zero, Savings: decimal.Zero}
	}
	return models.Allocation{
		Needs:   income.Mul(needsShare).Round(2),
		Wants:   income.Mul(wantsShare).Round(2),
		Savings: income.Mul(savingsShare).Round(2),
	}
}

// Actual sums the records dated inside the period into the three buckets.
// Saving entries and investment contributions share the savings bucket.
func Actual(expenses []models.Expense, savings []models.Saving, investments []models.Investment, cats Categories, period models.DateRange) models.Allocation {
	out := models.Allocation{Needs: decimal.Zero, Wants: decimal.Zero, Savings: decimal.Zero}

	for _, e := range expenses {
		if !period.Contains(e.Date) {
			continue
		}
		switch cats.Bucket(e.Category) {
		case models.BucketNeeds:
			out.Needs = out.Needs.Add(e.Amount)
		case models.BucketWants:
			out.Wants = out.Wants.Add(e.Amount)
		}
	}
	for _, s := range savings {
		if period.Contains(s.Date) {
			out.Savings = out.Savings.Add(s.Amount)
		}
	}
	for _, inv := range investments {
		if period.Contains(inv.Date) {
			out.Savings = out.Savings.Add(inv.Amount)
		}
	}
	return out
}

// Alerts compares actual spending to the ideal allocation
func Alerts(actual, ideal models.Allocation) []models.BudgetAlert {
	alerts := []models.BudgetAlert{}

	for _, bucket := range bucketsInOrder {
		a, i := actual.Get(bucket), ideal.Get(bucket)
		if !a.GreaterThan(i) {
			continue
		}
		over := a.Sub(i)
		pct := decimal.Zero
		if i.IsPositive() {
			pct = over.Div(i).Mul(hundred)
		}
		severity := models.SeverityWarning
		if pct.GreaterThanOrEqual(dangerThreshold) {
			severity = models.SeverityDanger
		}
		alerts = append(alerts, models.BudgetAlert{
			Category: title.String(bucket),
			Message: fmt.Sprintf("You've exceeded your %s budget by ₹%s (%s%%)",
				bucket, utils.FormatAmount(over), pct.StringFixed(1)),
			Severity: severity,
		})
	}

	if actual.Savings.LessThan(ideal.Savings) {
		alerts = append(alerts, models.BudgetAlert{
			Category: title.String(models.BucketSavings),
			Message: fmt.Sprintf("You're ₹%s short of your savings goal this month",
				utils.FormatAmount(ideal.Savings.Sub(actual.Savings))),
			Severity: models.SeverityInfo,
		})
	}

	return alerts
}

// Percentages expresses each bucket as a share of income.
// Zero income yields zeros; negative income is rejected.
func Percentages(actual models.Allocation, income decimal.Decimal) (models.Allocation, error) {
	if income.IsNegative() {
		return models.Allocation{}, fmt.Errorf("%w: negative income %s", models.ErrPrecondition, income)
	}
	if income.IsZero() {
		return models.Allocation{Needs: decimal.Zero, Wants: decimal.Zero, Savings: decimal.Zero}, nil
	}
	pct := func(v decimal.Decimal) decimal.Decimal {
		return v.Div(income).Mul(hundred).Round(1)
	}
	return models.Allocation{
		Needs:   pct(actual.Needs),
		Wants:   pct(actual.Wants),
		Savings: pct(actual.Savings),
	}, nil
}

// Analyze runs the whole current-period evaluation
func Analyze(income decimal.Decimal, actual models.Allocation) (models.BudgetAnalysis, error) {
	percentages, err := Percentages(actual, income)
	if err != nil {
		return models.BudgetAnalysis{}, err
	}
	ideal := Ideal(income)
	return models.BudgetAnalysis{
		Income:      income,
		Actual:      actual,
		Ideal:       ideal,
		Percentages: percentages,
		Alerts:      Alerts(actual, ideal),
	}, nil
}

// TrailingMonths returns the calendar months ending with the month of today, oldest first
func TrailingMonths(today time.Time, n int) []models.DateRange {
	if n <= 0 {
		return nil
	}
	current := utils.MonthStart(today)
	out := make([]models.DateRange, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		out = append(out, models.DateRange{From: start, To: utils.MonthEnd(start)})
	}
	return out
}

// Trend pairs each trailing month's actual spending with the ideal allocation
func Trend(today time.Time, months int, income decimal.Decimal, expenses []models.Expense, savings []models.Saving, investments []models.Investment, cats Categories) []models.TrendPoint {
	ideal := Ideal(income)
	points := make([]models.TrendPoint, 0, months)
	for _, month := range TrailingMonths(today, months) {
		points = append(points, models.TrendPoint{
			Month:  month.From.Format("Jan 2006"),
			Start:  month.From,
			Actual: Actual(expenses, savings, investments, cats, month),
			Ideal:  ideal,
		})
	}
	return points
}

// ByCategory sums expenses per category, largest first
func ByCategory(expenses []models.Expense) []models.CategoryTotal {
	sums := map[models.ExpenseCategory]decimal.Decimal{}
	for _, e := range expenses {
		cat := e.Category
		if cat == "" {
			cat = models.ExpenseOther
		}
		sums[cat] = sums[cat].Add(e.Amount)
	}
	out := make([]models.CategoryTotal, 0, len(sums))
	for cat, total := range sums {
		out = append(out, models.CategoryTotal{Category: cat, Label: cat.Label(), Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
