package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bucket names of the 50/30/20 allocation
const (
	BucketNeeds   = "needs"
	BucketWants   = "wants"
	BucketSavings = "savings"
)

// Allocation splits an amount across needs, wants and savings
type Allocation struct {
	Needs   decimal.Decimal `json:"needs"`
	Wants   decimal.Decimal `json:"wants"`
	Savings decimal.Decimal `json:"savings"`
}

// Get returns the bucket value by name
func (a Allocation) Get(bucket string) decimal.Decimal {
	switch bucket {
	case BucketNeeds:
		return a.Needs
	case BucketWants:
		return a.Wants
	case BucketSavings:
		return a.Savings
	}
	return decimal.Zero
}

// Severity of a budget alert
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// BudgetAlert is raised when a bucket deviates from its ideal
type BudgetAlert struct {
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// BudgetAnalysis is the current month budget view
type BudgetAnalysis struct {
	Income      decimal.Decimal `json:"income"`
	Actual      Allocation      `json:"actual"`
	Ideal       Allocation      `json:"ideal"`
	Percentages Allocation      `json:"percentages"`
	Alerts      []BudgetAlert   `json:"alerts"`
}

// TrendPoint pairs one month of actual spending with the ideal allocation
type TrendPoint struct {
	Month  string     `json:"month"` // e.g. "Oct 2026"
	Start  time.Time  `json:"start"`
	Actual Allocation `json:"actual"`
	Ideal  Allocation `json:"ideal"`
}

// DateRange bounds a bulk read; a zero From or To leaves that side open
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether the calendar date of d falls inside the range
func (r DateRange) Contains(d time.Time) bool {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}
