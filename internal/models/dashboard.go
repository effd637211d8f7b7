package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Totals summarizes the record set
type Totals struct {
	Expenses      decimal.Decimal `json:"expenses"`
	Savings       decimal.Decimal `json:"savings"`
	Invested      decimal.Decimal `json:"invested"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	LoanPrincipal decimal.Decimal `json:"loan_principal"`
	MonthlyEMI    decimal.Decimal `json:"monthly_emi"`
	NetWorth      decimal.Decimal `json:"net_worth"`
	ActiveLoans   int             `json:"active_loans"`
	PolicyCover   decimal.Decimal `json:"policy_cover"` // sum assured across policies
}

// CategoryTotal is the spend recorded under one expense category
type CategoryTotal struct {
	Category ExpenseCategory `json:"category"`
	Label    string          `json:"label"`
	Total    decimal.Decimal `json:"total"`
}

// ReminderKind tells where an upcoming due comes from
type ReminderKind string

const (
	ReminderLoan      ReminderKind = "loan"
	ReminderRecurring ReminderKind = "recurring"
)

// Reminder is an upcoming payment or contribution
type Reminder struct {
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
	Kind     ReminderKind    `json:"type"`
	DaysLeft int             `json:"days_left"`
}

// SourceStatus records the outcome of one reconciliation or fetch pass
type SourceStatus struct {
	Source    string `json:"source"`
	Fresh     bool   `json:"fresh"`
	Error     string `json:"error,omitempty"`
	Seen      int    `json:"seen"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Skipped   int    `json:"skipped"`
}

// RecurrenceStatus records the outcome of one recurrence pass
type RecurrenceStatus struct {
	Evaluated int      `json:"evaluated"`
	Fired     int      `json:"fired"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// SyncStatus gathers every automation pass of a dashboard cycle
type SyncStatus struct {
	RunID      string           `json:"run_id"`
	Loans      SourceStatus     `json:"loans"`
	Benchmarks SourceStatus     `json:"benchmarks"`
	Holdings   SourceStatus     `json:"holdings"`
	Recurrence RecurrenceStatus `json:"recurrence"`
}

// Dashboard is the aggregate handed to the presentation layer
type Dashboard struct {
	GeneratedAt     time.Time           `json:"generated_at"`
	Totals          Totals              `json:"totals"`
	Budget          BudgetAnalysis      `json:"budget_analysis"`
	Trend           []TrendPoint        `json:"budget_trends"`
	Reminders       []Reminder          `json:"upcoming_reminders"`
	MarketLoans     *LoanBenchmarks     `json:"market_loans,omitempty"`
	MarketInsurance InsuranceBenchmarks `json:"market_insurance"`
	IdealInsurance  decimal.Decimal     `json:"ideal_insurance_coverage"`
	InsuranceCover  decimal.Decimal     `json:"insurance_cover"`
	ByCategory      []CategoryTotal     `json:"expenses_by_category"`
	TopCategories   []CategoryTotal     `json:"top_categories"`
	Sync            SyncStatus          `json:"sync"`
	Degraded        bool                `json:"degraded"`
}
