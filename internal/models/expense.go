package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory is one of the fixed expense categories
type ExpenseCategory string

const (
	ExpenseFood          ExpenseCategory = "FOO"
	ExpenseTransport     ExpenseCategory = "TRA"
	ExpenseEntertainment ExpenseCategory = "ENT"
	ExpenseBills         ExpenseCategory = "BIL"
	ExpenseEMI           ExpenseCategory = "EMI"
	ExpenseOther         ExpenseCategory = "OTH"
)

// Valid reports whether the category is known
func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseFood, ExpenseTransport, ExpenseEntertainment, ExpenseBills, ExpenseEMI, ExpenseOther:
		return true
	}
	return false
}

// Label returns the display name of the category
func (c ExpenseCategory) Label() string {
	switch c {
	case ExpenseFood:
		return "Food"
	case ExpenseTransport:
		return "Transport"
	case ExpenseEntertainment:
		return "Entertainment"
	case ExpenseBills:
		return "Bills"
	case ExpenseEMI:
		return "EMI"
	case ExpenseOther:
		return "Other"
	}
	return string(c)
}

// Expense represents a recorded expense
type Expense struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Category  ExpenseCategory `json:"category"`
	Date      time.Time       `json:"date"`
	Source    RecordSource    `json:"source"`
	CreatedAt time.Time       `json:"created_at"`
}

// Profile holds per-user settings used by the budget engine
type Profile struct {
	UserID        string          `json:"user_id"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
