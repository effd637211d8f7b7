package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TemplateKind selects what a recurring template materializes
type TemplateKind string

const (
	KindSaving      TemplateKind = "SAV"
	KindInvestment  TemplateKind = "INV"
	KindExpenseBill TemplateKind = "BILL"
	KindExpenseSIP  TemplateKind = "SIP"
)

// Frequency of a recurring template
type Frequency string

const (
	FrequencyMonthly Frequency = "MON"
	FrequencyWeekly  Frequency = "WEK"
)

// RecurringTemplate describes a recurring saving, investment, bill or SIP.
// LastProcessed is the only guard against materializing a period twice.
type RecurringTemplate struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Kind          TemplateKind    `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Frequency     Frequency       `json:"frequency"`
	PaymentDay    int             `json:"payment_day,omitempty"` // 1-31, expense templates only
	Category      string          `json:"category,omitempty"`
	StartDate     time.Time       `json:"start_date"`
	LastProcessed *time.Time      `json:"last_processed_date,omitempty"`
	Active        bool            `json:"active"`
}

// IsExpense reports whether the template belongs to the expense family
func (t *RecurringTemplate) IsExpense() bool {
	return t.Kind == KindExpenseBill || t.Kind == KindExpenseSIP
}
