package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Saving represents a saving entry
type Saving struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	Source RecordSource    `json:"source"`
}
