package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// BenchmarkCategory links a loan rate to a market benchmark
type BenchmarkCategory string

const (
	BenchmarkNone     BenchmarkCategory = "NONE"
	BenchmarkHome     BenchmarkCategory = "HOME"
	BenchmarkPersonal BenchmarkCategory = "PERS"
	BenchmarkCar      BenchmarkCategory = "CAR"
)

// Valid reports whether the category is one of the known benchmark categories
func (b BenchmarkCategory) Valid() bool {
	switch b {
	case BenchmarkNone, BenchmarkHome, BenchmarkPersonal, BenchmarkCar:
		return true
	}
	return false
}

// Loan represents a loan in the system
type Loan struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Principal    decimal.Decimal   `json:"principal"`
	Rate         decimal.Decimal   `json:"rate"` // annual, percent
	TenureMonths int               `json:"tenure_months"`
	StartDate    time.Time         `json:"start_date"`
	ExternalID   *string           `json:"external_id,omitempty"`
	Benchmark    BenchmarkCategory `json:"benchmark"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Trade is a single loan line reported by the credit bureau
type Trade struct {
	TradeID        string           `json:"tradeId"`
	AccountType    string           `json:"accountType"`
	AccountNumber  string           `json:"accountNumber"`
	CurrentBalance *decimal.Decimal `json:"currentBalance"`
	InterestRate   *decimal.Decimal `json:"interestRate"`
	OriginalAmount *decimal.Decimal `json:"originalAmount"`
	OpenDate       string           `json:"openDate"`
	TenureMonths   int              `json:"tenureMonths"`
	Status         string           `json:"status"`

	// DecodeErr is set when the feed entry could not be decoded
	DecodeErr error `json:"-"`
}

// Malformed returns the decode error of the entry, if any
func (t Trade) Malformed() error { return t.DecodeErr }

// CreditReport is the credit bureau response body
type CreditReport struct {
	CreditScore int     `json:"creditScore"`
	Trades      []Trade `json:"trades"`
}

// UnmarshalJSON decodes trades one at a time. A trade that fails to decode
// keeps its trade id and carries the error in DecodeErr.
func (r *CreditReport) UnmarshalJSON(data []byte) error {
	var body struct {
		CreditScore int               `json:"creditScore"`
		Trades      []json.RawMessage `json:"trades"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	r.CreditScore = body.CreditScore
	r.Trades = make([]Trade, 0, len(body.Trades))
	for _, raw := range body.Trades {
		var t Trade
		if err := json.Unmarshal(raw, &t); err != nil {
			var id struct {
				TradeID string `json:"tradeId"`
			}
			_ = json.Unmarshal(raw, &id)
			t = Trade{TradeID: id.TradeID, DecodeErr: malformedEntry(err)}
		}
		r.Trades = append(r.Trades, t)
	}
	return nil
}
