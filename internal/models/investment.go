package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentCategory classifies an investment holding
type InvestmentCategory string

const (
	InvestmentStock      InvestmentCategory = "STK"
	InvestmentMutualFund InvestmentCategory = "MF"
	InvestmentGold       InvestmentCategory = "GLD"
	InvestmentFD         InvestmentCategory = "FD"
	InvestmentRealEstate InvestmentCategory = "RE"
	InvestmentCrypto     InvestmentCategory = "CRY"
	InvestmentOther      InvestmentCategory = "OTH"
)

// Valid reports whether the category is known
func (c InvestmentCategory) Valid() bool {
	switch c {
	case InvestmentStock, InvestmentMutualFund, InvestmentGold, InvestmentFD,
		InvestmentRealEstate, InvestmentCrypto, InvestmentOther:
		return true
	}
	return false
}

// RecordSource tells how a record came into the store
type RecordSource string

const (
	SourceManual   RecordSource = "manual"
	SourceExternal RecordSource = "external"
	SourceAuto     RecordSource = "auto"
)

// Investment represents an investment holding
type Investment struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Amount       decimal.Decimal    `json:"amount"` // invested
	CurrentValue decimal.Decimal    `json:"current_value"`
	Quantity     decimal.Decimal    `json:"quantity"`
	Category     InvestmentCategory `json:"category"`
	Date         time.Time          `json:"date"`
	ExternalID   *string            `json:"external_id,omitempty"`
	Source       RecordSource       `json:"source"`
}

// BrokerHolding is a single position reported by the brokerage feed
type BrokerHolding struct {
	Symbol         string           `json:"symbol"`
	ISIN           string           `json:"isin"`
	Name           string           `json:"name"`
	Type           string           `json:"type"`
	Quantity       *decimal.Decimal `json:"quantity"`
	BuyPrice       *decimal.Decimal `json:"buy_price"`
	CurrentPrice   *decimal.Decimal `json:"current_price"`
	InvestedAmount *decimal.Decimal `json:"invested_amount"`
	PurchaseDate   string           `json:"purchase_date"`

	// DecodeErr is set when the feed entry could not be decoded
	DecodeErr error `json:"-"`
}

// Malformed returns the decode error of the entry, if any
func (h BrokerHolding) Malformed() error { return h.DecodeErr }

// ExternalID prefers the ISIN over the ticker symbol
func (h BrokerHolding) ExternalID() string {
	if h.ISIN != "" {
		return h.ISIN
	}
	return h.Symbol
}

// Portfolio is the brokerage response body
type Portfolio struct {
	Holdings []BrokerHolding `json:"holdings"`
}

// UnmarshalJSON decodes holdings one at a time. An entry that fails to decode
// keeps its identifiers and carries the error in DecodeErr.
func (p *Portfolio) UnmarshalJSON(data []byte) error {
	var body struct {
		Holdings []json.RawMessage `json:"holdings"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	p.Holdings = make([]BrokerHolding, 0, len(body.Holdings))
	for _, raw := range body.Holdings {
		var h BrokerHolding
		if err := json.Unmarshal(raw, &h); err != nil {
			var id struct {
				Symbol string `json:"symbol"`
				ISIN   string `json:"isin"`
				Name   string `json:"name"`
			}
			_ = json.Unmarshal(raw, &id)
			h = BrokerHolding{Symbol: id.Symbol, ISIN: id.ISIN, Name: id.Name, DecodeErr: malformedEntry(err)}
		}
		p.Holdings = append(p.Holdings, h)
	}
	return nil
}
