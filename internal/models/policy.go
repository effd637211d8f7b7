package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PolicyType classifies an insurance policy
type PolicyType string

const (
	PolicyTerm    PolicyType = "TERM"
	PolicyHealth  PolicyType = "HEALTH"
	PolicyVehicle PolicyType = "VEHICLE"
	PolicyOther   PolicyType = "OTHER"
)

// Policy represents an insurance policy held by the user
type Policy struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Type        PolicyType      `json:"type"`
	SumAssured  decimal.Decimal `json:"sum_assured"`
	Premium     decimal.Decimal `json:"premium"`
	PremiumDate time.Time       `json:"premium_date"` // next premium due
}
