package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trend is the qualitative direction of a benchmark rate
type Trend string

const (
	TrendRising  Trend = "Rising"
	TrendFalling Trend = "Falling"
	TrendStable  Trend = "Stable"
)

// RateBenchmark is a current market rate with its trend
type RateBenchmark struct {
	Rate  decimal.Decimal `json:"rate"`
	Trend Trend           `json:"trend"`
}

// LoanBenchmarks holds market reference rates per loan category
type LoanBenchmarks struct {
	KeyRate      decimal.Decimal `json:"key_rate"`
	Home         RateBenchmark   `json:"home_loan"`
	Personal     RateBenchmark   `json:"personal_loan"`
	Car          RateBenchmark   `json:"car_loan"`
	FixedDeposit RateBenchmark   `json:"fd_rate_1yr"`
	AsOf         time.Time       `json:"as_of"`
}

// For returns the benchmark for a loan category
func (b *LoanBenchmarks) For(category BenchmarkCategory) (RateBenchmark, bool) {
	switch category {
	case BenchmarkHome:
		return b.Home, true
	case BenchmarkPersonal:
		return b.Personal, true
	case BenchmarkCar:
		return b.Car, true
	}
	return RateBenchmark{}, false
}

// InsuranceBenchmarks holds reference coverage and premium figures
type InsuranceBenchmarks struct {
	TermCoverMultiplier  int             `json:"ideal_coverage_multiplier"` // x annual income
	TermPremiumPerCrore  decimal.Decimal `json:"avg_annual_premium_per_cr"`
	HealthBaseCover      decimal.Decimal `json:"ideal_base_coverage"`
	FamilyFloaterPremium decimal.Decimal `json:"avg_family_floater_premium"`
}
