package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/utils"
)

// HoldingBinding creates unseen brokerage positions and revalues existing ones
func HoldingBinding(store interfaces.InvestmentStore, now utils.Clock) Binding[models.BrokerHolding, models.Investment] {
	return Binding[models.BrokerHolding, models.Investment]{
		Source: "holdings",
		Key:    func(h models.BrokerHolding) string { return strings.TrimSpace(h.ExternalID()) },
		Find:   store.FindInvestmentByExternalID,
		Build: func(h models.BrokerHolding, key string) (*models.Investment, error) {
			return investmentFromHolding(h, key, utils.Day(now()))
		},
		Create: store.CreateInvestment,
		Apply:  revalue,
		Update: store.UpdateInvestment,
	}
}

func investmentFromHolding(h models.BrokerHolding, key string, today time.Time) (*models.Investment, error) {
	qty := decimal.NewFromInt(1)
	if h.Quantity != nil {
		qty = *h.Quantity
	}
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: quantity %s", models.ErrMalformedRecord, qty)
	}

	var invested decimal.Decimal
	switch {
	case h.InvestedAmount != nil:
		invested = *h.InvestedAmount
	case h.BuyPrice != nil:
		invested = qty.Mul(*h.BuyPrice).Round(2)
	default:
		return nil, fmt.Errorf("%w: no invested amount or buy price", models.ErrMalformedRecord)
	}
	if invested.IsNegative() {
		return nil, fmt.Errorf("%w: negative invested amount", models.ErrMalformedRecord)
	}

	current := invested
	if h.CurrentPrice != nil {
		current = qty.Mul(*h.CurrentPrice).Round(2)
	}

	date := today
	if h.PurchaseDate != "" {
		d, err := utils.ParseDate(h.PurchaseDate)
		if err != nil {
			return nil, fmt.Errorf("%w: purchase date: %v", models.ErrMalformedRecord, err)
		}
		date = d
	}

	category := models.InvestmentCategory(strings.ToUpper(h.Type))
	if !category.Valid() {
		category = models.InvestmentOther
	}
	name := h.Name
	if name == "" {
		name = key
	}

	return &models.Investment{
		Name:         name,
		Amount:       invested,
		CurrentValue: current,
		Quantity:     qty,
		Category:     category,
		Date:         date,
		ExternalID:   &key,
		Source:       models.SourceExternal,
	}, nil
}

// revalue sets current value from the held quantity and takes a corrected invested amount
func revalue(inv *models.Investment, h models.BrokerHolding) (bool, error) {
	if h.CurrentPrice == nil {
		return false, fmt.Errorf("%w: current price missing", models.ErrMalformedRecord)
	}
	changed := false

	value := inv.Quantity.Mul(*h.CurrentPrice).Round(2)
	if !value.Equal(inv.CurrentValue) {
		inv.CurrentValue = value
		changed = true
	}
	if h.InvestedAmount != nil && h.InvestedAmount.IsPositive() && !h.InvestedAmount.Equal(inv.Amount) {
		inv.Amount = *h.InvestedAmount
		changed = true
	}
	return changed, nil
}
