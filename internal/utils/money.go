package utils

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders a currency amount with grouping and two decimals, e.g. 10,000.00.
// The digits come from the decimal itself, so large amounts stay exact.
func FormatAmount(v decimal.Decimal) string {
	rounded := v.Round(2)
	abs := rounded.Abs()
	_, frac, _ := strings.Cut(abs.StringFixed(2), ".")

	out := printer.Sprintf("%d", abs.IntPart()) + "." + frac
	if rounded.IsNegative() {
		return "-" + out
	}
	return out
}
