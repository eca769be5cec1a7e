package core

import "github.com/shopspring/decimal"

// FormatCurrency formats an amount as "$12.34".
func FormatCurrency(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
