package reservation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatEUR renders an amount the way the shop prints prices: two decimals,
// decimal comma and a trailing euro sign, e.g. "12,50 €".
func FormatEUR(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1) + " €"
}

// FormatLiters renders a volume with one decimal, e.g. "20.5L".
func FormatLiters(d decimal.Decimal) string {
	return d.StringFixed(1) + "L"
}
