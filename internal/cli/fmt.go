package cli

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// formatMoney renders a reference-currency value with the currency's symbol
// and fraction rules, e.g. "$25,000.00".
func formatMoney(v decimal.Decimal, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		cur = money.GetCurrency(money.USD)
	}
	minor := v.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

// formatPercent renders a percentage with two decimals and an explicit sign,
// e.g. "+25.00%".
func formatPercent(v decimal.Decimal) string {
	s := v.StringFixed(2) + "%"
	if v.IsPositive() {
		return "+" + s
	}
	return s
}

// formatQuantity renders a coin quantity without trailing zeros.
func formatQuantity(v decimal.Decimal) string {
	return v.String()
}
