package export

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatAmount renders amount in currency's notation, e.g. "$1,234.50".
// Unknown currency codes and amounts beyond int64 minor units fall back to
// the plain two-decimal form.
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).BigInt()
	if !minor.IsInt64() {
		return amount.StringFixed(2)
	}
	return money.New(minor.Int64(), cur.Code).Display()
}

// FormatQuantity prints a quantity without trailing zeros.
func FormatQuantity(q decimal.Decimal) string {
	return q.String()
}
