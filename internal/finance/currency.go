package finance

import (
	"github.com/shopspring/decimal"

	"github.com/richflow/richflow/internal/models"
)

// FormatAmount renders a monetary amount with the user's currency symbol.
// A nil currency falls back to US Dollar. Negative amounts render with the
// sign ahead of the symbol ("-$12.50").
func FormatAmount(amount decimal.Decimal, cur *models.Currency) string {
	if cur == nil || cur.Symbol == "" {
		cur = &models.USDollar
	}
	if amount.IsNegative() {
		return "-" + cur.Symbol + amount.Abs().StringFixed(2)
	}
	return cur.Symbol + amount.StringFixed(2)
}
