// Package finance holds the pure derived-value computations: totals,
// analysis ratios, and currency formatting. Nothing here performs I/O or
// holds state; every function is a deterministic function of its inputs.
package finance

import (
	"github.com/shopspring/decimal"

	"github.com/richflow/richflow/internal/models"
)

var hundred = decimal.NewFromInt(100)

// IncomeTotals breaks the income total down by income type.
type IncomeTotals struct {
	Earned    decimal.Decimal `json:"earned"`
	Portfolio decimal.Decimal `json:"portfolio"`
	Passive   decimal.Decimal `json:"passive"`
	Total     decimal.Decimal `json:"total"`
}

// Totals is the full derived snapshot for one user's records. It is computed
// on demand and never persisted.
type Totals struct {
	Income                    IncomeTotals    `json:"incomeTotals"`
	TotalExpenses             decimal.Decimal `json:"totalExpenses"`
	TotalAssets               decimal.Decimal `json:"totalAssets"`
	TotalLiabilities          decimal.Decimal `json:"totalLiabilities"`
	Cashflow                  decimal.Decimal `json:"cashflow"`
	NetWorth                  decimal.Decimal `json:"netWorth"`
	PassiveAndPortfolioIncome decimal.Decimal `json:"passiveAndPortfolioIncome"`

	// ProgressPercent is the share of expenses covered by passive plus
	// portfolio income, rounded and clamped to [0, 100]. Zero when there
	// are no expenses.
	ProgressPercent int64 `json:"progressPercent"`

	// SavingsRate is cashflow as a percentage of total income; zero when
	// there is no income. Negative when spending exceeds income.
	SavingsRate decimal.Decimal `json:"savingsRate"`

	// FreedomGap is the monthly amount still missing before passive plus
	// portfolio income covers expenses. Negative once covered.
	FreedomGap decimal.Decimal `json:"freedomGap"`

	// WealthVelocity is net worth expressed in months of current expenses;
	// zero when there are no expenses.
	WealthVelocity decimal.Decimal `json:"wealthVelocity"`

	// QuadrantShares is each quadrant's percentage of total income. All four
	// quadrants are always present; the values sum to ~100 when income is
	// non-zero and are all zero otherwise.
	QuadrantShares map[models.Quadrant]decimal.Decimal `json:"quadrantShares"`
}

// Compute derives Totals from the four record collections. Empty or nil
// collections are valid and yield an all-zero result.
func Compute(income []models.IncomeItem, expenses []models.ExpenseItem, assets []models.AssetItem, liabilities []models.LiabilityItem) Totals {
	var t Totals

	byQuadrant := make(map[models.Quadrant]decimal.Decimal, len(models.Quadrants))
	for _, item := range income {
		switch item.Type {
		case models.IncomePortfolio:
			t.Income.Portfolio = t.Income.Portfolio.Add(item.Amount)
		case models.IncomePassive:
			t.Income.Passive = t.Income.Passive.Add(item.Amount)
		default:
			t.Income.Earned = t.Income.Earned.Add(item.Amount)
		}
		byQuadrant[item.Quadrant] = byQuadrant[item.Quadrant].Add(item.Amount)
	}
	t.Income.Total = t.Income.Earned.Add(t.Income.Portfolio).Add(t.Income.Passive)

	for _, e := range expenses {
		t.TotalExpenses = t.TotalExpenses.Add(e.Amount)
	}
	for _, a := range assets {
		t.TotalAssets = t.TotalAssets.Add(a.Value)
	}
	for _, l := range liabilities {
		t.TotalLiabilities = t.TotalLiabilities.Add(l.Value)
	}

	t.Cashflow = t.Income.Total.Sub(t.TotalExpenses)
	t.NetWorth = t.TotalAssets.Sub(t.TotalLiabilities)
	t.PassiveAndPortfolioIncome = t.Income.Passive.Add(t.Income.Portfolio)
	t.ProgressPercent = progressPercent(t.PassiveAndPortfolioIncome, t.TotalExpenses)
	t.FreedomGap = t.TotalExpenses.Sub(t.PassiveAndPortfolioIncome)

	if t.Income.Total.IsPositive() {
		t.SavingsRate = t.Cashflow.Div(t.Income.Total).Mul(hundred).Round(2)
	}
	if t.TotalExpenses.IsPositive() {
		t.WealthVelocity = t.NetWorth.Div(t.TotalExpenses).Round(2)
	}

	t.QuadrantShares = make(map[models.Quadrant]decimal.Decimal, len(models.Quadrants))
	for _, q := range models.Quadrants {
		if t.Income.Total.IsPositive() {
			t.QuadrantShares[q] = byQuadrant[q].Div(t.Income.Total).Mul(hundred).Round(2)
		} else {
			t.QuadrantShares[q] = decimal.Zero
		}
	}

	return t
}

// progressPercent computes round(min(100, max(0, covered/expenses*100))).
// Division by zero is defined as zero, never NaN or infinity.
func progressPercent(covered, expenses decimal.Decimal) int64 {
	if !expenses.IsPositive() {
		return 0
	}
	pct := covered.Div(expenses).Mul(hundred)
	if pct.IsNegative() {
		return 0
	}
	if pct.GreaterThan(hundred) {
		return 100
	}
	return pct.Round(0).IntPart()
}
