package finance

import (
	"github.com/shopspring/decimal"

	"github.com/richflow/richflow/internal/models"
)

// BalanceSheet summarizes a user's asset/liability position plus cash
// savings. Shared by the balance-sheet endpoint and the client that reads it.
type BalanceSheet struct {
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	CashSavings      decimal.Decimal `json:"cashSavings"`
	NetWorth         decimal.Decimal `json:"netWorth"`
}

// ComputeBalanceSheet derives a BalanceSheet from the balance-sheet records.
func ComputeBalanceSheet(assets []models.AssetItem, liabilities []models.LiabilityItem, cash decimal.Decimal) BalanceSheet {
	var bs BalanceSheet
	for _, a := range assets {
		bs.TotalAssets = bs.TotalAssets.Add(a.Value)
	}
	for _, l := range liabilities {
		bs.TotalLiabilities = bs.TotalLiabilities.Add(l.Value)
	}
	bs.CashSavings = cash
	bs.NetWorth = bs.TotalAssets.Sub(bs.TotalLiabilities)
	return bs
}
