package models

import "github.com/shopspring/decimal"

// ExpenseItem is a single recurring expense.
type ExpenseItem struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// AssetItem is a balance-sheet asset (property, investments, vehicles, ...).
type AssetItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// LiabilityItem is a balance-sheet liability (mortgage, loans, card debt).
type LiabilityItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// CashSavings is the single cash-savings scalar each user carries.
type CashSavings struct {
	Amount decimal.Decimal `json:"amount"`
}

// Currency is a display-currency catalog entry and doubles as the per-user
// preference record.
type Currency struct {
	ID     string `json:"id"`
	Symbol string `json:"cur_symbol"`
	Name   string `json:"cur_name"`
}

// USDollar is the formatting fallback when a user has no saved preference.
var USDollar = Currency{ID: "USD", Symbol: "$", Name: "US Dollar"}
