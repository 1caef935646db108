// Package normalize converts raw backend JSON into canonical typed records.
//
// The backend's response shapes are heterogeneous: monetary values arrive as
// JSON numbers or quoted strings, IDs as strings or numbers, and mutation
// responses wrap the entity under a key ("incomeLine", "expense", "asset",
// "liability") or return it bare. Every function here accepts all observed
// shapes and returns a canonical record whose numeric fields are guaranteed
// valid: a field that cannot be coerced defaults (amounts to zero, enums to
// their documented fallback) instead of producing an error. An error is
// returned only when the payload is not parseable JSON at all.
package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/richflow/richflow/internal/models"
)

// Amount coerces a raw JSON value into a decimal amount. Numbers and quoted
// numeric strings both parse; null, absent or malformed values yield zero.
func Amount(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Zero
	}
	return d
}

// ID coerces a raw JSON id into its string form. Numeric ids become their
// decimal text so records from older backends still splice by id.
func ID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// unwrap returns the entity object nested under key, or the input unchanged
// when the payload is already a bare entity.
func unwrap(data []byte, key string) []byte {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return data
	}
	if inner, ok := probe[key]; ok && len(inner) > 0 && inner[0] == '{' {
		return inner
	}
	return data
}

type rawIncome struct {
	ID       json.RawMessage `json:"id"`
	Name     string          `json:"name"`
	Amount   json.RawMessage `json:"amount"`
	Type     string          `json:"type"`
	Quadrant string          `json:"quadrant"`
}

// Income decodes a single income line, accepting `{"incomeLine": {...}}` or a
// bare object. Unknown income types default to EARNED; missing or invalid
// quadrants resolve to the type's default quadrant.
func Income(data []byte) (models.IncomeItem, error) {
	var raw rawIncome
	if err := json.Unmarshal(unwrap(data, "incomeLine"), &raw); err != nil {
		return models.IncomeItem{}, fmt.Errorf("decode income: %w", err)
	}
	typ := models.ParseIncomeType(raw.Type)
	return models.IncomeItem{
		ID:       ID(raw.ID),
		Name:     raw.Name,
		Amount:   Amount(raw.Amount),
		Type:     typ,
		Quadrant: models.ResolveQuadrant(raw.Quadrant, typ),
	}, nil
}

// IncomeList decodes an array of income lines. A null body is an empty list.
func IncomeList(data []byte) ([]models.IncomeItem, error) {
	elems, err := rawList(data)
	if err != nil {
		return nil, fmt.Errorf("decode income list: %w", err)
	}
	items := make([]models.IncomeItem, 0, len(elems))
	for _, e := range elems {
		item, err := Income(e)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

type rawNamed struct {
	ID     json.RawMessage `json:"id"`
	Name   string          `json:"name"`
	Amount json.RawMessage `json:"amount"`
	Value  json.RawMessage `json:"value"`
}

// amountOrValue prefers "value" and falls back to "amount"; the backend has
// used both names for balance-sheet records.
func (r rawNamed) amountOrValue() decimal.Decimal {
	if len(r.Value) > 0 && string(r.Value) != "null" {
		return Amount(r.Value)
	}
	return Amount(r.Amount)
}

// Expense decodes a single expense, accepting `{"expense": {...}}` or bare.
func Expense(data []byte) (models.ExpenseItem, error) {
	var raw rawNamed
	if err := json.Unmarshal(unwrap(data, "expense"), &raw); err != nil {
		return models.ExpenseItem{}, fmt.Errorf("decode expense: %w", err)
	}
	return models.ExpenseItem{ID: ID(raw.ID), Name: raw.Name, Amount: Amount(raw.Amount)}, nil
}

// ExpenseList decodes an array of expenses.
func ExpenseList(data []byte) ([]models.ExpenseItem, error) {
	elems, err := rawList(data)
	if err != nil {
		return nil, fmt.Errorf("decode expense list: %w", err)
	}
	items := make([]models.ExpenseItem, 0, len(elems))
	for _, e := range elems {
		item, err := Expense(e)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Asset decodes a single asset, accepting `{"asset": {...}}` or bare.
func Asset(data []byte) (models.AssetItem, error) {
	var raw rawNamed
	if err := json.Unmarshal(unwrap(data, "asset"), &raw); err != nil {
		return models.AssetItem{}, fmt.Errorf("decode asset: %w", err)
	}
	return models.AssetItem{ID: ID(raw.ID), Name: raw.Name, Value: raw.amountOrValue()}, nil
}

// AssetList decodes an array of assets.
func AssetList(data []byte) ([]models.AssetItem, error) {
	elems, err := rawList(data)
	if err != nil {
		return nil, fmt.Errorf("decode asset list: %w", err)
	}
	items := make([]models.AssetItem, 0, len(elems))
	for _, e := range elems {
		item, err := Asset(e)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Liability decodes a single liability, accepting `{"liability": {...}}` or bare.
func Liability(data []byte) (models.LiabilityItem, error) {
	var raw rawNamed
	if err := json.Unmarshal(unwrap(data, "liability"), &raw); err != nil {
		return models.LiabilityItem{}, fmt.Errorf("decode liability: %w", err)
	}
	return models.LiabilityItem{ID: ID(raw.ID), Name: raw.Name, Value: raw.amountOrValue()}, nil
}

// LiabilityList decodes an array of liabilities.
func LiabilityList(data []byte) ([]models.LiabilityItem, error) {
	elems, err := rawList(data)
	if err != nil {
		return nil, fmt.Errorf("decode liability list: %w", err)
	}
	items := make([]models.LiabilityItem, 0, len(elems))
	for _, e := range elems {
		item, err := Liability(e)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// CashSavings decodes the `{"amount": ...}` cash-savings payload.
func CashSavings(data []byte) (models.CashSavings, error) {
	var raw struct {
		Amount json.RawMessage `json:"amount"`
	}
	if err := json.Unmarshal(unwrap(data, "cashSavings"), &raw); err != nil {
		return models.CashSavings{}, fmt.Errorf("decode cash savings: %w", err)
	}
	return models.CashSavings{Amount: Amount(raw.Amount)}, nil
}

type rawCurrency struct {
	ID     json.RawMessage `json:"id"`
	Symbol string          `json:"cur_symbol"`
	Name   string          `json:"cur_name"`
}

// Currency decodes a currency record.
func Currency(data []byte) (models.Currency, error) {
	var raw rawCurrency
	if err := json.Unmarshal(unwrap(data, "currency"), &raw); err != nil {
		return models.Currency{}, fmt.Errorf("decode currency: %w", err)
	}
	return models.Currency{ID: ID(raw.ID), Symbol: raw.Symbol, Name: raw.Name}, nil
}

// CurrencyList decodes the currency catalog.
func CurrencyList(data []byte) ([]models.Currency, error) {
	elems, err := rawList(data)
	if err != nil {
		return nil, fmt.Errorf("decode currency list: %w", err)
	}
	items := make([]models.Currency, 0, len(elems))
	for _, e := range elems {
		item, err := Currency(e)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func rawList(data []byte) ([]json.RawMessage, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, err
	}
	return elems, nil
}
