package normalize

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/richflow/richflow/internal/models"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"number", `1500`, "1500"},
		{"decimal number", `12.5`, "12.5"},
		{"quoted string", `"1500"`, "1500"},
		{"quoted decimal", `"0.01"`, "0.01"},
		{"negative", `-42`, "-42"},
		{"null", `null`, "0"},
		{"empty", ``, "0"},
		{"garbage string", `"not a number"`, "0"},
		{"object", `{}`, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, _ := decimal.NewFromString(tt.want)
			if got := Amount(json.RawMessage(tt.raw)); !got.Equal(want) {
				t.Errorf("Amount(%s) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"abc-123"`, "abc-123"},
		{`42`, "42"},
		{`null`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		if got := ID(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("ID(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestIncome(t *testing.T) {
	t.Run("wrapped entity", func(t *testing.T) {
		got, err := Income([]byte(`{"incomeLine": {"id": "i1", "name": "Job", "amount": "5000", "type": "EARNED", "quadrant": "EMPLOYEE"}}`))
		if err != nil {
			t.Fatalf("Income: %v", err)
		}
		if got.ID != "i1" || got.Name != "Job" {
			t.Errorf("got %+v", got)
		}
		if !got.Amount.Equal(decimal.NewFromInt(5000)) {
			t.Errorf("Amount = %s, want 5000", got.Amount)
		}
		if got.Type != models.IncomeEarned || got.Quadrant != models.QuadrantEmployee {
			t.Errorf("type/quadrant = %s/%s", got.Type, got.Quadrant)
		}
	})

	t.Run("bare entity with numeric fields", func(t *testing.T) {
		got, err := Income([]byte(`{"id": 7, "name": "Dividends", "amount": 120.5, "type": "portfolio"}`))
		if err != nil {
			t.Fatalf("Income: %v", err)
		}
		if got.ID != "7" {
			t.Errorf("ID = %q, want 7", got.ID)
		}
		if !got.Amount.Equal(decimal.NewFromFloat(120.5)) {
			t.Errorf("Amount = %s, want 120.5", got.Amount)
		}
		if got.Type != models.IncomePortfolio {
			t.Errorf("Type = %s, want PORTFOLIO", got.Type)
		}
		if got.Quadrant != models.QuadrantInvestor {
			t.Errorf("Quadrant = %s, want INVESTOR", got.Quadrant)
		}
	})

	t.Run("unknown type and quadrant fall back", func(t *testing.T) {
		got, err := Income([]byte(`{"id": "i2", "name": "Mystery", "amount": "10", "type": "weird", "quadrant": "nonsense"}`))
		if err != nil {
			t.Fatalf("Income: %v", err)
		}
		if got.Type != models.IncomeEarned {
			t.Errorf("Type = %s, want EARNED", got.Type)
		}
		if got.Quadrant != models.QuadrantEmployee {
			t.Errorf("Quadrant = %s, want EMPLOYEE", got.Quadrant)
		}
	})

	t.Run("malformed amount becomes zero, not an error", func(t *testing.T) {
		got, err := Income([]byte(`{"id": "i3", "name": "Broken", "amount": "??"}`))
		if err != nil {
			t.Fatalf("Income: %v", err)
		}
		if !got.Amount.IsZero() {
			t.Errorf("Amount = %s, want 0", got.Amount)
		}
	})

	t.Run("unparseable payload errors", func(t *testing.T) {
		if _, err := Income([]byte(`not json`)); err == nil {
			t.Error("expected error for unparseable payload")
		}
	})
}

func TestIncomeList(t *testing.T) {
	t.Run("mixed shapes in one list", func(t *testing.T) {
		items, err := IncomeList([]byte(`[
			{"id": "a", "name": "Job", "amount": 5000, "type": "EARNED"},
			{"id": 2, "name": "Rental", "amount": "800", "type": "PASSIVE"}
		]`))
		if err != nil {
			t.Fatalf("IncomeList: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("got %d items, want 2", len(items))
		}
		if items[1].ID != "2" || items[1].Type != models.IncomePassive {
			t.Errorf("items[1] = %+v", items[1])
		}
	})

	t.Run("null body is empty list", func(t *testing.T) {
		items, err := IncomeList([]byte(`null`))
		if err != nil {
			t.Fatalf("IncomeList: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("got %d items, want 0", len(items))
		}
	})
}

func TestExpense(t *testing.T) {
	got, err := Expense([]byte(`{"expense": {"id": "e1", "name": "Rent", "amount": "1500"}}`))
	if err != nil {
		t.Fatalf("Expense: %v", err)
	}
	if got.ID != "e1" || got.Name != "Rent" || !got.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("got %+v", got)
	}
}

func TestAssetValueFallback(t *testing.T) {
	t.Run("value field", func(t *testing.T) {
		got, err := Asset([]byte(`{"asset": {"id": "a1", "name": "House", "value": 300000}}`))
		if err != nil {
			t.Fatalf("Asset: %v", err)
		}
		if !got.Value.Equal(decimal.NewFromInt(300000)) {
			t.Errorf("Value = %s, want 300000", got.Value)
		}
	})

	t.Run("legacy amount field", func(t *testing.T) {
		got, err := Asset([]byte(`{"id": "a2", "name": "Stocks", "amount": "45000"}`))
		if err != nil {
			t.Fatalf("Asset: %v", err)
		}
		if !got.Value.Equal(decimal.NewFromInt(45000)) {
			t.Errorf("Value = %s, want 45000", got.Value)
		}
	})

	t.Run("value wins over amount", func(t *testing.T) {
		got, err := Asset([]byte(`{"id": "a3", "name": "Both", "value": 10, "amount": 99}`))
		if err != nil {
			t.Fatalf("Asset: %v", err)
		}
		if !got.Value.Equal(decimal.NewFromInt(10)) {
			t.Errorf("Value = %s, want 10", got.Value)
		}
	})
}

func TestLiability(t *testing.T) {
	got, err := Liability([]byte(`{"liability": {"id": "l1", "name": "Mortgage", "value": "220000"}}`))
	if err != nil {
		t.Fatalf("Liability: %v", err)
	}
	if got.ID != "l1" || !got.Value.Equal(decimal.NewFromInt(220000)) {
		t.Errorf("got %+v", got)
	}
}

func TestCashSavings(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"number", `{"amount": 12000}`, "12000"},
		{"string", `{"amount": "12000.50"}`, "12000.50"},
		{"null amount", `{"amount": null}`, "0"},
		{"missing amount", `{}`, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CashSavings([]byte(tt.body))
			if err != nil {
				t.Fatalf("CashSavings: %v", err)
			}
			want, _ := decimal.NewFromString(tt.want)
			if !got.Amount.Equal(want) {
				t.Errorf("Amount = %s, want %s", got.Amount, tt.want)
			}
		})
	}
}

func TestCurrencyList(t *testing.T) {
	items, err := CurrencyList([]byte(`[
		{"id": "USD", "cur_symbol": "$", "cur_name": "US Dollar"},
		{"id": "EUR", "cur_symbol": "€", "cur_name": "Euro"}
	]`))
	if err != nil {
		t.Fatalf("CurrencyList: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d currencies, want 2", len(items))
	}
	if items[0].Symbol != "$" || items[1].Name != "Euro" {
		t.Errorf("got %+v", items)
	}
}
