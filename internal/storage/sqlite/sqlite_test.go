package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/richflow/richflow/internal/models"
	"github.com/richflow/richflow/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store *SQLiteStore, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Test User", Email: email, PasswordHash: "hash"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestUserOperations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		user := createTestUser(t, store, "alice@example.com")
		if user.ID == "" {
			t.Error("expected ID to be assigned")
		}
		if user.CreatedAt == 0 {
			t.Error("expected CreatedAt to be assigned")
		}

		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail: %v", err)
		}
		if byEmail.ID != user.ID {
			t.Errorf("got ID %q, want %q", byEmail.ID, user.ID)
		}

		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID: %v", err)
		}
		if byID.Email != "alice@example.com" {
			t.Errorf("got email %q", byID.Email)
		}
	})

	t.Run("missing user returns ErrNotFound", func(t *testing.T) {
		if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("duplicate email fails", func(t *testing.T) {
		createTestUser(t, store, "dup@example.com")
		dup := &models.User{Name: "Dup", Email: "dup@example.com", PasswordHash: "hash"}
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("expected duplicate email to fail")
		}
	})
}

func TestIncomeOperations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "income@example.com")

	t.Run("create preserves amount exactly", func(t *testing.T) {
		item := &models.IncomeItem{
			Name:     "Job",
			Amount:   dec("5000.01"),
			Type:     models.IncomeEarned,
			Quadrant: models.QuadrantEmployee,
		}
		if err := store.CreateIncome(ctx, user.ID, item); err != nil {
			t.Fatalf("CreateIncome: %v", err)
		}
		if item.ID == "" {
			t.Error("expected ID to be assigned")
		}

		items, err := store.ListIncome(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListIncome: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("got %d items, want 1", len(items))
		}
		if !items[0].Amount.Equal(dec("5000.01")) {
			t.Errorf("amount round-tripped to %s, want 5000.01", items[0].Amount)
		}
		if items[0].Type != models.IncomeEarned || items[0].Quadrant != models.QuadrantEmployee {
			t.Errorf("type/quadrant = %s/%s", items[0].Type, items[0].Quadrant)
		}
	})

	t.Run("update", func(t *testing.T) {
		item := &models.IncomeItem{Name: "Rental", Amount: dec("800"), Type: models.IncomePassive, Quadrant: models.QuadrantBusinessOwner}
		if err := store.CreateIncome(ctx, user.ID, item); err != nil {
			t.Fatalf("CreateIncome: %v", err)
		}

		item.Amount = dec("850")
		item.Name = "Rental (raised)"
		if err := store.UpdateIncome(ctx, user.ID, item); err != nil {
			t.Fatalf("UpdateIncome: %v", err)
		}

		items, err := store.ListIncome(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListIncome: %v", err)
		}
		for _, it := range items {
			if it.ID == item.ID && !it.Amount.Equal(dec("850")) {
				t.Errorf("amount = %s, want 850", it.Amount)
			}
		}
	})

	t.Run("update of missing row returns ErrNotFound", func(t *testing.T) {
		missing := &models.IncomeItem{ID: "nope", Name: "x", Amount: dec("1"), Type: models.IncomeEarned, Quadrant: models.QuadrantEmployee}
		if err := store.UpdateIncome(ctx, user.ID, missing); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("delete returns the removed record", func(t *testing.T) {
		item := &models.IncomeItem{Name: "Side gig", Amount: dec("300"), Type: models.IncomeEarned, Quadrant: models.QuadrantSelfEmployed}
		if err := store.CreateIncome(ctx, user.ID, item); err != nil {
			t.Fatalf("CreateIncome: %v", err)
		}

		deleted, err := store.DeleteIncome(ctx, user.ID, item.ID)
		if err != nil {
			t.Fatalf("DeleteIncome: %v", err)
		}
		if deleted.Name != "Side gig" || !deleted.Amount.Equal(dec("300")) {
			t.Errorf("deleted = %+v", deleted)
		}

		if _, err := store.DeleteIncome(ctx, user.ID, item.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second delete got %v, want ErrNotFound", err)
		}
	})

	t.Run("rows are scoped to the owner", func(t *testing.T) {
		other := createTestUser(t, store, "other@example.com")
		items, err := store.ListIncome(ctx, other.ID)
		if err != nil {
			t.Fatalf("ListIncome: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("other user sees %d income lines, want 0", len(items))
		}

		mine, err := store.ListIncome(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListIncome: %v", err)
		}
		if len(mine) == 0 {
			t.Fatal("owner has no income lines")
		}
		if _, err := store.DeleteIncome(ctx, other.ID, mine[0].ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("cross-user delete got %v, want ErrNotFound", err)
		}
	})
}

func TestExpenseOperations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "expense@example.com")

	item := &models.ExpenseItem{Name: "Rent", Amount: dec("1500")}
	if err := store.CreateExpense(ctx, user.ID, item); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	item.Amount = dec("1600.50")
	if err := store.UpdateExpense(ctx, user.ID, item); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}

	items, err := store.ListExpenses(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(items) != 1 || !items[0].Amount.Equal(dec("1600.50")) {
		t.Errorf("got %+v", items)
	}

	deleted, err := store.DeleteExpense(ctx, user.ID, item.ID)
	if err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if !deleted.Amount.Equal(dec("1600.50")) {
		t.Errorf("deleted amount = %s", deleted.Amount)
	}
}

func TestAssetAndLiabilityOperations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "balance@example.com")

	asset := &models.AssetItem{Name: "House", Value: dec("300000")}
	if err := store.CreateAsset(ctx, user.ID, asset); err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	liability := &models.LiabilityItem{Name: "Mortgage", Value: dec("220000")}
	if err := store.CreateLiability(ctx, user.ID, liability); err != nil {
		t.Fatalf("CreateLiability: %v", err)
	}

	assets, err := store.ListAssets(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if len(assets) != 1 || !assets[0].Value.Equal(dec("300000")) {
		t.Errorf("assets = %+v", assets)
	}

	liability.Value = dec("215000")
	if err := store.UpdateLiability(ctx, user.ID, liability); err != nil {
		t.Fatalf("UpdateLiability: %v", err)
	}
	liabilities, err := store.ListLiabilities(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListLiabilities: %v", err)
	}
	if len(liabilities) != 1 || !liabilities[0].Value.Equal(dec("215000")) {
		t.Errorf("liabilities = %+v", liabilities)
	}

	if _, err := store.DeleteAsset(ctx, user.ID, asset.ID); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	if _, err := store.DeleteLiability(ctx, user.ID, liability.ID); err != nil {
		t.Fatalf("DeleteLiability: %v", err)
	}
}

func TestCashSavings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "cash@example.com")

	t.Run("unset reads as zero", func(t *testing.T) {
		got, err := store.GetCashSavings(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetCashSavings: %v", err)
		}
		if !got.IsZero() {
			t.Errorf("got %s, want 0", got)
		}
	})

	t.Run("set then overwrite", func(t *testing.T) {
		if err := store.SetCashSavings(ctx, user.ID, dec("12000")); err != nil {
			t.Fatalf("SetCashSavings: %v", err)
		}
		if err := store.SetCashSavings(ctx, user.ID, dec("12500.75")); err != nil {
			t.Fatalf("SetCashSavings: %v", err)
		}

		got, err := store.GetCashSavings(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetCashSavings: %v", err)
		}
		if !got.Equal(dec("12500.75")) {
			t.Errorf("got %s, want 12500.75", got)
		}
	})
}

func TestCurrencies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "currency@example.com")

	t.Run("catalog is seeded", func(t *testing.T) {
		currencies, err := store.ListCurrencies(ctx)
		if err != nil {
			t.Fatalf("ListCurrencies: %v", err)
		}
		if len(currencies) == 0 {
			t.Fatal("currency catalog is empty")
		}
		var foundUSD bool
		for _, c := range currencies {
			if c.ID == "USD" && c.Symbol == "$" {
				foundUSD = true
			}
		}
		if !foundUSD {
			t.Error("USD missing from seeded catalog")
		}
	})

	t.Run("preference defaults to nil", func(t *testing.T) {
		pref, err := store.GetUserCurrency(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserCurrency: %v", err)
		}
		if pref != nil {
			t.Errorf("got %+v, want nil", pref)
		}
	})

	t.Run("set and overwrite preference", func(t *testing.T) {
		chosen, err := store.SetUserCurrency(ctx, user.ID, "EUR")
		if err != nil {
			t.Fatalf("SetUserCurrency: %v", err)
		}
		if chosen.Symbol != "€" {
			t.Errorf("symbol = %q, want €", chosen.Symbol)
		}

		if _, err := store.SetUserCurrency(ctx, user.ID, "GBP"); err != nil {
			t.Fatalf("SetUserCurrency: %v", err)
		}
		pref, err := store.GetUserCurrency(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserCurrency: %v", err)
		}
		if pref == nil || pref.ID != "GBP" {
			t.Errorf("pref = %+v, want GBP", pref)
		}
	})

	t.Run("unknown currency returns ErrNotFound", func(t *testing.T) {
		if _, err := store.SetUserCurrency(ctx, user.ID, "XXX"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}
