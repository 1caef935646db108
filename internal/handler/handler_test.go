package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/richflow/richflow/internal/auth"
	"github.com/richflow/richflow/internal/client"
	"github.com/richflow/richflow/internal/finstore"
	"github.com/richflow/richflow/internal/models"
	"github.com/richflow/richflow/internal/storage/sqlite"
)

func newTestServer(t *testing.T) (*httptest.Server, *client.Client) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", "richflow-test", time.Hour)
	h := New(store, auth.NewPasswordAuthenticator(store), jwtManager)

	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv, client.New(srv.URL)
}

func registerUser(t *testing.T, c *client.Client, email string) client.AuthResult {
	t.Helper()
	res, err := c.Register(context.Background(), client.Credentials{
		Name:     "Test User",
		Email:    email,
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return res
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	var se *client.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want StatusError %d", err, status)
	}
	if se.Status != status {
		t.Errorf("status = %d, want %d", se.Status, status)
	}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestAuthFlow(t *testing.T) {
	ctx := context.Background()
	_, c := newTestServer(t)

	res := registerUser(t, c, "alice@example.com")
	if res.Token == "" {
		t.Fatal("register returned no token")
	}
	if res.User.Email != "alice@example.com" {
		t.Errorf("user email = %q", res.User.Email)
	}

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := c.Register(ctx, client.Credentials{Email: "alice@example.com", Password: "password123"})
		wantStatus(t, err, http.StatusConflict)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		_, err := c.Register(ctx, client.Credentials{Email: "weak@example.com", Password: "short"})
		wantStatus(t, err, http.StatusBadRequest)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := c.Login(ctx, client.Credentials{Email: "alice@example.com", Password: "wrongwrong"})
		wantStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("login returns a working token", func(t *testing.T) {
		res, err := c.Login(ctx, client.Credentials{Email: "alice@example.com", Password: "password123"})
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if res.Token == "" {
			t.Fatal("login returned no token")
		}
		if _, err := c.ListIncome(ctx); err != nil {
			t.Errorf("ListIncome with fresh token: %v", err)
		}
	})
}

func TestRequiresAuth(t *testing.T) {
	_, c := newTestServer(t)
	_, err := c.ListIncome(context.Background())
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestIncomeLifecycle(t *testing.T) {
	ctx := context.Background()
	_, c := newTestServer(t)
	registerUser(t, c, "income@example.com")

	item, err := c.AddIncome(ctx, client.IncomeInput{Name: "Rental", Amount: dec(800), Type: models.IncomePassive})
	if err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	if item.ID == "" {
		t.Error("server did not assign an ID")
	}
	if item.Quadrant != models.QuadrantBusinessOwner {
		t.Errorf("Quadrant = %s, want BUSINESS_OWNER for passive income", item.Quadrant)
	}

	items, err := c.ListIncome(ctx)
	if err != nil {
		t.Fatalf("ListIncome: %v", err)
	}
	if len(items) != 1 || !items[0].Amount.Equal(dec(800)) {
		t.Fatalf("items = %+v", items)
	}

	updated, err := c.UpdateIncome(ctx, item.ID, client.IncomeInput{
		Name: "Rental", Amount: dec(850), Type: models.IncomePassive, Quadrant: "INVESTOR",
	})
	if err != nil {
		t.Fatalf("UpdateIncome: %v", err)
	}
	if !updated.Amount.Equal(dec(850)) || updated.Quadrant != models.QuadrantInvestor {
		t.Errorf("updated = %+v", updated)
	}

	if err := c.DeleteIncome(ctx, item.ID); err != nil {
		t.Fatalf("DeleteIncome: %v", err)
	}
	err = c.DeleteIncome(ctx, item.ID)
	wantStatus(t, err, http.StatusNotFound)

	t.Run("validation", func(t *testing.T) {
		_, err := c.AddIncome(ctx, client.IncomeInput{Name: "", Amount: dec(10)})
		wantStatus(t, err, http.StatusBadRequest)
		_, err = c.AddIncome(ctx, client.IncomeInput{Name: "Neg", Amount: dec(-10)})
		wantStatus(t, err, http.StatusBadRequest)
	})
}

func TestAnalysisAndBalanceSheet(t *testing.T) {
	ctx := context.Background()
	_, c := newTestServer(t)
	registerUser(t, c, "analysis@example.com")

	if _, err := c.AddIncome(ctx, client.IncomeInput{Name: "Job", Amount: dec(5000), Type: models.IncomeEarned}); err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	if _, err := c.AddExpense(ctx, client.RecordInput{Name: "Rent", Amount: dec(1500)}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if _, err := c.AddAsset(ctx, client.ValueInput{Name: "Index fund", Value: dec(20000)}); err != nil {
		t.Fatalf("AddAsset: %v", err)
	}
	if _, err := c.AddLiability(ctx, client.ValueInput{Name: "Car loan", Value: dec(8000)}); err != nil {
		t.Fatalf("AddLiability: %v", err)
	}
	if _, err := c.SetCashSavings(ctx, dec(3000)); err != nil {
		t.Fatalf("SetCashSavings: %v", err)
	}

	totals, err := c.GetAnalysis(ctx)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if !totals.Cashflow.Equal(dec(3500)) {
		t.Errorf("Cashflow = %s, want 3500", totals.Cashflow)
	}
	if !totals.NetWorth.Equal(dec(12000)) {
		t.Errorf("NetWorth = %s, want 12000", totals.NetWorth)
	}
	if totals.ProgressPercent != 0 {
		t.Errorf("ProgressPercent = %d, want 0 with no passive income", totals.ProgressPercent)
	}

	if _, err := c.AddIncome(ctx, client.IncomeInput{Name: "Rental", Amount: dec(800), Type: models.IncomePassive}); err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	totals, err = c.GetAnalysis(ctx)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if totals.ProgressPercent != 53 {
		t.Errorf("ProgressPercent = %d, want 53", totals.ProgressPercent)
	}

	bs, err := c.GetBalanceSheet(ctx)
	if err != nil {
		t.Fatalf("GetBalanceSheet: %v", err)
	}
	if !bs.TotalAssets.Equal(dec(20000)) || !bs.TotalLiabilities.Equal(dec(8000)) {
		t.Errorf("balance sheet = %+v", bs)
	}
	if !bs.CashSavings.Equal(dec(3000)) {
		t.Errorf("CashSavings = %s, want 3000", bs.CashSavings)
	}
	if !bs.NetWorth.Equal(dec(12000)) {
		t.Errorf("NetWorth = %s, want 12000", bs.NetWorth)
	}
}

func TestCurrencyEndpoints(t *testing.T) {
	ctx := context.Background()
	_, c := newTestServer(t)
	registerUser(t, c, "currency@example.com")

	t.Run("default is US Dollar", func(t *testing.T) {
		cur, err := c.GetUserCurrency(ctx)
		if err != nil {
			t.Fatalf("GetUserCurrency: %v", err)
		}
		if cur.ID != "USD" || cur.Symbol != "$" {
			t.Errorf("default currency = %+v", cur)
		}
	})

	t.Run("catalog lists seeded currencies", func(t *testing.T) {
		currencies, err := c.ListCurrencies(ctx)
		if err != nil {
			t.Fatalf("ListCurrencies: %v", err)
		}
		if len(currencies) < 2 {
			t.Fatalf("catalog has %d entries", len(currencies))
		}
	})

	t.Run("set preference", func(t *testing.T) {
		chosen, err := c.SetUserCurrency(ctx, "EUR")
		if err != nil {
			t.Fatalf("SetUserCurrency: %v", err)
		}
		if chosen.Symbol != "€" {
			t.Errorf("symbol = %q, want €", chosen.Symbol)
		}

		cur, err := c.GetUserCurrency(ctx)
		if err != nil {
			t.Fatalf("GetUserCurrency: %v", err)
		}
		if cur.ID != "EUR" {
			t.Errorf("preference = %+v, want EUR", cur)
		}
	})

	t.Run("unknown currency", func(t *testing.T) {
		_, err := c.SetUserCurrency(ctx, "XXX")
		wantStatus(t, err, http.StatusNotFound)
	})
}

func TestExportXLSX(t *testing.T) {
	ctx := context.Background()
	srv, c := newTestServer(t)
	res := registerUser(t, c, "export@example.com")
	if _, err := c.AddExpense(ctx, client.RecordInput{Name: "Rent", Amount: dec(1500)}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/export/xlsx", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+res.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type = %q", ct)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(body) == 0 {
		t.Error("workbook is empty")
	}
}

// TestStoreAgainstServer drives the client-side store against a real server,
// covering the full path: HTTP, normalization, splice, derived totals.
func TestStoreAgainstServer(t *testing.T) {
	ctx := context.Background()
	_, c := newTestServer(t)
	registerUser(t, c, "store@example.com")

	if _, err := c.AddIncome(ctx, client.IncomeInput{Name: "Job", Amount: dec(5000), Type: models.IncomeEarned}); err != nil {
		t.Fatalf("AddIncome: %v", err)
	}

	s := finstore.New(c, nil)
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Income) != 1 {
		t.Fatalf("got %d income items after refresh", len(snap.Income))
	}

	if _, err := s.AddExpense(ctx, client.RecordInput{Name: "Rent", Amount: dec(1500)}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if _, err := s.SetCashSavings(ctx, dec(3000)); err != nil {
		t.Fatalf("SetCashSavings: %v", err)
	}

	snap = s.Snapshot()
	if !snap.Totals.Cashflow.Equal(dec(3500)) {
		t.Errorf("Cashflow = %s, want 3500", snap.Totals.Cashflow)
	}
	if !snap.CashSavings.Equal(dec(3000)) {
		t.Errorf("CashSavings = %s, want 3000", snap.CashSavings)
	}

	// The store's local view matches the server's derived view.
	remote, err := c.GetAnalysis(ctx)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if !remote.Cashflow.Equal(snap.Totals.Cashflow) {
		t.Errorf("server cashflow %s != store cashflow %s", remote.Cashflow, snap.Totals.Cashflow)
	}
}
