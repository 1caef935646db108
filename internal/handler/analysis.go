package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/richflow/richflow/internal/finance"
	"github.com/richflow/richflow/internal/models"
)

// userRecords bundles everything the derived endpoints need.
type userRecords struct {
	income      []models.IncomeItem
	expenses    []models.ExpenseItem
	assets      []models.AssetItem
	liabilities []models.LiabilityItem
	cash        decimal.Decimal
}

// loadRecords fetches all categories for a user concurrently.
func (h *Handler) loadRecords(ctx context.Context, userID string) (userRecords, error) {
	var (
		rec  userRecords
		wg   sync.WaitGroup
		errs [5]error
	)
	wg.Add(5)
	go func() { defer wg.Done(); rec.income, errs[0] = h.store.ListIncome(ctx, userID) }()
	go func() { defer wg.Done(); rec.expenses, errs[1] = h.store.ListExpenses(ctx, userID) }()
	go func() { defer wg.Done(); rec.assets, errs[2] = h.store.ListAssets(ctx, userID) }()
	go func() { defer wg.Done(); rec.liabilities, errs[3] = h.store.ListLiabilities(ctx, userID) }()
	go func() { defer wg.Done(); rec.cash, errs[4] = h.store.GetCashSavings(ctx, userID) }()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// BalanceSheet returns the server-computed asset/liability position.
func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	rec, err := h.loadRecords(r.Context(), userID)
	if err != nil {
		storeError(w, "BalanceSheet", err)
		return
	}
	respondJSON(w, http.StatusOK, finance.ComputeBalanceSheet(rec.assets, rec.liabilities, rec.cash))
}

// Analysis returns the full derived-totals snapshot used by the analysis
// page: the same computation the client-side store runs locally.
func (h *Handler) Analysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	rec, err := h.loadRecords(r.Context(), userID)
	if err != nil {
		storeError(w, "Analysis", err)
		return
	}
	respondJSON(w, http.StatusOK, finance.Compute(rec.income, rec.expenses, rec.assets, rec.liabilities))
}
