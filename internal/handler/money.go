package handler

import (
	"net/http"

	"github.com/richflow/richflow/internal/models"
	"github.com/richflow/richflow/internal/storage"
)

// GetCashSavings returns the user's cash-savings scalar as {"amount": ...}.
// A user who never set it gets zero, not an error.
func (h *Handler) GetCashSavings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	amount, err := h.store.GetCashSavings(r.Context(), userID)
	if err != nil {
		storeError(w, "GetCashSavings", err)
		return
	}
	respondJSON(w, http.StatusOK, models.CashSavings{Amount: amount})
}

// SetCashSavings replaces the cash-savings scalar.
func (h *Handler) SetCashSavings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req models.CashSavings
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount.IsNegative() {
		respondError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}
	if err := h.store.SetCashSavings(r.Context(), userID, req.Amount); err != nil {
		storeError(w, "SetCashSavings", err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// ListCurrencies returns the currency catalog.
func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.store.ListCurrencies(r.Context())
	if err != nil {
		storeError(w, "ListCurrencies", err)
		return
	}
	respondJSON(w, http.StatusOK, currencies)
}

// GetUserCurrency returns the user's display-currency preference. A user
// with no saved preference gets the US Dollar default.
func (h *Handler) GetUserCurrency(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	cur, err := h.store.GetUserCurrency(r.Context(), userID)
	if err != nil {
		storeError(w, "GetUserCurrency", err)
		return
	}
	if cur == nil {
		cur = &models.USDollar
	}
	respondJSON(w, http.StatusOK, cur)
}

// SetUserCurrency updates the user's display-currency preference.
func (h *Handler) SetUserCurrency(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		ID string `json:"id"`
	}
	if err := decode(r, &req); err != nil || req.ID == "" {
		respondError(w, http.StatusBadRequest, "currency id required")
		return
	}
	cur, err := h.store.SetUserCurrency(r.Context(), userID, req.ID)
	if err == storage.ErrNotFound {
		respondError(w, http.StatusNotFound, "unknown currency")
		return
	}
	if err != nil {
		storeError(w, "SetUserCurrency", err)
		return
	}
	respondJSON(w, http.StatusOK, cur)
}
