package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/richflow/richflow/internal/models"
)

// recordRequest is the mutation payload shared by expenses, assets and
// liabilities. Expenses use "amount"; balance-sheet records use "value".
// Either field decodes from a JSON number or a quoted string.
type recordRequest struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Value  decimal.Decimal `json:"value"`
}

// money returns whichever monetary field the client populated.
func (req recordRequest) money() decimal.Decimal {
	if !req.Value.IsZero() {
		return req.Value
	}
	return req.Amount
}

// ListExpenses returns the user's expenses as a bare array.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	items, err := h.store.ListExpenses(r.Context(), userID)
	if err != nil {
		storeError(w, "ListExpenses", err)
		return
	}
	if items == nil {
		items = []models.ExpenseItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

// AddExpense creates an expense; the response wraps it as {"expense": ...}.
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	req, msg := decodeRecord(r)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	item := models.ExpenseItem{Name: req.Name, Amount: req.money()}
	if err := h.store.CreateExpense(r.Context(), userID, &item); err != nil {
		storeError(w, "AddExpense", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]models.ExpenseItem{"expense": item})
}

// UpdateExpense replaces an expense by ID.
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	req, msg := decodeRecord(r)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	item := models.ExpenseItem{ID: chi.URLParam(r, "id"), Name: req.Name, Amount: req.money()}
	if err := h.store.UpdateExpense(r.Context(), userID, &item); err != nil {
		storeError(w, "UpdateExpense", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]models.ExpenseItem{"expense": item})
}

// DeleteExpense removes an expense by ID and returns the deleted entity.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	item, err := h.store.DeleteExpense(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, "DeleteExpense", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.ExpenseItem{"expense": item})
}

// ListAssets returns the user's assets as a bare array.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	items, err := h.store.ListAssets(r.Context(), userID)
	if err != nil {
		storeError(w, "ListAssets", err)
		return
	}
	if items == nil {
		items = []models.AssetItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

// AddAsset creates an asset; the response wraps it as {"asset": ...}.
func (h *Handler) AddAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	req, msg := decodeRecord(r)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	item := models.AssetItem{Name: req.Name, Value: req.money()}
	if err := h.store.CreateAsset(r.Context(), userID, &item); err != nil {
		storeError(w, "AddAsset", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]models.AssetItem{"asset": item})
}

// UpdateAsset replaces an asset by ID.
func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	req, msg := decodeRecord(r)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	item := models.AssetItem{ID: chi.URLParam(r, "id"), Name: req.Name, Value: req.money()}
	if err := h.store.UpdateAsset(r.Context(), userID, &item); err != nil {
		storeError(w, "UpdateAsset", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]models.AssetItem{"asset": item})
}

// DeleteAsset removes an asset by ID and returns the deleted entity.
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	item, err := h.store.DeleteAsset(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, "DeleteAsset", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.AssetItem{"asset": item})
}

// ListLiabilities returns the user's liabilities as a bare array.
func (h *Handler) ListLiabilities(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	items, err := h.store.ListLiabilities(r.Context(), userID)
	if err != nil {
		storeError(w, "ListLiabilities", err)
		return
	}
	if items == nil {
		items = []models.LiabilityItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

// AddLiability creates a liability; the response wraps it as {"liability": ...}.
func (h *Handler) AddLiability(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	req, msg := decodeRecord(r)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	item := models.LiabilityItem{Name: req.Name, Value: req.money()}
	if err := h.store.CreateLiability(r.Context(), userID, &item); err != nil {
		storeError(w, "AddLiability", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]models.LiabilityItem{"liability": item})
}

// UpdateLiability replaces a liability by ID.
func (h *Handler) UpdateLiability(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	req, msg := decodeRecord(r)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	item := models.LiabilityItem{ID: chi.URLParam(r, "id"), Name: req.Name, Value: req.money()}
	if err := h.store.UpdateLiability(r.Context(), userID, &item); err != nil {
		storeError(w, "UpdateLiability", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]models.LiabilityItem{"liability": item})
}

// DeleteLiability removes a liability by ID and returns the deleted entity.
func (h *Handler) DeleteLiability(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	item, err := h.store.DeleteLiability(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, "DeleteLiability", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.LiabilityItem{"liability": item})
}

// decodeRecord decodes and validates the shared record payload, returning a
// client-facing message when invalid.
func decodeRecord(r *http.Request) (recordRequest, string) {
	var req recordRequest
	if err := decode(r, &req); err != nil {
		return req, "invalid request body"
	}
	if msg := validateNameAmount(req.Name, req.money()); msg != "" {
		return req, msg
	}
	return req, ""
}
