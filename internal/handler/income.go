package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/richflow/richflow/internal/models"
)

// incomeRequest is the income mutation payload. Amount decodes from a JSON
// number or a quoted string; quadrant is optional.
type incomeRequest struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Type     string          `json:"type"`
	Quadrant string          `json:"quadrant"`
}

func (req incomeRequest) toItem() models.IncomeItem {
	typ := models.ParseIncomeType(req.Type)
	return models.IncomeItem{
		Name:     req.Name,
		Amount:   req.Amount,
		Type:     typ,
		Quadrant: models.ResolveQuadrant(req.Quadrant, typ),
	}
}

func validateNameAmount(name string, amount decimal.Decimal) string {
	if name == "" {
		return "name required"
	}
	if amount.IsNegative() {
		return "amount must not be negative"
	}
	return ""
}

// ListIncome returns the user's income lines as a bare array.
func (h *Handler) ListIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	items, err := h.store.ListIncome(r.Context(), userID)
	if err != nil {
		storeError(w, "ListIncome", err)
		return
	}
	if items == nil {
		items = []models.IncomeItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

// AddIncome creates an income line. The response wraps the entity as
// {"incomeLine": ...}.
func (h *Handler) AddIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req incomeRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateNameAmount(req.Name, req.Amount); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	item := req.toItem()
	if err := h.store.CreateIncome(r.Context(), userID, &item); err != nil {
		storeError(w, "AddIncome", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]models.IncomeItem{"incomeLine": item})
}

// UpdateIncome replaces an income line by ID.
func (h *Handler) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req incomeRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateNameAmount(req.Name, req.Amount); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	item := req.toItem()
	item.ID = chi.URLParam(r, "id")
	if err := h.store.UpdateIncome(r.Context(), userID, &item); err != nil {
		storeError(w, "UpdateIncome", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]models.IncomeItem{"incomeLine": item})
}

// DeleteIncome removes an income line by ID and returns the deleted entity.
func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	item, err := h.store.DeleteIncome(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, "DeleteIncome", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.IncomeItem{"incomeLine": item})
}
