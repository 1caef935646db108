// Package handler implements the RichFlow REST API. Mutation responses wrap
// the entity under its category key ("incomeLine", "expense", "asset",
// "liability") for compatibility with existing clients; list responses are
// bare arrays.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/richflow/richflow/internal/auth"
	"github.com/richflow/richflow/internal/middleware"
	"github.com/richflow/richflow/internal/storage"
)

// Handler holds the dependencies shared by all route handlers.
type Handler struct {
	store storage.Store
	authn auth.Authenticator
	jwt   *auth.JWTManager
}

// New creates a Handler over the given storage and auth components.
func New(store storage.Store, authn auth.Authenticator, jwt *auth.JWTManager) *Handler {
	return &Handler{store: store, authn: authn, jwt: jwt}
}

// Router builds the full route tree, including middleware and /metrics.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Metrics)
	r.Use(middleware.Logging)

	r.Handle("/metrics", promhttp.Handler())
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwt))

		r.Route("/income", func(r chi.Router) {
			r.Get("/", h.ListIncome)
			r.Post("/", h.AddIncome)
			r.Put("/{id}", h.UpdateIncome)
			r.Delete("/{id}", h.DeleteIncome)
		})
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.ListExpenses)
			r.Post("/", h.AddExpense)
			r.Put("/{id}", h.UpdateExpense)
			r.Delete("/{id}", h.DeleteExpense)
		})
		r.Route("/assets", func(r chi.Router) {
			r.Get("/", h.ListAssets)
			r.Post("/", h.AddAsset)
			r.Put("/{id}", h.UpdateAsset)
			r.Delete("/{id}", h.DeleteAsset)
		})
		r.Route("/liabilities", func(r chi.Router) {
			r.Get("/", h.ListLiabilities)
			r.Post("/", h.AddLiability)
			r.Put("/{id}", h.UpdateLiability)
			r.Delete("/{id}", h.DeleteLiability)
		})

		r.Get("/cashSavings", h.GetCashSavings)
		r.Put("/cashSavings", h.SetCashSavings)

		r.Get("/currency", h.ListCurrencies)
		r.Get("/currency/user", h.GetUserCurrency)
		r.Put("/currency/user", h.SetUserCurrency)

		r.Get("/balanceSheet", h.BalanceSheet)
		r.Get("/analysis", h.Analysis)
		r.Get("/export/xlsx", h.ExportXLSX)
	})

	return r
}

// respondJSON writes v as a JSON response.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondError writes an error body in the `{"error": ...}` shape clients expect.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// storeError maps storage failures to HTTP responses.
func storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "record not found")
		return
	}
	slog.Error(op+" failed", "error", err)
	respondError(w, http.StatusInternalServerError, op+" failed")
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// currentUser extracts the authenticated user ID set by RequireAuth.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}
