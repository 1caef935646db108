// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/richflow/richflow/internal/models"
)

// ErrNotFound is returned when a record does not exist or belongs to a
// different user.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence operations the handlers depend on.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the handler layer. Every record operation is scoped
// to one user; a store must never return another user's rows.
type Store interface {
	// CreateUser persists a new user. The user.ID field is populated by the
	// store if empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns ErrNotFound if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	ListIncome(ctx context.Context, userID string) ([]models.IncomeItem, error)
	CreateIncome(ctx context.Context, userID string, item *models.IncomeItem) error
	UpdateIncome(ctx context.Context, userID string, item *models.IncomeItem) error
	DeleteIncome(ctx context.Context, userID, id string) (*models.IncomeItem, error)

	ListExpenses(ctx context.Context, userID string) ([]models.ExpenseItem, error)
	CreateExpense(ctx context.Context, userID string, item *models.ExpenseItem) error
	UpdateExpense(ctx context.Context, userID string, item *models.ExpenseItem) error
	DeleteExpense(ctx context.Context, userID, id string) (*models.ExpenseItem, error)

	ListAssets(ctx context.Context, userID string) ([]models.AssetItem, error)
	CreateAsset(ctx context.Context, userID string, item *models.AssetItem) error
	UpdateAsset(ctx context.Context, userID string, item *models.AssetItem) error
	DeleteAsset(ctx context.Context, userID, id string) (*models.AssetItem, error)

	ListLiabilities(ctx context.Context, userID string) ([]models.LiabilityItem, error)
	CreateLiability(ctx context.Context, userID string, item *models.LiabilityItem) error
	UpdateLiability(ctx context.Context, userID string, item *models.LiabilityItem) error
	DeleteLiability(ctx context.Context, userID, id string) (*models.LiabilityItem, error)

	// GetCashSavings returns the user's cash-savings scalar; zero if never set.
	GetCashSavings(ctx context.Context, userID string) (decimal.Decimal, error)
	SetCashSavings(ctx context.Context, userID string, amount decimal.Decimal) error

	// ListCurrencies returns the currency catalog.
	ListCurrencies(ctx context.Context) ([]models.Currency, error)

	// GetUserCurrency returns the user's display-currency preference, or nil
	// when the user has never chosen one.
	GetUserCurrency(ctx context.Context, userID string) (*models.Currency, error)

	// SetUserCurrency stores the preference and returns the chosen currency.
	// Returns ErrNotFound if currencyID is not in the catalog.
	SetUserCurrency(ctx context.Context, userID, currencyID string) (*models.Currency, error)

	// Close releases any resources held by the store.
	Close() error
}
