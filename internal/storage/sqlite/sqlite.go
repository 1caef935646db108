// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/richflow/richflow/internal/models"
	"github.com/richflow/richflow/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser persists a new user, assigning an ID and timestamp if unset.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?", email)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, query, arg string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetCashSavings returns the cash-savings scalar, zero if never set.
func (s *SQLiteStore) GetCashSavings(ctx context.Context, userID string) (decimal.Decimal, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT amount FROM cash_savings WHERE user_id = ?", userID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get cash savings: %w", err)
	}
	return parseAmount(raw)
}

// SetCashSavings replaces the cash-savings scalar.
func (s *SQLiteStore) SetCashSavings(ctx context.Context, userID string, amount decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cash_savings (user_id, amount) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET amount = excluded.amount`,
		userID, amount.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to set cash savings: %w", err)
	}
	return nil
}

// ListCurrencies returns the seeded currency catalog.
func (s *SQLiteStore) ListCurrencies(ctx context.Context) ([]models.Currency, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, symbol, name FROM currencies ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []models.Currency
	for rows.Next() {
		var c models.Currency
		if err := rows.Scan(&c.ID, &c.Symbol, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate currencies: %w", err)
	}
	return currencies, nil
}

// GetUserCurrency returns the user's preference, nil when unset.
func (s *SQLiteStore) GetUserCurrency(ctx context.Context, userID string) (*models.Currency, error) {
	c := &models.Currency{}
	err := s.db.QueryRowContext(ctx,
		`SELECT c.id, c.symbol, c.name FROM currencies c
		 JOIN user_currency uc ON uc.currency_id = c.id
		 WHERE uc.user_id = ?`, userID,
	).Scan(&c.ID, &c.Symbol, &c.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user currency: %w", err)
	}
	return c, nil
}

// SetUserCurrency stores the preference after checking the catalog.
func (s *SQLiteStore) SetUserCurrency(ctx context.Context, userID, currencyID string) (*models.Currency, error) {
	c := &models.Currency{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, symbol, name FROM currencies WHERE id = ?", currencyID,
	).Scan(&c.ID, &c.Symbol, &c.Name)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_currency (user_id, currency_id) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET currency_id = excluded.currency_id`,
		userID, currencyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set user currency: %w", err)
	}
	return c, nil
}

// parseAmount restores a decimal stored as text. Amounts are written by this
// store, so a parse failure means the row was corrupted outside the app.
func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid stored amount %q: %w", raw, err)
	}
	return d, nil
}
