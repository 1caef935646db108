package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/richflow/richflow/internal/models"
	"github.com/richflow/richflow/internal/storage"
)

// ListIncome returns all income lines owned by the user.
func (s *SQLiteStore) ListIncome(ctx context.Context, userID string) ([]models.IncomeItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, amount, type, quadrant FROM income_lines WHERE user_id = ? ORDER BY rowid",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list income: %w", err)
	}
	defer rows.Close()

	var items []models.IncomeItem
	for rows.Next() {
		var (
			item          models.IncomeItem
			amount        string
			typ, quadrant string
		)
		if err := rows.Scan(&item.ID, &item.Name, &amount, &typ, &quadrant); err != nil {
			return nil, fmt.Errorf("failed to scan income line: %w", err)
		}
		if item.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		item.Type = models.ParseIncomeType(typ)
		item.Quadrant = models.ResolveQuadrant(quadrant, item.Type)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate income lines: %w", err)
	}
	return items, nil
}

// CreateIncome persists a new income line, assigning an ID if unset.
func (s *SQLiteStore) CreateIncome(ctx context.Context, userID string, item *models.IncomeItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO income_lines (id, user_id, name, amount, type, quadrant) VALUES (?, ?, ?, ?, ?, ?)",
		item.ID, userID, item.Name, item.Amount.String(), string(item.Type), string(item.Quadrant),
	)
	if err != nil {
		return fmt.Errorf("failed to insert income line: %w", err)
	}
	return nil
}

// UpdateIncome replaces an income line owned by the user.
func (s *SQLiteStore) UpdateIncome(ctx context.Context, userID string, item *models.IncomeItem) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE income_lines SET name = ?, amount = ?, type = ?, quadrant = ? WHERE id = ? AND user_id = ?",
		item.Name, item.Amount.String(), string(item.Type), string(item.Quadrant), item.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update income line: %w", err)
	}
	return requireRow(res)
}

// DeleteIncome removes an income line and returns the deleted record.
func (s *SQLiteStore) DeleteIncome(ctx context.Context, userID, id string) (*models.IncomeItem, error) {
	var (
		item          models.IncomeItem
		amount        string
		typ, quadrant string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, amount, type, quadrant FROM income_lines WHERE id = ? AND user_id = ?",
		id, userID,
	).Scan(&item.ID, &item.Name, &amount, &typ, &quadrant)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get income line: %w", err)
	}
	if item.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	item.Type = models.ParseIncomeType(typ)
	item.Quadrant = models.ResolveQuadrant(quadrant, item.Type)

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM income_lines WHERE id = ? AND user_id = ?", id, userID,
	); err != nil {
		return nil, fmt.Errorf("failed to delete income line: %w", err)
	}
	return &item, nil
}

// ListExpenses returns all expenses owned by the user.
func (s *SQLiteStore) ListExpenses(ctx context.Context, userID string) ([]models.ExpenseItem, error) {
	return listNamed(ctx, s.db, "SELECT id, name, amount FROM expenses WHERE user_id = ? ORDER BY rowid", userID,
		func(id, name string, amount string) (models.ExpenseItem, error) {
			d, err := parseAmount(amount)
			return models.ExpenseItem{ID: id, Name: name, Amount: d}, err
		})
}

// CreateExpense persists a new expense, assigning an ID if unset.
func (s *SQLiteStore) CreateExpense(ctx context.Context, userID string, item *models.ExpenseItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO expenses (id, user_id, name, amount) VALUES (?, ?, ?, ?)",
		item.ID, userID, item.Name, item.Amount.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// UpdateExpense replaces an expense owned by the user.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, userID string, item *models.ExpenseItem) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET name = ?, amount = ? WHERE id = ? AND user_id = ?",
		item.Name, item.Amount.String(), item.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return requireRow(res)
}

// DeleteExpense removes an expense and returns the deleted record.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, userID, id string) (*models.ExpenseItem, error) {
	var (
		item   models.ExpenseItem
		amount string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, amount FROM expenses WHERE id = ? AND user_id = ?", id, userID,
	).Scan(&item.ID, &item.Name, &amount)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if item.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE id = ? AND user_id = ?", id, userID,
	); err != nil {
		return nil, fmt.Errorf("failed to delete expense: %w", err)
	}
	return &item, nil
}

// ListAssets returns all assets owned by the user.
func (s *SQLiteStore) ListAssets(ctx context.Context, userID string) ([]models.AssetItem, error) {
	return listNamed(ctx, s.db, "SELECT id, name, value FROM assets WHERE user_id = ? ORDER BY rowid", userID,
		func(id, name string, value string) (models.AssetItem, error) {
			d, err := parseAmount(value)
			return models.AssetItem{ID: id, Name: name, Value: d}, err
		})
}

// CreateAsset persists a new asset, assigning an ID if unset.
func (s *SQLiteStore) CreateAsset(ctx context.Context, userID string, item *models.AssetItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO assets (id, user_id, name, value) VALUES (?, ?, ?, ?)",
		item.ID, userID, item.Name, item.Value.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}
	return nil
}

// UpdateAsset replaces an asset owned by the user.
func (s *SQLiteStore) UpdateAsset(ctx context.Context, userID string, item *models.AssetItem) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE assets SET name = ?, value = ? WHERE id = ? AND user_id = ?",
		item.Name, item.Value.String(), item.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	return requireRow(res)
}

// DeleteAsset removes an asset and returns the deleted record.
func (s *SQLiteStore) DeleteAsset(ctx context.Context, userID, id string) (*models.AssetItem, error) {
	var (
		item  models.AssetItem
		value string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, value FROM assets WHERE id = ? AND user_id = ?", id, userID,
	).Scan(&item.ID, &item.Name, &value)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	if item.Value, err = parseAmount(value); err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM assets WHERE id = ? AND user_id = ?", id, userID,
	); err != nil {
		return nil, fmt.Errorf("failed to delete asset: %w", err)
	}
	return &item, nil
}

// ListLiabilities returns all liabilities owned by the user.
func (s *SQLiteStore) ListLiabilities(ctx context.Context, userID string) ([]models.LiabilityItem, error) {
	return listNamed(ctx, s.db, "SELECT id, name, value FROM liabilities WHERE user_id = ? ORDER BY rowid", userID,
		func(id, name string, value string) (models.LiabilityItem, error) {
			d, err := parseAmount(value)
			return models.LiabilityItem{ID: id, Name: name, Value: d}, err
		})
}

// CreateLiability persists a new liability, assigning an ID if unset.
func (s *SQLiteStore) CreateLiability(ctx context.Context, userID string, item *models.LiabilityItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO liabilities (id, user_id, name, value) VALUES (?, ?, ?, ?)",
		item.ID, userID, item.Name, item.Value.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert liability: %w", err)
	}
	return nil
}

// UpdateLiability replaces a liability owned by the user.
func (s *SQLiteStore) UpdateLiability(ctx context.Context, userID string, item *models.LiabilityItem) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE liabilities SET name = ?, value = ? WHERE id = ? AND user_id = ?",
		item.Name, item.Value.String(), item.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update liability: %w", err)
	}
	return requireRow(res)
}

// DeleteLiability removes a liability and returns the deleted record.
func (s *SQLiteStore) DeleteLiability(ctx context.Context, userID, id string) (*models.LiabilityItem, error) {
	var (
		item  models.LiabilityItem
		value string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, value FROM liabilities WHERE id = ? AND user_id = ?", id, userID,
	).Scan(&item.ID, &item.Name, &value)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get liability: %w", err)
	}
	if item.Value, err = parseAmount(value); err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM liabilities WHERE id = ? AND user_id = ?", id, userID,
	); err != nil {
		return nil, fmt.Errorf("failed to delete liability: %w", err)
	}
	return &item, nil
}

// listNamed runs a three-column (id, name, money) list query.
func listNamed[T any](ctx context.Context, db *sql.DB, query, userID string, build func(id, name, money string) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		var id, name, money string
		if err := rows.Scan(&id, &name, &money); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		item, err := build(id, name, money)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return items, nil
}

// requireRow converts a zero-row update into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
