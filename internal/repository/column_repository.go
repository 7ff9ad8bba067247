package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stageset/stageset/internal/database"
	"github.com/stageset/stageset/internal/model"
)

// ErrColumnNotFound is returned when a column lookup yields no rows.
var ErrColumnNotFound = errors.New("column not found")

// ColumnRepo provides methods to work with setlist columns in the active
// show.  Columns are an ordered collection: creates append at the end and
// Reorder reassigns the whole sort index range in one transaction.
type ColumnRepo struct {
	store *database.Store
}

// NewColumnRepo constructs a ColumnRepo over the given store.
func NewColumnRepo(store *database.Store) *ColumnRepo {
	return &ColumnRepo{store: store}
}

// All retrieves every column ordered by sort index.
func (r *ColumnRepo) All(ctx context.Context) ([]model.Column, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, key, label, type, sort_order, is_default FROM columns ORDER BY sort_order, id`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Column{}
	for rows.Next() {
		var c model.Column
		if err := rows.Scan(&c.ID, &c.Key, &c.Label, &c.Type, &c.SortOrder, &c.IsDefault); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// GetByID retrieves a column by its id.
func (r *ColumnRepo) GetByID(ctx context.Context, id int64) (*model.Column, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, key, label, type, sort_order, is_default FROM columns WHERE id = ?`
	var c model.Column
	err = db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Key, &c.Label, &c.Type, &c.SortOrder, &c.IsDefault)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("column %d: %w", id, ErrColumnNotFound)
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a user column at the end of the order.  The sort index is
// assigned as one past the current maximum (zero for an empty collection)
// and the record is never default.
func (r *ColumnRepo) Create(ctx context.Context, c *model.Column) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	var maxOrder int
	if err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) FROM columns`).Scan(&maxOrder); err != nil {
		return err
	}
	c.SortOrder = maxOrder + 1
	c.IsDefault = false
	const q = `INSERT INTO columns (key, label, type, sort_order, is_default) VALUES (?, ?, ?, ?, 0)`
	res, err := db.ExecContext(ctx, q, c.Key, c.Label, c.Type, c.SortOrder)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// Update persists label and type of an already-merged column record.  Key,
// sort index and the default flag never change through update.
func (r *ColumnRepo) Update(ctx context.Context, c *model.Column) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `UPDATE columns SET label = ?, type = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, q, c.Label, c.Type, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("column %d: %w", c.ID, ErrColumnNotFound)
	}
	return nil
}

// Delete removes a non-default column; dependent cells cascade away via
// the foreign key.  Deleting a default column fails with ErrDefaultColumn.
func (r *ColumnRepo) Delete(ctx context.Context, id int64) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `DELETE FROM columns WHERE id = ? AND is_default = 0`
	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var isDefault bool
		err := db.QueryRowContext(ctx, `SELECT is_default FROM columns WHERE id = ?`, id).Scan(&isDefault)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("column %d: %w", id, ErrColumnNotFound)
		}
		if err != nil {
			return err
		}
		return ErrDefaultColumn
	}
	return nil
}

// Reorder assigns each column's sort index as its position in the given id
// list, as a single all-or-nothing batch.  Concurrent readers never see a
// partially renumbered collection.
func (r *ColumnRepo) Reorder(ctx context.Context, order []int64) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	return reorderInTx(ctx, db, `UPDATE columns SET sort_order = ? WHERE id = ?`, order)
}

// reorderInTx renumbers an ordered collection inside one transaction.
// Shared by column and song reorders.
func reorderInTx(ctx context.Context, db *sql.DB, stmt string, order []int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for i, id := range order {
		if _, err := tx.ExecContext(ctx, stmt, i, id); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
