package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stageset/stageset/internal/database"
	"github.com/stageset/stageset/internal/model"
)

// ErrElementNotFound is returned when a stage element lookup yields no rows.
var ErrElementNotFound = errors.New("element not found")

// ElementRepo provides methods to work with stage elements in the active show.
type ElementRepo struct {
	store *database.Store
}

// NewElementRepo constructs an ElementRepo over the given store.
func NewElementRepo(store *database.Store) *ElementRepo {
	return &ElementRepo{store: store}
}

// All retrieves every stage element in insertion order.
func (r *ElementRepo) All(ctx context.Context) ([]model.StageElement, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, kind, label, x, y, width, height, rotation FROM stage_elements ORDER BY id`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.StageElement{}
	for rows.Next() {
		var e model.StageElement
		if err := rows.Scan(&e.ID, &e.Kind, &e.Label, &e.X, &e.Y, &e.Width, &e.Height, &e.Rotation); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetByID retrieves a stage element by its id.
func (r *ElementRepo) GetByID(ctx context.Context, id int64) (*model.StageElement, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, kind, label, x, y, width, height, rotation FROM stage_elements WHERE id = ?`
	var e model.StageElement
	err = db.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.Kind, &e.Label, &e.X, &e.Y, &e.Width, &e.Height, &e.Rotation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("element %d: %w", id, ErrElementNotFound)
		}
		return nil, err
	}
	return &e, nil
}

// Create inserts a stage element. On success the element's ID is populated.
func (r *ElementRepo) Create(ctx context.Context, e *model.StageElement) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `INSERT INTO stage_elements (kind, label, x, y, width, height, rotation)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, q, e.Kind, e.Label, e.X, e.Y, e.Width, e.Height, e.Rotation)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// Update persists the full field set of an already-merged element record.
func (r *ElementRepo) Update(ctx context.Context, e *model.StageElement) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `UPDATE stage_elements
	           SET kind = ?, label = ?, x = ?, y = ?, width = ?, height = ?, rotation = ?
	           WHERE id = ?`
	res, err := db.ExecContext(ctx, q, e.Kind, e.Label, e.X, e.Y, e.Width, e.Height, e.Rotation, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("element %d: %w", e.ID, ErrElementNotFound)
	}
	return nil
}

// Delete removes a stage element by id.
func (r *ElementRepo) Delete(ctx context.Context, id int64) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `DELETE FROM stage_elements WHERE id = ?`
	_, err = db.ExecContext(ctx, q, id)
	return err
}
