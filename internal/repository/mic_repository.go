package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stageset/stageset/internal/database"
	"github.com/stageset/stageset/internal/model"
)

// ErrMicNotFound is returned when a mic lookup yields no rows.
var ErrMicNotFound = errors.New("mic not found")

// MicRepo provides methods to work with mics in the active show.
type MicRepo struct {
	store *database.Store
}

// NewMicRepo constructs a MicRepo over the given store.
func NewMicRepo(store *database.Store) *MicRepo {
	return &MicRepo{store: store}
}

// All retrieves every mic ordered by channel number.
func (r *MicRepo) All(ctx context.Context) ([]model.Mic, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, number, name, x, y FROM mics ORDER BY number`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Mic{}
	for rows.Next() {
		var m model.Mic
		if err := rows.Scan(&m.ID, &m.Number, &m.Name, &m.X, &m.Y); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// GetByID retrieves a mic by its id.
func (r *MicRepo) GetByID(ctx context.Context, id int64) (*model.Mic, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, number, name, x, y FROM mics WHERE id = ?`
	var m model.Mic
	err = db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Number, &m.Name, &m.X, &m.Y)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("mic %d: %w", id, ErrMicNotFound)
		}
		return nil, err
	}
	return &m, nil
}

// Create inserts a mic. On success the mic's ID is populated.  The UNIQUE
// constraint on number surfaces as an error when the channel is taken.
func (r *MicRepo) Create(ctx context.Context, m *model.Mic) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `INSERT INTO mics (number, name, x, y) VALUES (?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, q, m.Number, m.Name, m.X, m.Y)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// Update persists the full field set of an already-merged mic record.
func (r *MicRepo) Update(ctx context.Context, m *model.Mic) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `UPDATE mics SET number = ?, name = ?, x = ?, y = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, q, m.Number, m.Name, m.X, m.Y, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mic %d: %w", m.ID, ErrMicNotFound)
	}
	return nil
}

// Delete removes a mic by id.  Deleting a missing mic is not an error,
// matching the delete-is-idempotent contract of the protocol.
func (r *MicRepo) Delete(ctx context.Context, id int64) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `DELETE FROM mics WHERE id = ?`
	_, err = db.ExecContext(ctx, q, id)
	return err
}
