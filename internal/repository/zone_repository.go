package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stageset/stageset/internal/database"
	"github.com/stageset/stageset/internal/model"
)

// ErrZoneNotFound is returned when a zone lookup yields no rows.
var ErrZoneNotFound = errors.New("zone not found")

// ZoneRepo provides methods to work with zones in the active show.
type ZoneRepo struct {
	store *database.Store
}

// NewZoneRepo constructs a ZoneRepo over the given store.
func NewZoneRepo(store *database.Store) *ZoneRepo {
	return &ZoneRepo{store: store}
}

// All retrieves every zone in insertion order.
func (r *ZoneRepo) All(ctx context.Context) ([]model.Zone, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, name, color, x, y, width, height FROM zones ORDER BY id`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Zone{}
	for rows.Next() {
		var z model.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.Color, &z.X, &z.Y, &z.Width, &z.Height); err != nil {
			return nil, err
		}
		result = append(result, z)
	}
	return result, rows.Err()
}

// GetByID retrieves a zone by its id.
func (r *ZoneRepo) GetByID(ctx context.Context, id int64) (*model.Zone, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, name, color, x, y, width, height FROM zones WHERE id = ?`
	var z model.Zone
	err = db.QueryRowContext(ctx, q, id).Scan(&z.ID, &z.Name, &z.Color, &z.X, &z.Y, &z.Width, &z.Height)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("zone %d: %w", id, ErrZoneNotFound)
		}
		return nil, err
	}
	return &z, nil
}

// Create inserts a zone. On success the zone's ID is populated.
func (r *ZoneRepo) Create(ctx context.Context, z *model.Zone) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `INSERT INTO zones (name, color, x, y, width, height) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, q, z.Name, z.Color, z.X, z.Y, z.Width, z.Height)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	z.ID = id
	return nil
}

// Update persists the full field set of an already-merged zone record.
func (r *ZoneRepo) Update(ctx context.Context, z *model.Zone) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `UPDATE zones SET name = ?, color = ?, x = ?, y = ?, width = ?, height = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, q, z.Name, z.Color, z.X, z.Y, z.Width, z.Height, z.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("zone %d: %w", z.ID, ErrZoneNotFound)
	}
	return nil
}

// Delete removes a zone by id.
func (r *ZoneRepo) Delete(ctx context.Context, id int64) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `DELETE FROM zones WHERE id = ?`
	_, err = db.ExecContext(ctx, q, id)
	return err
}
