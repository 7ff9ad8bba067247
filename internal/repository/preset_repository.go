package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stageset/stageset/internal/database"
	"github.com/stageset/stageset/internal/model"
)

// ErrPresetNotFound is returned when a notification preset lookup yields
// no rows.
var ErrPresetNotFound = errors.New("notification preset not found")

// PresetRepo provides methods to work with notification presets in the
// active show.
type PresetRepo struct {
	store *database.Store
}

// NewPresetRepo constructs a PresetRepo over the given store.
func NewPresetRepo(store *database.Store) *PresetRepo {
	return &PresetRepo{store: store}
}

// All retrieves every preset ordered by sort index.
func (r *PresetRepo) All(ctx context.Context) ([]model.NotificationPreset, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, label, emoji, color, sort_order FROM notification_presets ORDER BY sort_order, id`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.NotificationPreset{}
	for rows.Next() {
		var p model.NotificationPreset
		if err := rows.Scan(&p.ID, &p.Label, &p.Emoji, &p.Color, &p.SortOrder); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// GetByID retrieves a preset by its id.
func (r *PresetRepo) GetByID(ctx context.Context, id int64) (*model.NotificationPreset, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, label, emoji, color, sort_order FROM notification_presets WHERE id = ?`
	var p model.NotificationPreset
	err = db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Label, &p.Emoji, &p.Color, &p.SortOrder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("notification preset %d: %w", id, ErrPresetNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a preset at the end of the order.
func (r *PresetRepo) Create(ctx context.Context, p *model.NotificationPreset) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	var maxOrder int
	if err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) FROM notification_presets`).Scan(&maxOrder); err != nil {
		return err
	}
	p.SortOrder = maxOrder + 1
	const q = `INSERT INTO notification_presets (label, emoji, color, sort_order) VALUES (?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, q, p.Label, p.Emoji, p.Color, p.SortOrder)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// Update persists label, emoji and color of an already-merged preset.
func (r *PresetRepo) Update(ctx context.Context, p *model.NotificationPreset) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `UPDATE notification_presets SET label = ?, emoji = ?, color = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, q, p.Label, p.Emoji, p.Color, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification preset %d: %w", p.ID, ErrPresetNotFound)
	}
	return nil
}

// Delete removes a preset by id.  Unlike mics and songs a missing preset
// is reported, so the UI can drop stale buttons.
func (r *PresetRepo) Delete(ctx context.Context, id int64) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `DELETE FROM notification_presets WHERE id = ?`
	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification preset %d: %w", id, ErrPresetNotFound)
	}
	return nil
}
