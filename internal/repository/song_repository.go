package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stageset/stageset/internal/database"
	"github.com/stageset/stageset/internal/model"
)

// ErrSongNotFound is returned when a song lookup yields no rows.
var ErrSongNotFound = errors.New("song not found")

// SongRepo provides methods to work with setlist songs in the active show.
type SongRepo struct {
	store *database.Store
}

// NewSongRepo constructs a SongRepo over the given store.
func NewSongRepo(store *database.Store) *SongRepo {
	return &SongRepo{store: store}
}

// All retrieves every song ordered by sort index.
func (r *SongRepo) All(ctx context.Context) ([]model.Song, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, title, artist, sort_order FROM songs ORDER BY sort_order, id`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Song{}
	for rows.Next() {
		var s model.Song
		if err := rows.Scan(&s.ID, &s.Title, &s.Artist, &s.SortOrder); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetByID retrieves a song by its id.
func (r *SongRepo) GetByID(ctx context.Context, id int64) (*model.Song, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, title, artist, sort_order FROM songs WHERE id = ?`
	var s model.Song
	err = db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Title, &s.Artist, &s.SortOrder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("song %d: %w", id, ErrSongNotFound)
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts a song at the end of the setlist.  The sort index is
// assigned as one past the current maximum (zero for an empty setlist).
func (r *SongRepo) Create(ctx context.Context, s *model.Song) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	var maxOrder int
	if err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) FROM songs`).Scan(&maxOrder); err != nil {
		return err
	}
	s.SortOrder = maxOrder + 1
	const q = `INSERT INTO songs (title, artist, sort_order) VALUES (?, ?, ?)`
	res, err := db.ExecContext(ctx, q, s.Title, s.Artist, s.SortOrder)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// Update persists title and artist of an already-merged song record.
// Ordering changes go through Reorder.
func (r *SongRepo) Update(ctx context.Context, s *model.Song) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `UPDATE songs SET title = ?, artist = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, q, s.Title, s.Artist, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("song %d: %w", s.ID, ErrSongNotFound)
	}
	return nil
}

// Delete removes a song by id; its cells cascade away via the foreign key.
func (r *SongRepo) Delete(ctx context.Context, id int64) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `DELETE FROM songs WHERE id = ?`
	_, err = db.ExecContext(ctx, q, id)
	return err
}

// Reorder assigns each song's sort index as its position in the given id
// list, as a single all-or-nothing batch.
func (r *SongRepo) Reorder(ctx context.Context, order []int64) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	return reorderInTx(ctx, db, `UPDATE songs SET sort_order = ? WHERE id = ?`, order)
}
