package repository

import (
	"context"

	"github.com/stageset/stageset/internal/database"
	"github.com/stageset/stageset/internal/model"
)

// CellRepo provides access to setlist cells.  Cells only support upsert:
// at most one cell exists per (song, column) pair and writing to an
// occupied pair overwrites the value.
type CellRepo struct {
	store *database.Store
}

// NewCellRepo constructs a CellRepo over the given store.
func NewCellRepo(store *database.Store) *CellRepo {
	return &CellRepo{store: store}
}

// All retrieves every cell of the active show.
func (r *CellRepo) All(ctx context.Context) ([]model.Cell, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	const q = `SELECT song_id, column_id, value FROM cells`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Cell{}
	for rows.Next() {
		var c model.Cell
		if err := rows.Scan(&c.SongID, &c.ColumnID, &c.Value); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Upsert writes the cell value for a (song, column) pair, inserting or
// overwriting as needed.  The foreign keys reject unknown song or column
// ids.
func (r *CellRepo) Upsert(ctx context.Context, c model.Cell) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	const q = `INSERT INTO cells (song_id, column_id, value) VALUES (?, ?, ?)
	           ON CONFLICT(song_id, column_id) DO UPDATE SET value = excluded.value`
	_, err = db.ExecContext(ctx, q, c.SongID, c.ColumnID, c.Value)
	return err
}
