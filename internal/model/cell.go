package model

// Cell is the value at one (song, column) intersection of the setlist.
// For text columns the value is free text; for mic columns it is a
// JSON-encoded array of mic ids, stored verbatim (the server never parses
// it).  Cells are upserted, never created or deleted directly; deleting a
// song or column cascades its cells away.
type Cell struct {
	SongID   int64  `json:"song_id"`   // cells.song_id
	ColumnID int64  `json:"column_id"` // cells.column_id
	Value    string `json:"value"`     // cells.value
}
