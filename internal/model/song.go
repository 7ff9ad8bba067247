package model

// Song is one row of the setlist, ordered by its sort index.
type Song struct {
	ID        int64  `json:"id"`         // songs.id
	Title     string `json:"title"`      // songs.title
	Artist    string `json:"artist"`     // songs.artist
	SortOrder int    `json:"sort_order"` // songs.sort_order
}

// SongCreate is the payload of a song:create operation.  The sort order is
// assigned by the server (one past the current maximum).
type SongCreate struct {
	Title  *string `json:"title"`
	Artist *string `json:"artist"`
}

// Defaulted materializes a Song from the create payload.  ID and SortOrder
// are left for the store to assign.
func (c SongCreate) Defaulted() Song {
	var s Song
	if c.Title != nil {
		s.Title = *c.Title
	}
	if c.Artist != nil {
		s.Artist = *c.Artist
	}
	return s
}

// SongPatch carries a partial update for a song.
type SongPatch struct {
	Title  *string `json:"title"`
	Artist *string `json:"artist"`
}

// Apply merges the patch over the receiver.
func (s *Song) Apply(p SongPatch) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Artist != nil {
		s.Artist = *p.Artist
	}
}
