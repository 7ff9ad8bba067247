package model

// Column describes one column of the setlist table.  Three default columns
// are seeded when a show's schema is created; those can be edited but never
// deleted.  The key is a stable string used by the UI, the type decides the
// cell editor: "mic" renders a mic selector, "text" a free-text field.
type Column struct {
	ID        int64  `json:"id"`         // columns.id
	Key       string `json:"key"`        // columns.key
	Label     string `json:"label"`      // columns.label
	Type      string `json:"type"`       // columns.type
	SortOrder int    `json:"sort_order"` // columns.sort_order
	IsDefault bool   `json:"is_default"` // columns.is_default
}

// Column types.
const (
	ColumnTypeMic  = "mic"
	ColumnTypeText = "text"
)

// ColumnCreate is the payload of a column:create operation.  User-created
// columns are never default; the sort order is assigned by the server.
type ColumnCreate struct {
	Key   string `json:"key" validate:"required"`
	Label string `json:"label" validate:"required"`
	Type  string `json:"type" validate:"required,oneof=mic text"`
}

// ColumnPatch carries a partial update for a column.  Key, sort order and
// the default flag are not patchable: the key is a stable identifier and
// ordering changes go through columns:reorder.
type ColumnPatch struct {
	Label *string `json:"label"`
	Type  *string `json:"type" validate:"omitempty,oneof=mic text"`
}

// Apply merges the patch over the receiver.
func (c *Column) Apply(p ColumnPatch) {
	if p.Label != nil {
		c.Label = *p.Label
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
}
