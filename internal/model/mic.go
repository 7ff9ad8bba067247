package model

// Mic is a microphone placed on the stage plan.  Mics are identified by a
// server-assigned id; the number is the channel number printed on the plan
// and must be unique within a show.
//
// Fields:
//  ID     – primary key identifier.
//  Number – channel number, unique per show.
//  Name   – free-text display name (performer, instrument).
//  X, Y   – canvas position in plan coordinates.
type Mic struct {
	ID     int64   `json:"id"`     // mics.id
	Number int     `json:"number"` // mics.number
	Name   string  `json:"name"`   // mics.name
	X      float64 `json:"x"`      // mics.x
	Y      float64 `json:"y"`      // mics.y
}

// Default canvas position for newly created items when the client does not
// supply one.
const (
	DefaultItemX = 400
	DefaultItemY = 300
)

// MicCreate is the payload of a mic:create operation.  Optional fields are
// pointers so that "absent" can be told apart from a zero value.
type MicCreate struct {
	Number int      `json:"number" validate:"required"`
	Name   *string  `json:"name"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
}

// Defaulted materializes a Mic from the create payload, substituting the
// documented defaults for omitted fields.  The ID is left zero for the
// store to assign.
func (c MicCreate) Defaulted() Mic {
	m := Mic{Number: c.Number, X: DefaultItemX, Y: DefaultItemY}
	if c.Name != nil {
		m.Name = *c.Name
	}
	if c.X != nil {
		m.X = *c.X
	}
	if c.Y != nil {
		m.Y = *c.Y
	}
	return m
}

// MicPatch carries a partial update for a mic.  Nil fields keep their
// previous values.
type MicPatch struct {
	Number *int     `json:"number"`
	Name   *string  `json:"name"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
}

// Apply merges the patch over the receiver, field by field.
func (m *Mic) Apply(p MicPatch) {
	if p.Number != nil {
		m.Number = *p.Number
	}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.X != nil {
		m.X = *p.X
	}
	if p.Y != nil {
		m.Y = *p.Y
	}
}
