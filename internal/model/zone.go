package model

// Zone is a rectangular area drawn on the stage plan to group items
// visually (e.g. "Drums", "Brass").  The color is a #RRGGBB value.
type Zone struct {
	ID     int64   `json:"id"`     // zones.id
	Name   string  `json:"name"`   // zones.name
	Color  string  `json:"color"`  // zones.color
	X      float64 `json:"x"`      // zones.x
	Y      float64 `json:"y"`      // zones.y
	Width  float64 `json:"width"`  // zones.width
	Height float64 `json:"height"` // zones.height
}

// DefaultColor is used for zones and notification presets created without
// an explicit color.
const DefaultColor = "#6B9FFF"

// Default zone geometry.
const (
	DefaultZoneX      = 200
	DefaultZoneY      = 200
	DefaultZoneWidth  = 200
	DefaultZoneHeight = 150
)

// ZoneCreate is the payload of a zone:create operation.
type ZoneCreate struct {
	Name   *string  `json:"name"`
	Color  *string  `json:"color" validate:"omitempty,hexrgb"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

// Defaulted materializes a Zone from the create payload.
func (c ZoneCreate) Defaulted() Zone {
	z := Zone{
		Color:  DefaultColor,
		X:      DefaultZoneX,
		Y:      DefaultZoneY,
		Width:  DefaultZoneWidth,
		Height: DefaultZoneHeight,
	}
	if c.Name != nil {
		z.Name = *c.Name
	}
	if c.Color != nil {
		z.Color = *c.Color
	}
	if c.X != nil {
		z.X = *c.X
	}
	if c.Y != nil {
		z.Y = *c.Y
	}
	if c.Width != nil {
		z.Width = *c.Width
	}
	if c.Height != nil {
		z.Height = *c.Height
	}
	return z
}

// ZonePatch carries a partial update for a zone.
type ZonePatch struct {
	Name   *string  `json:"name"`
	Color  *string  `json:"color" validate:"omitempty,hexrgb"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

// Apply merges the patch over the receiver.
func (z *Zone) Apply(p ZonePatch) {
	if p.Name != nil {
		z.Name = *p.Name
	}
	if p.Color != nil {
		z.Color = *p.Color
	}
	if p.X != nil {
		z.X = *p.X
	}
	if p.Y != nil {
		z.Y = *p.Y
	}
	if p.Width != nil {
		z.Width = *p.Width
	}
	if p.Height != nil {
		z.Height = *p.Height
	}
}
