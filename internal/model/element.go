package model

// StageElement is a non-mic item on the stage plan: a speaker, monitor
// wedge, stagebox, mixer or a generic labelled object.  Point-like kinds
// have zero size; the generic "object" kind gets a visible footprint by
// default so it can be resized.
type StageElement struct {
	ID       int64   `json:"id"`       // stage_elements.id
	Kind     string  `json:"kind"`     // stage_elements.kind
	Label    string  `json:"label"`    // stage_elements.label
	X        float64 `json:"x"`        // stage_elements.x
	Y        float64 `json:"y"`        // stage_elements.y
	Width    float64 `json:"width"`    // stage_elements.width
	Height   float64 `json:"height"`   // stage_elements.height
	Rotation float64 `json:"rotation"` // stage_elements.rotation
}

// ElementKindObject is the one element kind that defaults to a non-zero
// footprint.
const ElementKindObject = "object"

// Default footprint for the "object" kind.
const (
	DefaultObjectWidth  = 200
	DefaultObjectHeight = 120
)

// ElementCreate is the payload of an element:create operation.
type ElementCreate struct {
	Kind     string   `json:"kind" validate:"required"`
	Label    *string  `json:"label"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	Width    *float64 `json:"width"`
	Height   *float64 `json:"height"`
	Rotation *float64 `json:"rotation"`
}

// Defaulted materializes a StageElement from the create payload.  Size
// defaults depend on the kind: "object" gets the standard footprint,
// point-like kinds default to zero size.
func (c ElementCreate) Defaulted() StageElement {
	e := StageElement{Kind: c.Kind, X: DefaultItemX, Y: DefaultItemY}
	if c.Kind == ElementKindObject {
		e.Width = DefaultObjectWidth
		e.Height = DefaultObjectHeight
	}
	if c.Label != nil {
		e.Label = *c.Label
	}
	if c.X != nil {
		e.X = *c.X
	}
	if c.Y != nil {
		e.Y = *c.Y
	}
	if c.Width != nil {
		e.Width = *c.Width
	}
	if c.Height != nil {
		e.Height = *c.Height
	}
	if c.Rotation != nil {
		e.Rotation = *c.Rotation
	}
	return e
}

// ElementPatch carries a partial update for a stage element.
type ElementPatch struct {
	Kind     *string  `json:"kind"`
	Label    *string  `json:"label"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	Width    *float64 `json:"width"`
	Height   *float64 `json:"height"`
	Rotation *float64 `json:"rotation"`
}

// Apply merges the patch over the receiver.
func (e *StageElement) Apply(p ElementPatch) {
	if p.Kind != nil {
		e.Kind = *p.Kind
	}
	if p.Label != nil {
		e.Label = *p.Label
	}
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.Width != nil {
		e.Width = *p.Width
	}
	if p.Height != nil {
		e.Height = *p.Height
	}
	if p.Rotation != nil {
		e.Rotation = *p.Rotation
	}
}
