package model

// NotificationPreset is a reusable notification button: a label, an emoji
// glyph and a color.  Triggering a preset does not change persisted state;
// it only emits a transient broadcast event.
type NotificationPreset struct {
	ID        int64  `json:"id"`         // notification_presets.id
	Label     string `json:"label"`      // notification_presets.label
	Emoji     string `json:"emoji"`      // notification_presets.emoji
	Color     string `json:"color"`      // notification_presets.color
	SortOrder int    `json:"sort_order"` // notification_presets.sort_order
}

// NotificationPresetInput is the payload of both notificationPreset:create
// and notificationPreset:update.  Unlike the other entities, preset edits
// always carry the full field set; label and emoji are required, color
// falls back to the default when omitted.
type NotificationPresetInput struct {
	Label string `json:"label" validate:"required"`
	Emoji string `json:"emoji" validate:"required"`
	Color string `json:"color" validate:"omitempty,hexrgb"`
}

// Defaulted materializes a preset from the input.  ID and SortOrder are
// left for the store to assign.
func (in NotificationPresetInput) Defaulted() NotificationPreset {
	p := NotificationPreset{Label: in.Label, Emoji: in.Emoji, Color: in.Color}
	if p.Color == "" {
		p.Color = DefaultColor
	}
	return p
}
