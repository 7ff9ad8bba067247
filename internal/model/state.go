package model

// FullState is the complete document snapshot for the active show, shaped
// as the named collections returned by GET /api/plan/state and embedded in
// show:changed broadcasts.  Slices are always non-nil so the JSON carries
// empty arrays rather than nulls.
type FullState struct {
	Mics                []Mic                `json:"mics"`
	StageElements       []StageElement       `json:"stageElements"`
	Zones               []Zone               `json:"zones"`
	Columns             []Column             `json:"columns"`
	Songs               []Song               `json:"songs"`
	Cells               []Cell               `json:"cells"`
	NotificationPresets []NotificationPreset `json:"notificationPresets"`
}

// NewFullState returns an empty snapshot with all collections allocated.
func NewFullState() FullState {
	return FullState{
		Mics:                []Mic{},
		StageElements:       []StageElement{},
		Zones:               []Zone{},
		Columns:             []Column{},
		Songs:               []Song{},
		Cells:               []Cell{},
		NotificationPresets: []NotificationPreset{},
	}
}
