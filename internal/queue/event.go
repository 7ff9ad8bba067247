// Package queue defines the notification journal exchanged over the
// message broker.  Triggered notifications are transient on the plan
// protocol; the journal gives external consumers (lighting rigs, logging)
// a durable copy without touching the broadcast path.
package queue

// NotificationTriggered is published for every notification:trigger
// operation.  It carries the denormalized preset so consumers need no
// access to the show database.
type NotificationTriggered struct {
	EventID   string `json:"event_id"`
	Timestamp int64  `json:"timestamp"`
	Show      string `json:"show"`
	PresetID  int64  `json:"preset_id"`
	Label     string `json:"label"`
	Emoji     string `json:"emoji"`
	Color     string `json:"color"`
}
