package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/stageset/stageset/internal/model"
)

// Event kinds, server to clients.
const (
	EvMicCreated       = "mic:created"
	EvMicUpdated       = "mic:updated"
	EvMicDeleted       = "mic:deleted"
	EvElementCreated   = "element:created"
	EvElementUpdated   = "element:updated"
	EvElementDeleted   = "element:deleted"
	EvZoneCreated      = "zone:created"
	EvZoneUpdated      = "zone:updated"
	EvZoneDeleted      = "zone:deleted"
	EvColumnCreated    = "column:created"
	EvColumnUpdated    = "column:updated"
	EvColumnDeleted    = "column:deleted"
	EvColumnsReordered = "columns:reordered"
	EvSongCreated      = "song:created"
	EvSongUpdated      = "song:updated"
	EvSongDeleted      = "song:deleted"
	EvSongsReordered   = "songs:reordered"
	EvCellUpdated      = "cell:updated"
	EvPresetCreated    = "notificationPreset:created"
	EvPresetUpdated    = "notificationPreset:updated"
	EvPresetDeleted    = "notificationPreset:deleted"
	EvNotifyTriggered  = "notification:triggered"
	EvShowChanged      = "show:changed"
	EvError            = "error"
)

// Event is a confirmed state change (or error reply) in its decoded,
// typed form.  The concrete types below form a closed set; EventType
// returns the wire discriminator.
type Event interface {
	EventType() string
}

// Created events carry the canonical record and echo the originating
// client's correlation token so only that client replaces its provisional
// record.
type (
	MicCreated struct {
		Mic    model.Mic
		TempID string
	}
	MicUpdated struct{ Mic model.Mic }
	MicDeleted struct{ ID int64 }

	ElementCreated struct {
		Element model.StageElement
		TempID  string
	}
	ElementUpdated struct{ Element model.StageElement }
	ElementDeleted struct{ ID int64 }

	ZoneCreated struct {
		Zone   model.Zone
		TempID string
	}
	ZoneUpdated struct{ Zone model.Zone }
	ZoneDeleted struct{ ID int64 }

	ColumnCreated struct {
		Column model.Column
		TempID string
	}
	ColumnUpdated    struct{ Column model.Column }
	ColumnDeleted    struct{ ID int64 }
	ColumnsReordered struct{ Order []int64 }

	SongCreated struct {
		Song   model.Song
		TempID string
	}
	SongUpdated    struct{ Song model.Song }
	SongDeleted    struct{ ID int64 }
	SongsReordered struct{ Order []int64 }

	CellUpdated struct{ Cell model.Cell }

	PresetCreated struct{ Preset model.NotificationPreset }
	PresetUpdated struct{ Preset model.NotificationPreset }
	PresetDeleted struct{ ID int64 }

	// NotifyTriggered is broadcast-only: nothing is persisted, the event
	// id and timestamp are minted at trigger time.
	NotifyTriggered struct {
		EventID   string
		Timestamp int64
		Preset    model.NotificationPreset
	}

	// ShowChanged tells every client the document was replaced; the new
	// snapshot rides along so clients can rebuild without a refetch.
	ShowChanged struct {
		Show  string
		State model.FullState
	}

	// ErrorReply is delivered only to the originating session, never
	// broadcast.  TempID carries the correlation token of the failed
	// operation when one was supplied.
	ErrorReply struct {
		TempID  string
		Message string
	}
)

func (MicCreated) EventType() string       { return EvMicCreated }
func (MicUpdated) EventType() string       { return EvMicUpdated }
func (MicDeleted) EventType() string       { return EvMicDeleted }
func (ElementCreated) EventType() string   { return EvElementCreated }
func (ElementUpdated) EventType() string   { return EvElementUpdated }
func (ElementDeleted) EventType() string   { return EvElementDeleted }
func (ZoneCreated) EventType() string      { return EvZoneCreated }
func (ZoneUpdated) EventType() string      { return EvZoneUpdated }
func (ZoneDeleted) EventType() string      { return EvZoneDeleted }
func (ColumnCreated) EventType() string    { return EvColumnCreated }
func (ColumnUpdated) EventType() string    { return EvColumnUpdated }
func (ColumnDeleted) EventType() string    { return EvColumnDeleted }
func (ColumnsReordered) EventType() string { return EvColumnsReordered }
func (SongCreated) EventType() string      { return EvSongCreated }
func (SongUpdated) EventType() string      { return EvSongUpdated }
func (SongDeleted) EventType() string      { return EvSongDeleted }
func (SongsReordered) EventType() string   { return EvSongsReordered }
func (CellUpdated) EventType() string      { return EvCellUpdated }
func (PresetCreated) EventType() string    { return EvPresetCreated }
func (PresetUpdated) EventType() string    { return EvPresetUpdated }
func (PresetDeleted) EventType() string    { return EvPresetDeleted }
func (NotifyTriggered) EventType() string  { return EvNotifyTriggered }
func (ShowChanged) EventType() string      { return EvShowChanged }
func (ErrorReply) EventType() string       { return EvError }

// wireEvent is the JSON shape shared by every plan event.
type wireEvent struct {
	Scope        string          `json:"scope"`
	Type         string          `json:"type"`
	Data         json.RawMessage `json:"data,omitempty"`
	ID           int64           `json:"id,omitempty"`
	Order        []int64         `json:"order,omitempty"`
	TempID       string          `json:"tempId,omitempty"`
	EventID      string          `json:"eventId,omitempty"`
	Timestamp    int64           `json:"timestamp,omitempty"`
	Notification json.RawMessage `json:"notification,omitempty"`
	Show         string          `json:"show,omitempty"`
	State        json.RawMessage `json:"state,omitempty"`
	Message      string          `json:"message,omitempty"`
}

func marshalData(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// EncodeEvent renders a typed event to its wire shape.
func EncodeEvent(e Event) ([]byte, error) {
	w := wireEvent{Scope: ScopePlan, Type: e.EventType()}
	var err error
	switch ev := e.(type) {
	case MicCreated:
		w.Data, err = marshalData(ev.Mic)
		w.TempID = ev.TempID
	case MicUpdated:
		w.Data, err = marshalData(ev.Mic)
	case MicDeleted:
		w.ID = ev.ID
	case ElementCreated:
		w.Data, err = marshalData(ev.Element)
		w.TempID = ev.TempID
	case ElementUpdated:
		w.Data, err = marshalData(ev.Element)
	case ElementDeleted:
		w.ID = ev.ID
	case ZoneCreated:
		w.Data, err = marshalData(ev.Zone)
		w.TempID = ev.TempID
	case ZoneUpdated:
		w.Data, err = marshalData(ev.Zone)
	case ZoneDeleted:
		w.ID = ev.ID
	case ColumnCreated:
		w.Data, err = marshalData(ev.Column)
		w.TempID = ev.TempID
	case ColumnUpdated:
		w.Data, err = marshalData(ev.Column)
	case ColumnDeleted:
		w.ID = ev.ID
	case ColumnsReordered:
		w.Order = ev.Order
	case SongCreated:
		w.Data, err = marshalData(ev.Song)
		w.TempID = ev.TempID
	case SongUpdated:
		w.Data, err = marshalData(ev.Song)
	case SongDeleted:
		w.ID = ev.ID
	case SongsReordered:
		w.Order = ev.Order
	case CellUpdated:
		w.Data, err = marshalData(ev.Cell)
	case PresetCreated:
		w.Data, err = marshalData(ev.Preset)
	case PresetUpdated:
		w.Data, err = marshalData(ev.Preset)
	case PresetDeleted:
		w.ID = ev.ID
	case NotifyTriggered:
		w.EventID = ev.EventID
		w.Timestamp = ev.Timestamp
		w.Notification, err = marshalData(ev.Preset)
	case ShowChanged:
		w.Show = ev.Show
		w.State, err = marshalData(ev.State)
	case ErrorReply:
		w.TempID = ev.TempID
		w.Message = ev.Message
	default:
		return nil, fmt.Errorf("unknown event %T", e)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// DecodeEvent parses a scope-"plan" server message into a typed event.
// Used by the client side of the protocol.
func DecodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("malformed event: %w", err)
	}
	if w.Scope != ScopePlan {
		return nil, fmt.Errorf("unexpected scope: %q", w.Scope)
	}
	switch w.Type {
	case EvMicCreated:
		var m model.Mic
		if err := json.Unmarshal(w.Data, &m); err != nil {
			return nil, err
		}
		return MicCreated{Mic: m, TempID: w.TempID}, nil
	case EvMicUpdated:
		var m model.Mic
		if err := json.Unmarshal(w.Data, &m); err != nil {
			return nil, err
		}
		return MicUpdated{Mic: m}, nil
	case EvMicDeleted:
		return MicDeleted{ID: w.ID}, nil
	case EvElementCreated:
		var e model.StageElement
		if err := json.Unmarshal(w.Data, &e); err != nil {
			return nil, err
		}
		return ElementCreated{Element: e, TempID: w.TempID}, nil
	case EvElementUpdated:
		var e model.StageElement
		if err := json.Unmarshal(w.Data, &e); err != nil {
			return nil, err
		}
		return ElementUpdated{Element: e}, nil
	case EvElementDeleted:
		return ElementDeleted{ID: w.ID}, nil
	case EvZoneCreated:
		var z model.Zone
		if err := json.Unmarshal(w.Data, &z); err != nil {
			return nil, err
		}
		return ZoneCreated{Zone: z, TempID: w.TempID}, nil
	case EvZoneUpdated:
		var z model.Zone
		if err := json.Unmarshal(w.Data, &z); err != nil {
			return nil, err
		}
		return ZoneUpdated{Zone: z}, nil
	case EvZoneDeleted:
		return ZoneDeleted{ID: w.ID}, nil
	case EvColumnCreated:
		var c model.Column
		if err := json.Unmarshal(w.Data, &c); err != nil {
			return nil, err
		}
		return ColumnCreated{Column: c, TempID: w.TempID}, nil
	case EvColumnUpdated:
		var c model.Column
		if err := json.Unmarshal(w.Data, &c); err != nil {
			return nil, err
		}
		return ColumnUpdated{Column: c}, nil
	case EvColumnDeleted:
		return ColumnDeleted{ID: w.ID}, nil
	case EvColumnsReordered:
		return ColumnsReordered{Order: w.Order}, nil
	case EvSongCreated:
		var s model.Song
		if err := json.Unmarshal(w.Data, &s); err != nil {
			return nil, err
		}
		return SongCreated{Song: s, TempID: w.TempID}, nil
	case EvSongUpdated:
		var s model.Song
		if err := json.Unmarshal(w.Data, &s); err != nil {
			return nil, err
		}
		return SongUpdated{Song: s}, nil
	case EvSongDeleted:
		return SongDeleted{ID: w.ID}, nil
	case EvSongsReordered:
		return SongsReordered{Order: w.Order}, nil
	case EvCellUpdated:
		var c model.Cell
		if err := json.Unmarshal(w.Data, &c); err != nil {
			return nil, err
		}
		return CellUpdated{Cell: c}, nil
	case EvPresetCreated, EvPresetUpdated:
		var p model.NotificationPreset
		if err := json.Unmarshal(w.Data, &p); err != nil {
			return nil, err
		}
		if w.Type == EvPresetCreated {
			return PresetCreated{Preset: p}, nil
		}
		return PresetUpdated{Preset: p}, nil
	case EvPresetDeleted:
		return PresetDeleted{ID: w.ID}, nil
	case EvNotifyTriggered:
		var p model.NotificationPreset
		if err := json.Unmarshal(w.Notification, &p); err != nil {
			return nil, err
		}
		return NotifyTriggered{EventID: w.EventID, Timestamp: w.Timestamp, Preset: p}, nil
	case EvShowChanged:
		state := model.NewFullState()
		if err := json.Unmarshal(w.State, &state); err != nil {
			return nil, err
		}
		return ShowChanged{Show: w.Show, State: state}, nil
	case EvError:
		return ErrorReply{TempID: w.TempID, Message: w.Message}, nil
	default:
		return nil, fmt.Errorf("unknown event type: %s", w.Type)
	}
}
