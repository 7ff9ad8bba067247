// Package protocol defines the message envelopes exchanged over the plan
// websocket.  Both directions carry a scope discriminator ("plan") and a
// type discriminator naming the operation or event.  Envelopes are decoded
// exactly once, at the transport boundary, into typed operations and
// events; the rest of the system never touches raw JSON.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/stageset/stageset/internal/model"
)

// ScopePlan tags every message of the plan protocol.  The scope field lets
// the transport multiplex unrelated message families over one socket.
const ScopePlan = "plan"

// Operation kinds, client to server.
const (
	OpMicCreate      = "mic:create"
	OpMicUpdate      = "mic:update"
	OpMicDelete      = "mic:delete"
	OpElementCreate  = "element:create"
	OpElementUpdate  = "element:update"
	OpElementDelete  = "element:delete"
	OpZoneCreate     = "zone:create"
	OpZoneUpdate     = "zone:update"
	OpZoneDelete     = "zone:delete"
	OpColumnCreate   = "column:create"
	OpColumnUpdate   = "column:update"
	OpColumnDelete   = "column:delete"
	OpColumnsReorder = "columns:reorder"
	OpSongCreate     = "song:create"
	OpSongUpdate     = "song:update"
	OpSongDelete     = "song:delete"
	OpSongsReorder   = "songs:reorder"
	OpCellUpdate     = "cell:update"
	OpPresetCreate   = "notificationPreset:create"
	OpPresetUpdate   = "notificationPreset:update"
	OpPresetDelete   = "notificationPreset:delete"
	OpNotifyTrigger  = "notification:trigger"
)

// Operation is a decoded client operation.  Payload holds the concrete
// typed struct for the operation kind (a model create/patch struct, or
// CellUpdate), or nil for delete/trigger/reorder operations.  ID is kept
// raw: validating it as a positive integer is the mutation processor's
// contract, not the transport's.
type Operation struct {
	Kind    string
	ID      json.RawMessage
	TempID  string
	Order   []int64
	Payload any
}

// CellUpdate is the payload of a cell:update operation.  The target ids
// arrive at the envelope's top level, not inside data.
type CellUpdate struct {
	SongID   json.RawMessage
	ColumnID json.RawMessage
	Value    string
}

// rawOperation is the wire shape of an inbound envelope.
type rawOperation struct {
	Scope    string          `json:"scope"`
	Type     string          `json:"type"`
	ID       json.RawMessage `json:"id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Order    []int64         `json:"order,omitempty"`
	SongID   json.RawMessage `json:"songId,omitempty"`
	ColumnID json.RawMessage `json:"columnId,omitempty"`
	Value    *string         `json:"value,omitempty"`
	TempID   string          `json:"tempId,omitempty"`
}

// MessageScope reports the scope discriminator of a raw message, or ""
// when the message is not valid JSON.  Messages of foreign scopes are
// ignored by the plan handler.
func MessageScope(data []byte) string {
	var env struct {
		Scope string `json:"scope"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return ""
	}
	return env.Scope
}

// MessageTempID pulls the correlation token out of a raw message so a
// decode failure can still be answered with an error envelope the sender
// can match to its provisional record.
func MessageTempID(data []byte) string {
	var env struct {
		TempID string `json:"tempId"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return ""
	}
	return env.TempID
}

// DecodeOperation parses a scope-"plan" client message into a typed
// Operation.  Unknown operation kinds and malformed payloads are decode
// errors; the caller answers those with an error envelope.
func DecodeOperation(data []byte) (*Operation, error) {
	var raw rawOperation
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	if raw.Scope != ScopePlan {
		return nil, fmt.Errorf("unexpected scope: %q", raw.Scope)
	}

	op := &Operation{Kind: raw.Type, ID: raw.ID, TempID: raw.TempID, Order: raw.Order}

	switch raw.Type {
	case OpMicCreate:
		op.Payload = new(model.MicCreate)
	case OpMicUpdate:
		op.Payload = new(model.MicPatch)
	case OpElementCreate:
		op.Payload = new(model.ElementCreate)
	case OpElementUpdate:
		op.Payload = new(model.ElementPatch)
	case OpZoneCreate:
		op.Payload = new(model.ZoneCreate)
	case OpZoneUpdate:
		op.Payload = new(model.ZonePatch)
	case OpColumnCreate:
		op.Payload = new(model.ColumnCreate)
	case OpColumnUpdate:
		op.Payload = new(model.ColumnPatch)
	case OpSongCreate:
		op.Payload = new(model.SongCreate)
	case OpSongUpdate:
		op.Payload = new(model.SongPatch)
	case OpPresetCreate, OpPresetUpdate:
		op.Payload = new(model.NotificationPresetInput)
	case OpCellUpdate:
		cu := CellUpdate{SongID: raw.SongID, ColumnID: raw.ColumnID}
		if raw.Value != nil {
			cu.Value = *raw.Value
		}
		op.Payload = &cu
		return op, nil
	case OpMicDelete, OpElementDelete, OpZoneDelete, OpColumnDelete,
		OpSongDelete, OpPresetDelete, OpNotifyTrigger,
		OpColumnsReorder, OpSongsReorder:
		return op, nil
	default:
		return nil, fmt.Errorf("unknown type: %s", raw.Type)
	}

	if len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, op.Payload); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", raw.Type, err)
		}
	}
	return op, nil
}

// EncodeOperation renders an operation back to its wire shape.  Used by
// the client side of the protocol.
func EncodeOperation(op *Operation) ([]byte, error) {
	raw := rawOperation{
		Scope:  ScopePlan,
		Type:   op.Kind,
		ID:     op.ID,
		Order:  op.Order,
		TempID: op.TempID,
	}
	if cu, ok := op.Payload.(*CellUpdate); ok {
		raw.SongID = cu.SongID
		raw.ColumnID = cu.ColumnID
		raw.Value = &cu.Value
	} else if op.Payload != nil {
		data, err := json.Marshal(op.Payload)
		if err != nil {
			return nil, err
		}
		raw.Data = data
	}
	return json.Marshal(raw)
}

// IDRaw renders an entity id in envelope form.
func IDRaw(id int64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf("%d", id))
}
