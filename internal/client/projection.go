// Package client implements the editor side of the plan protocol: a pure
// in-memory projection of the shared document plus a reconnecting
// websocket transport that keeps it converged with the server.
package client

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/stageset/stageset/internal/model"
	"github.com/stageset/stageset/internal/protocol"
)

// Projection is the client's local copy of the document.  Records are
// keyed by string: server ids rendered decimal, provisional records by
// the correlation token that created them.  The projection is pure state,
// no locking and no I/O; Client serializes access to it.
//
// Every mutation is written twice: once optimistically when the local
// user edits, and again when the confirming broadcast arrives.  Both
// paths go through the same helpers, so a confirmation replay is always
// idempotent.
type Projection struct {
	Show     string
	Mics     map[string]model.Mic
	Elements map[string]model.StageElement
	Zones    map[string]model.Zone
	Columns  map[string]model.Column
	Songs    map[string]model.Song
	Cells    map[string]model.Cell
	Presets  map[string]model.NotificationPreset

	// Notification is the single transient trigger slot.  A new trigger
	// overwrites the previous one; presentation logic clears it after
	// the display duration.
	Notification *protocol.NotifyTriggered
}

// NewProjection returns an empty projection.
func NewProjection() *Projection {
	p := &Projection{}
	p.reset()
	return p
}

func (p *Projection) reset() {
	p.Mics = map[string]model.Mic{}
	p.Elements = map[string]model.StageElement{}
	p.Zones = map[string]model.Zone{}
	p.Columns = map[string]model.Column{}
	p.Songs = map[string]model.Song{}
	p.Cells = map[string]model.Cell{}
	p.Presets = map[string]model.NotificationPreset{}
	p.Notification = nil
}

// Load replaces the whole projection with a snapshot.  Provisional
// records are discarded: anything the server confirmed is in the
// snapshot, anything it rejected is gone.
func (p *Projection) Load(show string, state model.FullState) {
	p.reset()
	p.Show = show
	for _, m := range state.Mics {
		p.Mics[idKey(m.ID)] = m
	}
	for _, e := range state.StageElements {
		p.Elements[idKey(e.ID)] = e
	}
	for _, z := range state.Zones {
		p.Zones[idKey(z.ID)] = z
	}
	for _, c := range state.Columns {
		p.Columns[idKey(c.ID)] = c
	}
	for _, s := range state.Songs {
		p.Songs[idKey(s.ID)] = s
	}
	for _, c := range state.Cells {
		p.Cells[cellKey(c.SongID, c.ColumnID)] = c
	}
	for _, n := range state.NotificationPresets {
		p.Presets[idKey(n.ID)] = n
	}
}

// ClearNotification empties the transient trigger slot.
func (p *Projection) ClearNotification() {
	p.Notification = nil
}

// idKey renders a server id as a projection key.
func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// cellKey addresses the cell at one (song, column) intersection.
func cellKey(songID, columnID int64) string {
	return idKey(songID) + ":" + idKey(columnID)
}

// rawKey turns an operation's raw id into a projection key.  Quoted ids
// come from optimistic operations built by this client, numeric ones from
// decoded envelopes.
func rawKey(raw json.RawMessage) string {
	return strings.Trim(string(raw), `"`)
}

// ApplyEvent reconciles one confirmed broadcast into the projection.
// Created events re-key the provisional record from the correlation token
// to the server id; everything else is insert-or-update or delete by id,
// safe against a projection that never saw the entity.
func (p *Projection) ApplyEvent(e protocol.Event) {
	switch ev := e.(type) {
	case protocol.MicCreated:
		confirmCreate(p.Mics, ev.TempID)
		p.Mics[idKey(ev.Mic.ID)] = ev.Mic
	case protocol.MicUpdated:
		p.Mics[idKey(ev.Mic.ID)] = ev.Mic
	case protocol.MicDeleted:
		delete(p.Mics, idKey(ev.ID))

	case protocol.ElementCreated:
		confirmCreate(p.Elements, ev.TempID)
		p.Elements[idKey(ev.Element.ID)] = ev.Element
	case protocol.ElementUpdated:
		p.Elements[idKey(ev.Element.ID)] = ev.Element
	case protocol.ElementDeleted:
		delete(p.Elements, idKey(ev.ID))

	case protocol.ZoneCreated:
		confirmCreate(p.Zones, ev.TempID)
		p.Zones[idKey(ev.Zone.ID)] = ev.Zone
	case protocol.ZoneUpdated:
		p.Zones[idKey(ev.Zone.ID)] = ev.Zone
	case protocol.ZoneDeleted:
		delete(p.Zones, idKey(ev.ID))

	case protocol.ColumnCreated:
		confirmCreate(p.Columns, ev.TempID)
		p.Columns[idKey(ev.Column.ID)] = ev.Column
	case protocol.ColumnUpdated:
		p.Columns[idKey(ev.Column.ID)] = ev.Column
	case protocol.ColumnDeleted:
		p.deleteColumn(idKey(ev.ID))
	case protocol.ColumnsReordered:
		p.renumberColumns(ev.Order)

	case protocol.SongCreated:
		confirmCreate(p.Songs, ev.TempID)
		p.Songs[idKey(ev.Song.ID)] = ev.Song
	case protocol.SongUpdated:
		p.Songs[idKey(ev.Song.ID)] = ev.Song
	case protocol.SongDeleted:
		p.deleteSong(idKey(ev.ID))
	case protocol.SongsReordered:
		p.renumberSongs(ev.Order)

	case protocol.CellUpdated:
		p.Cells[cellKey(ev.Cell.SongID, ev.Cell.ColumnID)] = ev.Cell

	case protocol.PresetCreated:
		p.Presets[idKey(ev.Preset.ID)] = ev.Preset
	case protocol.PresetUpdated:
		p.Presets[idKey(ev.Preset.ID)] = ev.Preset
	case protocol.PresetDeleted:
		delete(p.Presets, idKey(ev.ID))

	case protocol.NotifyTriggered:
		trigger := ev
		p.Notification = &trigger

	case protocol.ShowChanged:
		p.Load(ev.Show, ev.State)
	}
}

// confirmCreate drops the provisional record once its canonical twin
// arrives.  Other clients (and replays, where the token is already gone)
// take the no-op path.
func confirmCreate[T any](m map[string]T, tempID string) {
	if tempID != "" {
		delete(m, tempID)
	}
}

// ApplyLocal applies an operation optimistically, before the server has
// seen it.  Creates land under the correlation token; the confirming
// broadcast later re-keys them.  Updates and deletes address records by
// their current key, which may still be a token for unconfirmed creates.
func (p *Projection) ApplyLocal(op *protocol.Operation) {
	switch op.Kind {
	case protocol.OpMicCreate:
		if c, ok := op.Payload.(*model.MicCreate); ok && op.TempID != "" {
			p.Mics[op.TempID] = c.Defaulted()
		}
	case protocol.OpMicUpdate:
		if patch, ok := op.Payload.(*model.MicPatch); ok {
			if m, found := p.Mics[rawKey(op.ID)]; found {
				m.Apply(*patch)
				p.Mics[rawKey(op.ID)] = m
			}
		}
	case protocol.OpMicDelete:
		delete(p.Mics, rawKey(op.ID))

	case protocol.OpElementCreate:
		if c, ok := op.Payload.(*model.ElementCreate); ok && op.TempID != "" {
			p.Elements[op.TempID] = c.Defaulted()
		}
	case protocol.OpElementUpdate:
		if patch, ok := op.Payload.(*model.ElementPatch); ok {
			if e, found := p.Elements[rawKey(op.ID)]; found {
				e.Apply(*patch)
				p.Elements[rawKey(op.ID)] = e
			}
		}
	case protocol.OpElementDelete:
		delete(p.Elements, rawKey(op.ID))

	case protocol.OpZoneCreate:
		if c, ok := op.Payload.(*model.ZoneCreate); ok && op.TempID != "" {
			p.Zones[op.TempID] = c.Defaulted()
		}
	case protocol.OpZoneUpdate:
		if patch, ok := op.Payload.(*model.ZonePatch); ok {
			if z, found := p.Zones[rawKey(op.ID)]; found {
				z.Apply(*patch)
				p.Zones[rawKey(op.ID)] = z
			}
		}
	case protocol.OpZoneDelete:
		delete(p.Zones, rawKey(op.ID))

	case protocol.OpColumnCreate:
		if c, ok := op.Payload.(*model.ColumnCreate); ok && op.TempID != "" {
			col := model.Column{Key: c.Key, Label: c.Label, Type: c.Type, SortOrder: p.nextColumnSort()}
			p.Columns[op.TempID] = col
		}
	case protocol.OpColumnUpdate:
		if patch, ok := op.Payload.(*model.ColumnPatch); ok {
			if col, found := p.Columns[rawKey(op.ID)]; found {
				col.Apply(*patch)
				p.Columns[rawKey(op.ID)] = col
			}
		}
	case protocol.OpColumnDelete:
		p.deleteColumn(rawKey(op.ID))
	case protocol.OpColumnsReorder:
		p.renumberColumns(op.Order)

	case protocol.OpSongCreate:
		if c, ok := op.Payload.(*model.SongCreate); ok && op.TempID != "" {
			song := c.Defaulted()
			song.SortOrder = p.nextSongSort()
			p.Songs[op.TempID] = song
		}
	case protocol.OpSongUpdate:
		if patch, ok := op.Payload.(*model.SongPatch); ok {
			if s, found := p.Songs[rawKey(op.ID)]; found {
				s.Apply(*patch)
				p.Songs[rawKey(op.ID)] = s
			}
		}
	case protocol.OpSongDelete:
		p.deleteSong(rawKey(op.ID))
	case protocol.OpSongsReorder:
		p.renumberSongs(op.Order)

	case protocol.OpCellUpdate:
		if c, ok := op.Payload.(*protocol.CellUpdate); ok {
			song, err1 := strconv.ParseInt(rawKey(c.SongID), 10, 64)
			col, err2 := strconv.ParseInt(rawKey(c.ColumnID), 10, 64)
			if err1 == nil && err2 == nil {
				p.Cells[cellKey(song, col)] = model.Cell{SongID: song, ColumnID: col, Value: c.Value}
			}
		}

	case protocol.OpPresetCreate, protocol.OpPresetUpdate, protocol.OpPresetDelete,
		protocol.OpNotifyTrigger:
		// Presets carry no correlation token on the wire and triggers
		// mint their id server-side, so these wait for the broadcast.
	}
}

// deleteSong removes a song and every cell in its row, mirroring the
// server's cascade so the optimistic state matches the confirmation.
func (p *Projection) deleteSong(key string) {
	song, ok := p.Songs[key]
	delete(p.Songs, key)
	if !ok {
		return
	}
	for k, c := range p.Cells {
		if c.SongID == song.ID {
			delete(p.Cells, k)
		}
	}
}

// deleteColumn removes a column and every cell under it.
func (p *Projection) deleteColumn(key string) {
	col, ok := p.Columns[key]
	delete(p.Columns, key)
	if !ok {
		return
	}
	for k, c := range p.Cells {
		if c.ColumnID == col.ID {
			delete(p.Cells, k)
		}
	}
}

// renumberColumns reassigns sort indices 0..n-1 in the given id order,
// the same dense renumbering the server performs in its transaction.
// Unknown ids are skipped; columns absent from the order keep their old
// index.
func (p *Projection) renumberColumns(order []int64) {
	for i, id := range order {
		k := idKey(id)
		if col, ok := p.Columns[k]; ok {
			col.SortOrder = i
			p.Columns[k] = col
		}
	}
}

func (p *Projection) renumberSongs(order []int64) {
	for i, id := range order {
		k := idKey(id)
		if s, ok := p.Songs[k]; ok {
			s.SortOrder = i
			p.Songs[k] = s
		}
	}
}

func (p *Projection) nextColumnSort() int {
	next := 0
	for _, c := range p.Columns {
		if c.SortOrder >= next {
			next = c.SortOrder + 1
		}
	}
	return next
}

func (p *Projection) nextSongSort() int {
	next := 0
	for _, s := range p.Songs {
		if s.SortOrder >= next {
			next = s.SortOrder + 1
		}
	}
	return next
}

// ColumnsOrdered returns the columns sorted by their sort index, ties
// broken by key so the view is stable while a reorder is in flight.
func (p *Projection) ColumnsOrdered() []model.Column {
	out := make([]model.Column, 0, len(p.Columns))
	for _, c := range p.Columns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// SongsOrdered returns the setlist in play order.
func (p *Projection) SongsOrdered() []model.Song {
	out := make([]model.Song, 0, len(p.Songs))
	for _, s := range p.Songs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Cell returns the value at one (song, column) intersection, empty when
// the cell has never been written.
func (p *Projection) Cell(songID, columnID int64) string {
	return p.Cells[cellKey(songID, columnID)].Value
}
