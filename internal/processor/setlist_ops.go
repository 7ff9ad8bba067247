package processor

// Setlist operations: columns, songs and cells.  Columns and songs are
// ordered collections; reorders replace the whole index range in one
// transactional batch so a partial renumbering is never observable.

import (
	"context"
	"errors"

	"github.com/stageset/stageset/internal/model"
	"github.com/stageset/stageset/internal/protocol"
)

func (p *Processor) createColumn(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	payload, err := payloadAs[model.ColumnCreate](op.Payload)
	if err != nil {
		return nil, err
	}
	if err := p.validatePayload(payload); err != nil {
		return nil, err
	}
	c := model.Column{Key: payload.Key, Label: payload.Label, Type: payload.Type}
	if err := p.columns.Create(ctx, &c); err != nil {
		return nil, err
	}
	return protocol.ColumnCreated{Column: c, TempID: op.TempID}, nil
}

func (p *Processor) updateColumn(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	id, err := asID(op.ID, "column id")
	if err != nil {
		return nil, err
	}
	patch, err := payloadAs[model.ColumnPatch](op.Payload)
	if err != nil {
		return nil, err
	}
	if err := p.validatePayload(patch); err != nil {
		return nil, err
	}
	c, err := p.columns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Apply(*patch)
	if err := p.columns.Update(ctx, c); err != nil {
		return nil, err
	}
	return protocol.ColumnUpdated{Column: *c}, nil
}

func (p *Processor) deleteColumn(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	id, err := asID(op.ID, "column id")
	if err != nil {
		return nil, err
	}
	if err := p.columns.Delete(ctx, id); err != nil {
		return nil, err
	}
	return protocol.ColumnDeleted{ID: id}, nil
}

func (p *Processor) reorderColumns(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	if len(op.Order) == 0 {
		return nil, errors.New("order is required")
	}
	if err := p.columns.Reorder(ctx, op.Order); err != nil {
		return nil, err
	}
	return protocol.ColumnsReordered{Order: op.Order}, nil
}

func (p *Processor) createSong(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	payload, err := payloadAs[model.SongCreate](op.Payload)
	if err != nil {
		return nil, err
	}
	s := payload.Defaulted()
	if err := p.songs.Create(ctx, &s); err != nil {
		return nil, err
	}
	return protocol.SongCreated{Song: s, TempID: op.TempID}, nil
}

func (p *Processor) updateSong(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	id, err := asID(op.ID, "song id")
	if err != nil {
		return nil, err
	}
	patch, err := payloadAs[model.SongPatch](op.Payload)
	if err != nil {
		return nil, err
	}
	s, err := p.songs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Apply(*patch)
	if err := p.songs.Update(ctx, s); err != nil {
		return nil, err
	}
	return protocol.SongUpdated{Song: *s}, nil
}

func (p *Processor) deleteSong(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	id, err := asID(op.ID, "song id")
	if err != nil {
		return nil, err
	}
	if err := p.songs.Delete(ctx, id); err != nil {
		return nil, err
	}
	return protocol.SongDeleted{ID: id}, nil
}

func (p *Processor) reorderSongs(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	if len(op.Order) == 0 {
		return nil, errors.New("order is required")
	}
	if err := p.songs.Reorder(ctx, op.Order); err != nil {
		return nil, err
	}
	return protocol.SongsReordered{Order: op.Order}, nil
}

func (p *Processor) updateCell(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	payload, err := payloadAs[protocol.CellUpdate](op.Payload)
	if err != nil {
		return nil, err
	}
	songID, err := asID(payload.SongID, "song id")
	if err != nil {
		return nil, err
	}
	columnID, err := asID(payload.ColumnID, "column id")
	if err != nil {
		return nil, err
	}
	// Resolve both parents first so a dangling id reads as not-found
	// instead of a bare constraint failure.
	if _, err := p.songs.GetByID(ctx, songID); err != nil {
		return nil, err
	}
	if _, err := p.columns.GetByID(ctx, columnID); err != nil {
		return nil, err
	}
	cell := model.Cell{SongID: songID, ColumnID: columnID, Value: payload.Value}
	if err := p.cells.Upsert(ctx, cell); err != nil {
		return nil, err
	}
	return protocol.CellUpdated{Cell: cell}, nil
}
