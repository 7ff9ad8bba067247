package processor

// Stage plan operations: mics, stage elements and zones.  None of these
// collections carries a sort order; creates fill in the documented canvas
// defaults, updates merge the supplied patch over the stored record.

import (
	"context"

	"github.com/stageset/stageset/internal/model"
	"github.com/stageset/stageset/internal/protocol"
)

func (p *Processor) createMic(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	payload, err := payloadAs[model.MicCreate](op.Payload)
	if err != nil {
		return nil, err
	}
	if err := p.validatePayload(payload); err != nil {
		return nil, err
	}
	m := payload.Defaulted()
	if err := p.mics.Create(ctx, &m); err != nil {
		return nil, err
	}
	return protocol.MicCreated{Mic: m, TempID: op.TempID}, nil
}

func (p *Processor) updateMic(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	id, err := asID(op.ID, "mic id")
	if err != nil {
		return nil, err
	}
	patch, err := payloadAs[model.MicPatch](op.Payload)
	if err != nil {
		return nil, err
	}
	m, err := p.mics.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Apply(*patch)
	if err := p.mics.Update(ctx, m); err != nil {
		return nil, err
	}
	return protocol.MicUpdated{Mic: *m}, nil
}

func (p *Processor) deleteMic(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	id, err := asID(op.ID, "mic id")
	if err != nil {
		return nil, err
	}
	if err := p.mics.Delete(ctx, id); err != nil {
		return nil, err
	}
	return protocol.MicDeleted{ID: id}, nil
}

func (p *Processor) createElement(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	payload, err := payloadAs[model.ElementCreate](op.Payload)
	if err != nil {
		return nil, err
	}
	if err := p.validatePayload(payload); err != nil {
		return nil, err
	}
	e := payload.Defaulted()
	if err := p.elements.Create(ctx, &e); err != nil {
		return nil, err
	}
	return protocol.ElementCreated{Element: e, TempID: op.TempID}, nil
}

func (p *Processor) updateElement(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	id, err := asID(op.ID, "element id")
	if err != nil {
		return nil, err
	}
	patch, err := payloadAs[model.ElementPatch](op.Payload)
	if err != nil {
		return nil, err
	}
	e, err := p.elements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Apply(*patch)
	if err := p.elements.Update(ctx, e); err != nil {
		return nil, err
	}
	return protocol.ElementUpdated{Element: *e}, nil
}

func (p *Processor) deleteElement(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	id, err := asID(op.ID, "element id")
	if err != nil {
		return nil, err
	}
	if err := p.elements.Delete(ctx, id); err != nil {
		return nil, err
	}
	return protocol.ElementDeleted{ID: id}, nil
}

func (p *Processor) createZone(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	payload, err := payloadAs[model.ZoneCreate](op.Payload)
	if err != nil {
		return nil, err
	}
	if err := p.validatePayload(payload); err != nil {
		return nil, err
	}
	z := payload.Defaulted()
	if err := p.zones.Create(ctx, &z); err != nil {
		return nil, err
	}
	return protocol.ZoneCreated{Zone: z, TempID: op.TempID}, nil
}

func (p *Processor) updateZone(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	id, err := asID(op.ID, "zone id")
	if err != nil {
		return nil, err
	}
	patch, err := payloadAs[model.ZonePatch](op.Payload)
	if err != nil {
		return nil, err
	}
	if err := p.validatePayload(patch); err != nil {
		return nil, err
	}
	z, err := p.zones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	z.Apply(*patch)
	if err := p.zones.Update(ctx, z); err != nil {
		return nil, err
	}
	return protocol.ZoneUpdated{Zone: *z}, nil
}

func (p *Processor) deleteZone(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	id, err := asID(op.ID, "zone id")
	if err != nil {
		return nil, err
	}
	if err := p.zones.Delete(ctx, id); err != nil {
		return nil, err
	}
	return protocol.ZoneDeleted{ID: id}, nil
}
