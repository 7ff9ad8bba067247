package processor

// Notification preset operations and the broadcast-only trigger.  Preset
// create and update share one full-payload input: label and emoji are
// always required, the color falls back to the default.

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stageset/stageset/internal/model"
	"github.com/stageset/stageset/internal/protocol"
	"github.com/stageset/stageset/internal/queue"
)

func (p *Processor) presetInput(op *protocol.Operation) (*model.NotificationPresetInput, error) {
	in, err := payloadAs[model.NotificationPresetInput](op.Payload)
	if err != nil {
		return nil, err
	}
	in.Label = strings.TrimSpace(in.Label)
	in.Emoji = strings.TrimSpace(in.Emoji)
	in.Color = strings.TrimSpace(in.Color)
	if err := p.validatePayload(in); err != nil {
		return nil, err
	}
	return in, nil
}

func (p *Processor) createPreset(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	in, err := p.presetInput(op)
	if err != nil {
		return nil, err
	}
	preset := in.Defaulted()
	if err := p.presets.Create(ctx, &preset); err != nil {
		return nil, err
	}
	return protocol.PresetCreated{Preset: preset}, nil
}

func (p *Processor) updatePreset(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	id, err := asID(op.ID, "notification preset id")
	if err != nil {
		return nil, err
	}
	in, err := p.presetInput(op)
	if err != nil {
		return nil, err
	}
	preset, err := p.presets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := in.Defaulted()
	preset.Label = updated.Label
	preset.Emoji = updated.Emoji
	preset.Color = updated.Color
	if err := p.presets.Update(ctx, preset); err != nil {
		return nil, err
	}
	return protocol.PresetUpdated{Preset: *preset}, nil
}

func (p *Processor) deletePreset(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	id, err := asID(op.ID, "notification preset id")
	if err != nil {
		return nil, err
	}
	if err := p.presets.Delete(ctx, id); err != nil {
		return nil, err
	}
	return protocol.PresetDeleted{ID: id}, nil
}

// triggerNotification manufactures a broadcast-only event: nothing is
// persisted, the event id and timestamp are minted here.  A copy goes to
// the journal, fire-and-forget, off the broadcast path.
func (p *Processor) triggerNotification(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	id, err := asID(op.ID, "notification preset id")
	if err != nil {
		return nil, err
	}
	preset, err := p.presets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ev := protocol.NotifyTriggered{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
		Preset:    *preset,
	}
	if p.journal != nil {
		entry := queue.NotificationTriggered{
			EventID:   ev.EventID,
			Timestamp: ev.Timestamp,
			Show:      p.store.Current(),
			PresetID:  preset.ID,
			Label:     preset.Label,
			Emoji:     preset.Emoji,
			Color:     preset.Color,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := p.journal.PublishTrigger(ctx, entry); err != nil {
				log.Printf("processor: journal publish failed: %v", err)
			}
		}()
	}
	return ev, nil
}
