// Package processor implements the mutation pipeline: one Processor is
// the single authority for turning a client operation into a durable
// state change plus a canonical broadcast event.  A process-wide write
// lock serializes apply+broadcast, so every session observes events in
// the exact order they were produced.
package processor

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/stageset/stageset/internal/database"
	"github.com/stageset/stageset/internal/model"
	"github.com/stageset/stageset/internal/protocol"
	"github.com/stageset/stageset/internal/queue"
	"github.com/stageset/stageset/internal/repository"
)

// Broadcaster fans a confirmed event out to every connected session.
type Broadcaster interface {
	Broadcast(e protocol.Event)
}

// Journal receives a copy of every triggered notification for external
// consumers.  May be nil when no broker is configured.
type Journal interface {
	PublishTrigger(ctx context.Context, ev queue.NotificationTriggered) error
}

// Processor validates operations, applies them to the active show's
// store and broadcasts the canonical result.  Failures produce no side
// effects and are returned to the caller for an error reply to the
// originating session only.
type Processor struct {
	mu sync.Mutex

	store    *database.Store
	mics     *repository.MicRepo
	elements *repository.ElementRepo
	zones    *repository.ZoneRepo
	columns  *repository.ColumnRepo
	songs    *repository.SongRepo
	cells    *repository.CellRepo
	presets  *repository.PresetRepo

	hub      Broadcaster
	journal  Journal
	validate *validator.Validate
}

// New constructs a Processor over the given store and hub.  journal may
// be nil.
func New(store *database.Store, hub Broadcaster, journal Journal) *Processor {
	return &Processor{
		store:    store,
		mics:     repository.NewMicRepo(store),
		elements: repository.NewElementRepo(store),
		zones:    repository.NewZoneRepo(store),
		columns:  repository.NewColumnRepo(store),
		songs:    repository.NewSongRepo(store),
		cells:    repository.NewCellRepo(store),
		presets:  repository.NewPresetRepo(store),
		hub:      hub,
		journal:  journal,
		validate: newValidator(),
	}
}

// Process applies one client operation.  On success the confirmed event
// has been broadcast to every session before Process returns; on failure
// nothing was persisted or broadcast and the error carries the message
// for the originator's error envelope.
func (p *Processor) Process(ctx context.Context, op *protocol.Operation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev, err := p.apply(ctx, op)
	if err != nil {
		return err
	}
	p.hub.Broadcast(ev)
	return nil
}

// apply dispatches on the operation kind.  Runs with the write lock held.
func (p *Processor) apply(ctx context.Context, op *protocol.Operation) (protocol.Event, error) {
	switch op.Kind {
	case protocol.OpMicCreate:
		return p.createMic(ctx, op)
	case protocol.OpMicUpdate:
		return p.updateMic(ctx, op)
	case protocol.OpMicDelete:
		return p.deleteMic(ctx, op)
	case protocol.OpElementCreate:
		return p.createElement(ctx, op)
	case protocol.OpElementUpdate:
		return p.updateElement(ctx, op)
	case protocol.OpElementDelete:
		return p.deleteElement(ctx, op)
	case protocol.OpZoneCreate:
		return p.createZone(ctx, op)
	case protocol.OpZoneUpdate:
		return p.updateZone(ctx, op)
	case protocol.OpZoneDelete:
		return p.deleteZone(ctx, op)
	case protocol.OpColumnCreate:
		return p.createColumn(ctx, op)
	case protocol.OpColumnUpdate:
		return p.updateColumn(ctx, op)
	case protocol.OpColumnDelete:
		return p.deleteColumn(ctx, op)
	case protocol.OpColumnsReorder:
		return p.reorderColumns(ctx, op)
	case protocol.OpSongCreate:
		return p.createSong(ctx, op)
	case protocol.OpSongUpdate:
		return p.updateSong(ctx, op)
	case protocol.OpSongDelete:
		return p.deleteSong(ctx, op)
	case protocol.OpSongsReorder:
		return p.reorderSongs(ctx, op)
	case protocol.OpCellUpdate:
		return p.updateCell(ctx, op)
	case protocol.OpPresetCreate:
		return p.createPreset(ctx, op)
	case protocol.OpPresetUpdate:
		return p.updatePreset(ctx, op)
	case protocol.OpPresetDelete:
		return p.deletePreset(ctx, op)
	case protocol.OpNotifyTrigger:
		return p.triggerNotification(ctx, op)
	default:
		return nil, fmt.Errorf("unknown type: %s", op.Kind)
	}
}

// Snapshot assembles the full document of the active show.
func (p *Processor) Snapshot(ctx context.Context) (model.FullState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked(ctx)
}

func (p *Processor) snapshotLocked(ctx context.Context) (model.FullState, error) {
	state := model.NewFullState()
	var err error
	if state.Mics, err = p.mics.All(ctx); err != nil {
		return state, err
	}
	if state.StageElements, err = p.elements.All(ctx); err != nil {
		return state, err
	}
	if state.Zones, err = p.zones.All(ctx); err != nil {
		return state, err
	}
	if state.Columns, err = p.columns.All(ctx); err != nil {
		return state, err
	}
	if state.Songs, err = p.songs.All(ctx); err != nil {
		return state, err
	}
	if state.Cells, err = p.cells.All(ctx); err != nil {
		return state, err
	}
	if state.NotificationPresets, err = p.presets.All(ctx); err != nil {
		return state, err
	}
	return state, nil
}

// CurrentShow returns the active show name, "" when none is selected.
func (p *Processor) CurrentShow() string {
	return p.store.Current()
}

// ListShows lists every persisted show.
func (p *Processor) ListShows() ([]string, error) {
	return p.store.List()
}

// SelectShow swaps the active show and broadcasts a show:changed event
// carrying the new document so every client rebuilds its projection.
func (p *Processor) SelectShow(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectShowLocked(ctx, name, p.store.Select)
}

// CreateShow creates a new show, makes it active and broadcasts the
// resulting document replacement.
func (p *Processor) CreateShow(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectShowLocked(ctx, name, p.store.Create)
}

func (p *Processor) selectShowLocked(ctx context.Context, name string, open func(string) error) error {
	if err := open(name); err != nil {
		return err
	}
	state, err := p.snapshotLocked(ctx)
	if err != nil {
		return err
	}
	p.hub.Broadcast(protocol.ShowChanged{Show: name, State: state})
	return nil
}

// DeleteShow removes a non-active show.  No broadcast: the shared
// document is unaffected.
func (p *Processor) DeleteShow(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.Delete(name)
}
