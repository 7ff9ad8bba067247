package client

import (
	"testing"

	"github.com/stageset/stageset/internal/model"
	"github.com/stageset/stageset/internal/protocol"
)

func strptr(s string) *string { return &s }

func TestOptimisticCreateThenConfirmRekeys(t *testing.T) {
	p := NewProjection()

	op := &protocol.Operation{
		Kind:    protocol.OpMicCreate,
		TempID:  "tmp-1",
		Payload: &model.MicCreate{Number: 2, Name: strptr("Keys")},
	}
	p.ApplyLocal(op)

	prov, ok := p.Mics["tmp-1"]
	if !ok {
		t.Fatal("no provisional record")
	}
	if prov.ID != 0 || prov.Number != 2 || prov.X != model.DefaultItemX {
		t.Fatalf("provisional = %+v", prov)
	}

	// The confirming broadcast re-keys tmp-1 to the server id.
	p.ApplyEvent(protocol.MicCreated{
		Mic:    model.Mic{ID: 11, Number: 2, Name: "Keys", X: 400, Y: 300},
		TempID: "tmp-1",
	})
	if _, still := p.Mics["tmp-1"]; still {
		t.Error("provisional record survived confirmation")
	}
	if got := p.Mics["11"]; got.ID != 11 || got.Name != "Keys" {
		t.Errorf("canonical record = %+v", got)
	}

	// A second client sees the same event with a foreign token and just
	// inserts; replaying it is idempotent either way.
	p.ApplyEvent(protocol.MicCreated{Mic: model.Mic{ID: 11, Number: 2, Name: "Keys"}, TempID: "tmp-1"})
	if len(p.Mics) != 1 {
		t.Errorf("mics = %v", p.Mics)
	}
}

func TestConfirmedUpdateIsIdempotent(t *testing.T) {
	p := NewProjection()
	ev := protocol.ZoneUpdated{Zone: model.Zone{ID: 4, Name: "Horns", Color: "#112233"}}

	// Applying against an empty projection inserts (snapshot fetch may
	// still be in flight), and re-applying changes nothing.
	p.ApplyEvent(ev)
	p.ApplyEvent(ev)
	if len(p.Zones) != 1 || p.Zones["4"].Name != "Horns" {
		t.Fatalf("zones = %v", p.Zones)
	}
}

func TestLocalDeleteCascadesCells(t *testing.T) {
	p := NewProjection()
	p.Load("test", model.FullState{
		Columns: []model.Column{{ID: 1, Key: "notes", Type: model.ColumnTypeText}},
		Songs:   []model.Song{{ID: 10, Title: "A"}, {ID: 20, Title: "B"}},
		Cells: []model.Cell{
			{SongID: 10, ColumnID: 1, Value: "x"},
			{SongID: 20, ColumnID: 1, Value: "y"},
		},
	})

	p.ApplyLocal(&protocol.Operation{Kind: protocol.OpSongDelete, ID: protocol.IDRaw(10)})
	if _, ok := p.Songs["10"]; ok {
		t.Error("song not deleted")
	}
	if _, ok := p.Cells["10:1"]; ok {
		t.Error("cells of deleted song must cascade away")
	}
	if p.Cells["20:1"].Value != "y" {
		t.Error("unrelated cell lost")
	}

	// The confirming broadcast replays the same cascade.
	p.ApplyEvent(protocol.SongDeleted{ID: 10})
	if len(p.Songs) != 1 || len(p.Cells) != 1 {
		t.Errorf("songs=%v cells=%v", p.Songs, p.Cells)
	}

	// Column delete cascades the other axis.
	p.ApplyEvent(protocol.ColumnDeleted{ID: 1})
	if len(p.Cells) != 0 {
		t.Errorf("cells after column delete = %v", p.Cells)
	}
}

func TestReorderMatchesServerRenumbering(t *testing.T) {
	p := NewProjection()
	p.Load("test", model.FullState{
		Songs: []model.Song{
			{ID: 1, Title: "One", SortOrder: 0},
			{ID: 2, Title: "Two", SortOrder: 1},
			{ID: 3, Title: "Three", SortOrder: 2},
		},
	})

	p.ApplyLocal(&protocol.Operation{Kind: protocol.OpSongsReorder, Order: []int64{3, 1, 2}})
	ordered := p.SongsOrdered()
	if ordered[0].ID != 3 || ordered[1].ID != 1 || ordered[2].ID != 2 {
		t.Fatalf("optimistic order: %v", ordered)
	}
	for i, s := range ordered {
		if s.SortOrder != i {
			t.Errorf("song %d sort = %d, want %d", s.ID, s.SortOrder, i)
		}
	}

	// The confirmation must be a no-op on already-renumbered state.
	before := p.SongsOrdered()
	p.ApplyEvent(protocol.SongsReordered{Order: []int64{3, 1, 2}})
	after := p.SongsOrdered()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("confirmation changed state at %d: %v -> %v", i, before[i], after[i])
		}
	}
}

func TestOptimisticColumnCreateAssignsNextSort(t *testing.T) {
	p := NewProjection()
	p.Load("test", model.FullState{
		Columns: []model.Column{
			{ID: 1, Key: "microphones", SortOrder: 0},
			{ID: 2, Key: "notes", SortOrder: 1},
		},
	})

	p.ApplyLocal(&protocol.Operation{
		Kind:    protocol.OpColumnCreate,
		TempID:  "tmp-c",
		Payload: &model.ColumnCreate{Key: "tempo", Label: "Tempo", Type: model.ColumnTypeText},
	})
	if got := p.Columns["tmp-c"].SortOrder; got != 2 {
		t.Errorf("provisional sort = %d, want 2", got)
	}
}

func TestCellUpdateBothPaths(t *testing.T) {
	p := NewProjection()

	p.ApplyLocal(&protocol.Operation{
		Kind: protocol.OpCellUpdate,
		Payload: &protocol.CellUpdate{
			SongID:   protocol.IDRaw(5),
			ColumnID: protocol.IDRaw(2),
			Value:    "verse only",
		},
	})
	if p.Cell(5, 2) != "verse only" {
		t.Fatalf("optimistic cell = %q", p.Cell(5, 2))
	}

	p.ApplyEvent(protocol.CellUpdated{Cell: model.Cell{SongID: 5, ColumnID: 2, Value: "verse only"}})
	if len(p.Cells) != 1 || p.Cell(5, 2) != "verse only" {
		t.Errorf("cells after confirm = %v", p.Cells)
	}
}

func TestNotificationSlotOverwritesAndClears(t *testing.T) {
	p := NewProjection()

	p.ApplyEvent(protocol.NotifyTriggered{EventID: "ev-1", Preset: model.NotificationPreset{Label: "Applause"}})
	p.ApplyEvent(protocol.NotifyTriggered{EventID: "ev-2", Preset: model.NotificationPreset{Label: "Solo"}})
	if p.Notification == nil || p.Notification.EventID != "ev-2" {
		t.Fatalf("slot = %+v", p.Notification)
	}

	p.ClearNotification()
	if p.Notification != nil {
		t.Error("slot not cleared")
	}
}

func TestShowChangedReplacesEverything(t *testing.T) {
	p := NewProjection()
	p.Load("old", model.FullState{Mics: []model.Mic{{ID: 1, Number: 1}}})
	p.ApplyLocal(&protocol.Operation{
		Kind: protocol.OpZoneCreate, TempID: "tmp-z", Payload: &model.ZoneCreate{},
	})

	state := model.NewFullState()
	state.Songs = []model.Song{{ID: 7, Title: "Intro"}}
	p.ApplyEvent(protocol.ShowChanged{Show: "new", State: state})

	if p.Show != "new" {
		t.Errorf("show = %q", p.Show)
	}
	if len(p.Mics) != 0 || len(p.Zones) != 0 {
		t.Error("stale records survived the show switch")
	}
	if p.Songs["7"].Title != "Intro" {
		t.Errorf("songs = %v", p.Songs)
	}
}

func TestOrderedViewsAreStable(t *testing.T) {
	p := NewProjection()
	p.Load("test", model.FullState{
		Columns: []model.Column{
			{ID: 2, Key: "b", SortOrder: 0},
			{ID: 1, Key: "a", SortOrder: 0},
			{ID: 3, Key: "c", SortOrder: 1},
		},
	})
	cols := p.ColumnsOrdered()
	if cols[0].Key != "a" || cols[1].Key != "b" || cols[2].Key != "c" {
		t.Errorf("order = %v", cols)
	}
}
