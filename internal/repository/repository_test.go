package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stageset/stageset/internal/database"
	"github.com/stageset/stageset/internal/model"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	s, err := database.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.Create("test"); err != nil {
		t.Fatalf("Create show: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMicCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMicRepo(newTestStore(t))

	m := model.MicCreate{Number: 1}.Defaulted()
	if err := repo.Create(ctx, &m); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("Create did not assign an id")
	}
	if m.X != model.DefaultItemX || m.Y != model.DefaultItemY {
		t.Errorf("defaults not applied: x=%v y=%v", m.X, m.Y)
	}

	got, err := repo.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if *got != m {
		t.Errorf("GetByID = %+v, want %+v", *got, m)
	}

	name := "Lead Vox"
	x := 120.5
	got.Apply(model.MicPatch{Name: &name, X: &x})
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, err := repo.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if again.Name != "Lead Vox" || again.X != 120.5 || again.Number != 1 {
		t.Errorf("patch merge wrong: %+v", again)
	}

	if err := repo.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, m.ID); !errors.Is(err, ErrMicNotFound) {
		t.Fatalf("GetByID after delete: %v", err)
	}
	// Deleting again is a no-op, matching the idempotent confirm path.
	if err := repo.Delete(ctx, m.ID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestColumnSortAssignmentAndDefaultGuard(t *testing.T) {
	ctx := context.Background()
	repo := NewColumnRepo(newTestStore(t))

	cols, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(cols) != 3 {
		t.Fatalf("seeded columns = %d, want 3", len(cols))
	}
	for i, c := range cols {
		if c.SortOrder != i || !c.IsDefault {
			t.Errorf("seed column %d = %+v", i, c)
		}
	}

	added := model.Column{Key: "tempo", Label: "Tempo", Type: model.ColumnTypeText}
	if err := repo.Create(ctx, &added); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if added.SortOrder != 3 {
		t.Errorf("new column sort = %d, want 3", added.SortOrder)
	}
	if added.IsDefault {
		t.Error("user column must not be default")
	}

	if err := repo.Delete(ctx, cols[0].ID); !errors.Is(err, ErrDefaultColumn) {
		t.Fatalf("Delete default column: %v", err)
	}
	if err := repo.Delete(ctx, added.ID); err != nil {
		t.Fatalf("Delete user column: %v", err)
	}
}

func TestReorderRenumbersDense(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := NewSongRepo(store)

	var ids []int64
	for _, title := range []string{"Opener", "Ballad", "Closer"} {
		s := model.Song{Title: title}
		if err := repo.Create(ctx, &s); err != nil {
			t.Fatalf("Create %q: %v", title, err)
		}
		ids = append(ids, s.ID)
	}

	// Reverse the setlist.
	if err := repo.Reorder(ctx, []int64{ids[2], ids[1], ids[0]}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	songs, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if songs[0].Title != "Closer" || songs[2].Title != "Opener" {
		t.Errorf("order after reorder: %v", songs)
	}
	for i, s := range songs {
		if s.SortOrder != i {
			t.Errorf("song %q sort = %d, want %d", s.Title, s.SortOrder, i)
		}
	}
}

func TestCellUpsertAndCascade(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	songs := NewSongRepo(store)
	columns := NewColumnRepo(store)
	cells := NewCellRepo(store)

	song := model.Song{Title: "Encore"}
	if err := songs.Create(ctx, &song); err != nil {
		t.Fatalf("Create song: %v", err)
	}
	cols, err := columns.All(ctx)
	if err != nil {
		t.Fatalf("All columns: %v", err)
	}

	cell := model.Cell{SongID: song.ID, ColumnID: cols[0].ID, Value: "[1,2]"}
	if err := cells.Upsert(ctx, cell); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	cell.Value = "[3]"
	if err := cells.Upsert(ctx, cell); err != nil {
		t.Fatalf("Upsert overwrite: %v", err)
	}
	all, err := cells.All(ctx)
	if err != nil {
		t.Fatalf("All cells: %v", err)
	}
	if len(all) != 1 || all[0].Value != "[3]" {
		t.Fatalf("cells after overwrite = %v", all)
	}

	// Unknown parents are rejected by the foreign keys.
	if err := cells.Upsert(ctx, model.Cell{SongID: 999, ColumnID: cols[0].ID, Value: "x"}); err == nil {
		t.Fatal("Upsert with unknown song must fail")
	}

	// Deleting the song cascades its cells away.
	if err := songs.Delete(ctx, song.ID); err != nil {
		t.Fatalf("Delete song: %v", err)
	}
	all, err = cells.All(ctx)
	if err != nil {
		t.Fatalf("All cells after cascade: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("cells after song delete = %v", all)
	}
}

func TestPresetLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewPresetRepo(newTestStore(t))

	first := model.NotificationPreset{Label: "Applause", Emoji: "👏", Color: model.DefaultColor}
	second := model.NotificationPreset{Label: "Solo", Emoji: "🎸", Color: "#FF0000"}
	for _, p := range []*model.NotificationPreset{&first, &second} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create %q: %v", p.Label, err)
		}
	}
	if first.SortOrder != 0 || second.SortOrder != 1 {
		t.Errorf("sort assignment: %d, %d", first.SortOrder, second.SortOrder)
	}

	second.Label = "Guitar solo"
	if err := repo.Update(ctx, &second); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.GetByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Label != "Guitar solo" {
		t.Errorf("label = %q", got.Label)
	}

	if err := repo.Delete(ctx, 12345); !errors.Is(err, ErrPresetNotFound) {
		t.Fatalf("Delete missing preset: %v", err)
	}
	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestRepoWithoutShowSelected(t *testing.T) {
	s, err := database.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if _, err := NewZoneRepo(s).All(context.Background()); !errors.Is(err, database.ErrNoShow) {
		t.Fatalf("All without show: %v", err)
	}
}
