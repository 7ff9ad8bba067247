package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stageset/stageset/internal/model"
)

func TestEncodeEventWireShape(t *testing.T) {
	data, err := EncodeEvent(MicCreated{
		Mic:    model.Mic{ID: 9, Number: 1, Name: "Vox", X: 100, Y: 200},
		TempID: "tmp-abc",
	})
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	var w map[string]any
	if err := json.Unmarshal(data, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w["scope"] != "plan" || w["type"] != EvMicCreated || w["tempId"] != "tmp-abc" {
		t.Errorf("envelope = %v", w)
	}
	rec := w["data"].(map[string]any)
	if rec["id"] != float64(9) || rec["name"] != "Vox" {
		t.Errorf("data = %v", rec)
	}
}

func TestEventRoundTrips(t *testing.T) {
	events := []Event{
		MicCreated{Mic: model.Mic{ID: 1, Number: 2, Name: "SM58"}, TempID: "tmp-1"},
		ZoneUpdated{Zone: model.Zone{ID: 3, Name: "Brass", Color: "#112233", Width: 200, Height: 150}},
		ColumnDeleted{ID: 4},
		SongsReordered{Order: []int64{3, 1, 2}},
		CellUpdated{Cell: model.Cell{SongID: 1, ColumnID: 2, Value: "[5]"}},
		PresetCreated{Preset: model.NotificationPreset{ID: 6, Label: "Applause", Emoji: "👏"}},
		NotifyTriggered{EventID: "ev-1", Timestamp: 1700000000000, Preset: model.NotificationPreset{ID: 6, Label: "Applause"}},
		ShowChanged{Show: "friday", State: model.NewFullState()},
		ErrorReply{TempID: "tmp-1", Message: "number is required"},
	}
	for _, e := range events {
		data, err := EncodeEvent(e)
		if err != nil {
			t.Fatalf("encode %s: %v", e.EventType(), err)
		}
		back, err := DecodeEvent(data)
		if err != nil {
			t.Fatalf("decode %s: %v", e.EventType(), err)
		}
		if back.EventType() != e.EventType() {
			t.Errorf("round trip changed type: %s -> %s", e.EventType(), back.EventType())
		}
	}
}

func TestDecodeEventFields(t *testing.T) {
	raw := `{"scope":"plan","type":"notification:triggered","eventId":"ev-9","timestamp":123,"notification":{"id":2,"label":"Solo","emoji":"🎸","color":"#FF0000","sort_order":0}}`
	ev, err := DecodeEvent([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	trig, ok := ev.(NotifyTriggered)
	if !ok {
		t.Fatalf("event type %T", ev)
	}
	if trig.EventID != "ev-9" || trig.Timestamp != 123 || trig.Preset.Label != "Solo" {
		t.Errorf("event = %+v", trig)
	}
}

func TestDecodeEventRejectsForeignScope(t *testing.T) {
	if _, err := DecodeEvent([]byte(`{"scope":"chat","type":"mic:created"}`)); err == nil {
		t.Fatal("expected scope error")
	}
}
