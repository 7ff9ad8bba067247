package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stageset/stageset/internal/model"
	"github.com/stageset/stageset/internal/protocol"
)

func TestNewDerivesWebsocketURL(t *testing.T) {
	c, err := New("http://venue-pi:3000", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.wsURL != "ws://venue-pi:3000/ws" {
		t.Errorf("wsURL = %q", c.wsURL)
	}

	c, err = New("https://stage.example.com", "tok123")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.wsURL != "wss://stage.example.com/ws?token=tok123" {
		t.Errorf("wsURL = %q", c.wsURL)
	}

	if _, err := New("://bad", ""); err == nil {
		t.Error("expected parse error")
	}
}

func TestOfflineEditsApplyLocallyAndQueueFIFO(t *testing.T) {
	c, err := New("http://127.0.0.1:3000", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// No connection: edits queue but still show up in the projection.
	tmp, err := c.CreateSong(model.SongCreate{Title: strptr("Opener")})
	if err != nil {
		t.Fatalf("CreateSong: %v", err)
	}
	if err := c.UpdateCell(1, 2, "full band"); err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}

	c.Projection(func(p *Projection) {
		if p.Songs[tmp].Title != "Opener" {
			t.Errorf("provisional song = %+v", p.Songs[tmp])
		}
		if p.Cell(1, 2) != "full band" {
			t.Errorf("cell = %q", p.Cell(1, 2))
		}
	})

	if len(c.pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(c.pending))
	}
	// FIFO: the create must flush before the cell update.
	first, err := protocol.DecodeOperation(c.pending[0])
	if err != nil {
		t.Fatalf("decode queued op: %v", err)
	}
	if first.Kind != protocol.OpSongCreate || first.TempID != tmp {
		t.Errorf("first queued = %+v", first)
	}
	second, err := protocol.DecodeOperation(c.pending[1])
	if err != nil {
		t.Fatalf("decode queued op: %v", err)
	}
	if second.Kind != protocol.OpCellUpdate {
		t.Errorf("second queued = %+v", second)
	}
}

func TestStatusStartsDisconnected(t *testing.T) {
	c, err := New("http://127.0.0.1:3000", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Status(); got != StatusDisconnected {
		t.Errorf("Status = %q", got)
	}
}

func TestNextBackoffDoublesToCap(t *testing.T) {
	d := backoffBase
	for _, want := range []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
	} {
		if d = nextBackoff(d); d != want {
			t.Fatalf("nextBackoff = %v, want %v", d, want)
		}
	}
}

// planServer is a minimal counterpart for client tests: it serves the empty
// snapshot, counts fetches, and hands every accepted websocket plus each
// decoded operation to the test.
type planServer struct {
	srv       *httptest.Server
	stateHits atomic.Int32
	conns     chan *websocket.Conn
	ops       chan *protocol.Operation
}

func newPlanServer(t *testing.T) *planServer {
	t.Helper()
	ps := &planServer{
		conns: make(chan *websocket.Conn, 4),
		ops:   make(chan *protocol.Operation, 16),
	}
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/plan/state", func(w http.ResponseWriter, r *http.Request) {
		ps.stateHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			model.FullState
			CurrentShow string `json:"currentShow"`
		}{model.NewFullState(), "test"})
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ps.conns <- conn
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			op, err := protocol.DecodeOperation(data)
			if err != nil {
				t.Errorf("decode operation: %v", err)
				return
			}
			ps.ops <- op
		}
	})
	ps.srv = httptest.NewServer(mux)
	t.Cleanup(ps.srv.Close)
	return ps
}

func (ps *planServer) awaitConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-ps.conns:
		return conn
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a websocket connection")
		return nil
	}
}

func (ps *planServer) awaitOp(t *testing.T) *protocol.Operation {
	t.Helper()
	select {
	case op := <-ps.ops:
		return op
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for an operation")
		return nil
	}
}

func awaitStatus(t *testing.T, ch <-chan Status, want Status) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %q", want)
		}
	}
}

func TestReconnectRefetchesThenFlushesQueueInOrder(t *testing.T) {
	ps := newPlanServer(t)

	c, err := New(ps.srv.URL, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	statuses := make(chan Status, 16)
	c.OnStatus = func(s Status) { statuses <- s }

	// Two edits before the first connect: they must flush FIFO.
	tmp, err := c.CreateSong(model.SongCreate{Title: strptr("Opener")})
	if err != nil {
		t.Fatalf("CreateSong: %v", err)
	}
	if err := c.UpdateCell(1, 2, "full band"); err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx)
	}()

	awaitStatus(t, statuses, StatusConnected)
	// Submitted from another goroutine right as the queue flushes; it must
	// land after both queued edits, on a single serialized writer.
	tmpMic, err := c.CreateMic(model.MicCreate{Number: 7})
	if err != nil {
		t.Fatalf("CreateMic: %v", err)
	}

	first := ps.awaitOp(t)
	if first.Kind != protocol.OpSongCreate || first.TempID != tmp {
		t.Fatalf("first op = %+v", first)
	}
	if second := ps.awaitOp(t); second.Kind != protocol.OpCellUpdate {
		t.Fatalf("second op = %+v", second)
	}
	if third := ps.awaitOp(t); third.Kind != protocol.OpMicCreate || third.TempID != tmpMic {
		t.Fatalf("third op = %+v", third)
	}
	if got := ps.stateHits.Load(); got != 1 {
		t.Fatalf("state fetches = %d, want 1", got)
	}

	// Drop the connection server-side: the client must queue while offline,
	// refetch the snapshot on reconnect, then flush the queue.
	ps.awaitConn(t).Close()
	awaitStatus(t, statuses, StatusDisconnected)
	if err := c.UpdateSong(4, model.SongPatch{Title: strptr("Encore")}); err != nil {
		t.Fatalf("UpdateSong: %v", err)
	}

	awaitStatus(t, statuses, StatusConnected)
	if op := ps.awaitOp(t); op.Kind != protocol.OpSongUpdate {
		t.Fatalf("replayed op = %+v", op)
	}
	if got := ps.stateHits.Load(); got != 2 {
		t.Fatalf("state fetches = %d, want 2", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
