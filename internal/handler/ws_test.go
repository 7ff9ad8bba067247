package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/stageset/stageset/internal/database"
	"github.com/stageset/stageset/internal/hub"
	"github.com/stageset/stageset/internal/processor"
	"github.com/stageset/stageset/internal/protocol"
)

// newTestServer stands up the full server-side pipeline: store, hub,
// processor and the websocket handler behind a real HTTP server.
func newTestServer(t *testing.T) (*httptest.Server, *processor.Processor) {
	t.Helper()
	store, err := database.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := hub.New()
	proc := processor.New(store, h, nil)
	if err := proc.CreateShow(context.Background(), "test"); err != nil {
		t.Fatalf("CreateShow: %v", err)
	}

	e := echo.New()
	e.GET("/ws", NewWSHandler(h, proc).Serve)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, proc
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) protocol.Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	ev, err := protocol.DecodeEvent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return ev
}

func TestOperationBroadcastIncludesOriginator(t *testing.T) {
	srv, _ := newTestServer(t)
	origin := dialWS(t, srv)
	other := dialWS(t, srv)

	msg := `{"scope":"plan","type":"mic:create","tempId":"tmp-ws","data":{"number":5,"name":"Cello"}}`
	if err := origin.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Both sessions receive the confirmed event; only the originator's
	// envelope matters for re-keying but the token goes out to everyone.
	for _, conn := range []*websocket.Conn{origin, other} {
		raw := readEvent(t, conn)
		ev, ok := raw.(protocol.MicCreated)
		if !ok {
			t.Fatalf("event %T", raw)
		}
		if ev.Mic.ID == 0 || ev.Mic.Name != "Cello" || ev.TempID != "tmp-ws" {
			t.Errorf("event = %+v", ev)
		}
	}
}

func TestRejectionGoesOnlyToOriginator(t *testing.T) {
	srv, _ := newTestServer(t)
	origin := dialWS(t, srv)
	other := dialWS(t, srv)

	msg := `{"scope":"plan","type":"mic:create","tempId":"tmp-bad","data":{}}`
	if err := origin.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw := readEvent(t, origin)
	rej, ok := raw.(protocol.ErrorReply)
	if !ok {
		t.Fatalf("event %T", raw)
	}
	if rej.TempID != "tmp-bad" || !strings.Contains(rej.Message, "number is required") {
		t.Errorf("reply = %+v", rej)
	}

	_ = other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Fatal("error reply leaked to another session")
	}
}

func TestUnknownKindAnswersWithTempID(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dialWS(t, srv)

	msg := `{"scope":"plan","type":"mic:explode","tempId":"tmp-x"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw := readEvent(t, conn)
	rej, ok := raw.(protocol.ErrorReply)
	if !ok {
		t.Fatalf("event %T", raw)
	}
	if rej.TempID != "tmp-x" || !strings.Contains(rej.Message, "unknown type") {
		t.Errorf("reply = %+v", rej)
	}
}

func TestForeignScopeIsIgnored(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dialWS(t, srv)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"scope":"chat","type":"hello"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("foreign-scope message must not be answered")
	}
}

func TestShowSwitchBroadcastsSnapshotOverSocket(t *testing.T) {
	srv, proc := newTestServer(t)
	conn := dialWS(t, srv)

	if err := proc.CreateShow(context.Background(), "encore"); err != nil {
		t.Fatalf("CreateShow: %v", err)
	}
	raw := readEvent(t, conn)
	changed, ok := raw.(protocol.ShowChanged)
	if !ok {
		t.Fatalf("event %T", raw)
	}
	if changed.Show != "encore" || changed.State.Columns == nil {
		t.Errorf("event = %+v", changed)
	}
}
