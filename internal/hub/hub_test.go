package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stageset/stageset/internal/protocol"
)

// dialPair upgrades a server-side connection and dials it, returning both
// ends.
func dialPair(t *testing.T) (server *websocket.Conn, client *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	accepted := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		accepted <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("no server connection")
	}
	return server, client
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

func TestBroadcastReachesEverySession(t *testing.T) {
	h := New()

	serverA, clientA := dialPair(t)
	serverB, clientB := dialPair(t)
	for _, conn := range []*websocket.Conn{serverA, serverB} {
		s := NewSession(conn)
		h.Register(s)
		go s.WritePump()
	}
	if h.Count() != 2 {
		t.Fatalf("Count = %d", h.Count())
	}

	h.Broadcast(protocol.SongDeleted{ID: 42})

	for _, c := range []*websocket.Conn{clientA, clientB} {
		ev, ok := readEvent(t, c).(protocol.SongDeleted)
		if !ok || ev.ID != 42 {
			t.Fatalf("received %+v", ev)
		}
	}
}

func TestDirectSendReachesOnlyOneSession(t *testing.T) {
	h := New()

	serverA, clientA := dialPair(t)
	serverB, clientB := dialPair(t)
	sessA := NewSession(serverA)
	sessB := NewSession(serverB)
	for _, s := range []*Session{sessA, sessB} {
		h.Register(s)
		go s.WritePump()
	}

	payload, err := protocol.EncodeEvent(protocol.ErrorReply{TempID: "tmp-1", Message: "number is required"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !sessA.Send(payload) {
		t.Fatal("Send reported failure")
	}

	if rej, ok := readEvent(t, clientA).(protocol.ErrorReply); !ok || rej.TempID != "tmp-1" {
		t.Fatalf("session A received %+v", rej)
	}

	// Session B must see nothing.
	_ = clientB.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := clientB.ReadMessage(); err == nil {
		t.Fatal("error reply leaked to another session")
	}
}

func TestStalledSessionIsDroppedWithoutBlockingOthers(t *testing.T) {
	h := New()

	serverA, clientA := dialPair(t)
	serverB, _ := dialPair(t)

	live := NewSession(serverA)
	h.Register(live)
	go live.WritePump()

	// No write pump: the stalled session's queue fills and overflows.
	stalled := NewSession(serverB)
	h.Register(stalled)

	for i := 0; i < sendQueueSize+1; i++ {
		h.Broadcast(protocol.MicDeleted{ID: int64(i)})
	}

	if h.Count() != 1 {
		t.Fatalf("Count after overflow = %d, want 1", h.Count())
	}
	// The live session received everything in order.
	for i := 0; i < sendQueueSize+1; i++ {
		ev, ok := readEvent(t, clientA).(protocol.MicDeleted)
		if !ok || ev.ID != int64(i) {
			t.Fatalf("message %d: got %+v", i, ev)
		}
	}
}

func TestDeregisterIsIdempotent(t *testing.T) {
	h := New()
	server, _ := dialPair(t)
	s := NewSession(server)
	h.Register(s)
	go s.WritePump()

	h.Deregister(s)
	h.Deregister(s)
	if h.Count() != 0 {
		t.Fatalf("Count = %d", h.Count())
	}
	if s.Send([]byte("x")) {
		t.Fatal("Send after close must fail")
	}
}
