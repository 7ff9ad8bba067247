package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// sendQueueSize bounds the per-session backlog before the session is
	// considered stalled and dropped.
	sendQueueSize = 64

	writeWait = 10 * time.Second
)

// Session is one connected client.  Writes are serialized through the
// send channel and a single write pump goroutine, as the websocket
// connection permits only one concurrent writer.
type Session struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// NewSession wraps an upgraded websocket connection.  The caller must
// register the session with the hub and start the write pump.
func NewSession(conn *websocket.Conn) *Session {
	return &Session{conn: conn, send: make(chan []byte, sendQueueSize)}
}

// Send queues a message for this session only.  Used for error replies,
// which are never broadcast.  Reports false when the session is stalled
// or already closed.
func (s *Session) Send(payload []byte) bool {
	return s.enqueue(payload)
}

// ReadMessage blocks for the next inbound message.
func (s *Session) ReadMessage() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	return data, err
}

// WritePump drains the send queue onto the connection.  It returns when
// the session is closed or a write fails; the caller is expected to
// deregister on return.
func (s *Session) WritePump() {
	for payload := range s.send {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	// Queue closed: say goodbye before dropping the connection.
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Session) enqueue(payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	// Non-blocking: a full queue marks the session as stalled.
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.send)
	s.mu.Unlock()
	_ = s.conn.Close()
}
