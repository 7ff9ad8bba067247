// Package hub maintains the set of live plan sessions and fans confirmed
// events out to all of them, the originator included.  The originator
// relies on the broadcast echo, not a direct reply, to confirm its own
// optimistic edit; that keeps one reconciliation path on the client for
// "my edit" and "someone else's edit".
package hub

import (
	"log"
	"sync"

	"github.com/stageset/stageset/internal/protocol"
)

// Hub owns the session registry.  Its lifecycle is scoped to the process:
// main constructs one Hub and hands it to the websocket handler and the
// mutation processor.
type Hub struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{sessions: make(map[*Session]struct{})}
}

// Register adds a session to the registry.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	n := len(h.sessions)
	h.mu.Unlock()
	log.Printf("hub: client connected, total=%d", n)
}

// Deregister removes a session and releases its send queue.  Safe to call
// more than once.
func (h *Hub) Deregister(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s]
	if ok {
		delete(h.sessions, s)
	}
	n := len(h.sessions)
	h.mu.Unlock()
	if ok {
		s.close()
		log.Printf("hub: client disconnected, total=%d", n)
	}
}

// Broadcast encodes the event once and delivers it to every registered
// session.  Delivery is fire-and-forget: a session whose send queue is
// full is dropped so one stalled client never blocks the others.
func (h *Hub) Broadcast(e protocol.Event) {
	payload, err := protocol.EncodeEvent(e)
	if err != nil {
		log.Printf("hub: encode %s event: %v", e.EventType(), err)
		return
	}

	h.mu.Lock()
	var stalled []*Session
	for s := range h.sessions {
		if !s.enqueue(payload) {
			stalled = append(stalled, s)
		}
	}
	h.mu.Unlock()

	for _, s := range stalled {
		log.Printf("hub: dropping stalled client")
		h.Deregister(s)
	}
}

// Count reports the number of registered sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
