package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/stageset/stageset/internal/hub"
	"github.com/stageset/stageset/internal/processor"
	"github.com/stageset/stageset/internal/protocol"
)

// upgrader accepts any origin: the editor is served to browsers across the
// venue LAN, not from the server's own host.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WSHandler owns the websocket side of the plan protocol: it upgrades
// connections, feeds decoded operations into the processor and answers
// failures with error envelopes addressed to the sender alone.
type WSHandler struct {
	hub  *hub.Hub
	proc *processor.Processor
}

// NewWSHandler builds a WSHandler around the broadcast hub and the
// mutation processor.
func NewWSHandler(h *hub.Hub, proc *processor.Processor) *WSHandler {
	return &WSHandler{hub: h, proc: proc}
}

// Serve upgrades the request and runs the session's read loop until the
// client disconnects.  Confirmations reach the sender through the hub
// broadcast like every other client; only errors are answered directly.
func (h *WSHandler) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return nil
	}

	s := hub.NewSession(conn)
	h.hub.Register(s)
	go s.WritePump()
	defer h.hub.Deregister(s)

	ctx := c.Request().Context()
	for {
		data, err := s.ReadMessage()
		if err != nil {
			return nil
		}
		// Foreign scopes share the socket but are not ours to answer.
		if protocol.MessageScope(data) != protocol.ScopePlan {
			continue
		}
		op, err := protocol.DecodeOperation(data)
		if err != nil {
			h.replyError(s, protocol.MessageTempID(data), err)
			continue
		}
		if err := h.proc.Process(ctx, op); err != nil {
			h.replyError(s, op.TempID, err)
		}
	}
}

// replyError sends an error envelope to the originating session.  The
// message text is the operation's rejection reason, safe to show to the
// user.
func (h *WSHandler) replyError(s *hub.Session, tempID string, cause error) {
	log.Printf("ws: operation rejected: %v", cause)
	payload, err := protocol.EncodeEvent(protocol.ErrorReply{TempID: tempID, Message: cause.Error()})
	if err != nil {
		log.Printf("ws: encode error reply: %v", err)
		return
	}
	s.Send(payload)
}
