package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/stageset/stageset/internal/model"
	"github.com/stageset/stageset/internal/protocol"
)

// Status is the transport state of the client.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Reconnect backoff: double from the base on every failed attempt, cap,
// reset on a successful connect.
const (
	backoffBase = time.Second
	backoffMax  = 10 * time.Second
)

// Client keeps a Projection converged with a plan server.  Local edits
// apply to the projection immediately and are sent (or queued while
// disconnected, FIFO) to the server; confirmed broadcasts reconcile the
// projection, including re-keying provisional creates.
//
// Callbacks run on the read loop goroutine; set them before Run.
type Client struct {
	baseURL string
	wsURL   string
	token   string
	http    *http.Client

	// OnEvent fires after each confirmed broadcast has been applied.
	OnEvent func(protocol.Event)
	// OnError fires for server rejections.  Rejected optimistic edits are
	// not rolled back automatically; the next snapshot refetch squares
	// things away, or the user retries.
	OnError func(tempID, message string)
	// OnStatus fires on every transport state change.
	OnStatus func(Status)

	mu      sync.Mutex
	proj    *Projection
	conn    *websocket.Conn
	status  Status
	pending [][]byte
}

// New builds a client for a server base URL such as "http://venue-pi:3000".
// The token is optional; when set it is presented both on HTTP requests
// and on the websocket upgrade.
func New(baseURL, token string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	wsScheme := "ws"
	if u.Scheme == "https" {
		wsScheme = "wss"
	}
	wsURL := url.URL{Scheme: wsScheme, Host: u.Host, Path: "/ws"}
	if token != "" {
		wsURL.RawQuery = url.Values{"token": {token}}.Encode()
	}
	return &Client{
		baseURL: baseURL,
		wsURL:   wsURL.String(),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
		proj:    NewProjection(),
		status:  StatusDisconnected,
	}, nil
}

// Projection gives the caller read access to the local document under the
// client's lock.  The projection must not be retained outside fn.
func (c *Client) Projection(fn func(*Projection)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.proj)
}

// Status returns the current transport state.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Run connects and keeps reconnecting until ctx is cancelled.  Each
// successful connect refetches the full snapshot before flushing the
// queue of operations accumulated while offline.
func (c *Client) Run(ctx context.Context) error {
	delay := backoffBase
	for {
		c.setStatus(StatusConnecting)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL, nil)
		if err == nil {
			delay = backoffBase
			if err := c.connected(ctx, conn); err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
		}
		c.setStatus(StatusDisconnected)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = nextBackoff(delay)
	}
}

// nextBackoff doubles the reconnect delay up to the cap.
func nextBackoff(d time.Duration) time.Duration {
	if d *= 2; d > backoffMax {
		d = backoffMax
	}
	return d
}

// connected runs one connection's lifetime: snapshot, queue flush, then
// the read loop until the connection drops.
func (c *Client) connected(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	// The read loop only exits on a read error; closing the connection on
	// cancellation is what unblocks it.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	// Refetch before announcing connected: the queue must flush against
	// a projection already rebuilt from the canonical state.
	if err := c.refetch(ctx); err != nil {
		return err
	}

	// Flush and publish under one critical section: a submit racing the
	// flush either lands in pending before it is drained or blocks until
	// the connection is visible, so nothing overtakes the queue and the
	// connection never sees two writers.
	c.mu.Lock()
	for _, payload := range c.pending {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.pending = nil
	c.conn = conn
	c.mu.Unlock()
	c.setStatus(StatusConnected)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.conn = nil
			c.mu.Unlock()
			return err
		}
		if protocol.MessageScope(data) != protocol.ScopePlan {
			continue
		}
		c.dispatch(data)
	}
}

// dispatch reconciles one inbound message.
func (c *Client) dispatch(data []byte) {
	ev, err := protocol.DecodeEvent(data)
	if err != nil {
		return
	}
	if rej, ok := ev.(protocol.ErrorReply); ok {
		if c.OnError != nil {
			c.OnError(rej.TempID, rej.Message)
		}
		return
	}
	c.mu.Lock()
	c.proj.ApplyEvent(ev)
	c.mu.Unlock()
	if c.OnEvent != nil {
		c.OnEvent(ev)
	}
}

// refetch loads the full snapshot over HTTP and rebuilds the projection.
// A 400 means no show is selected yet; the projection is cleared and the
// client waits for a show:changed broadcast.
func (c *Client) refetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/plan/state", nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if resp.StatusCode == http.StatusBadRequest {
		c.proj.Load("", model.NewFullState())
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("state fetch: unexpected status %d", resp.StatusCode)
	}
	var body struct {
		model.FullState
		CurrentShow string `json:"currentShow"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	c.proj.Load(body.CurrentShow, body.FullState)
	return nil
}

func (c *Client) setStatus(s Status) {
	c.mu.Lock()
	changed := c.status != s
	c.status = s
	c.mu.Unlock()
	if changed && c.OnStatus != nil {
		c.OnStatus(s)
	}
}

// submit applies the operation optimistically and sends it, queueing when
// offline.  Submission order is preserved: the queue flushes FIFO on the
// next connect.
func (c *Client) submit(op *protocol.Operation) error {
	payload, err := protocol.EncodeOperation(op)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.proj.ApplyLocal(op)
	conn := c.conn
	if conn == nil {
		c.pending = append(c.pending, payload)
		c.mu.Unlock()
		return nil
	}
	// Hold the lock while writing: the websocket allows one writer, and
	// interleaving here would also break per-session ordering.
	err = conn.WriteMessage(websocket.TextMessage, payload)
	c.mu.Unlock()
	return err
}

func tempID() string {
	return "tmp-" + uuid.NewString()
}

// CreateMic sends an optimistic mic create and returns the correlation
// token the provisional record is keyed by.
func (c *Client) CreateMic(payload model.MicCreate) (string, error) {
	t := tempID()
	return t, c.submit(&protocol.Operation{Kind: protocol.OpMicCreate, TempID: t, Payload: &payload})
}

// UpdateMic patches a confirmed mic by server id.
func (c *Client) UpdateMic(id int64, patch model.MicPatch) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpMicUpdate, ID: protocol.IDRaw(id), Payload: &patch})
}

// DeleteMic removes a mic.
func (c *Client) DeleteMic(id int64) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpMicDelete, ID: protocol.IDRaw(id)})
}

// CreateElement sends an optimistic stage element create.
func (c *Client) CreateElement(payload model.ElementCreate) (string, error) {
	t := tempID()
	return t, c.submit(&protocol.Operation{Kind: protocol.OpElementCreate, TempID: t, Payload: &payload})
}

func (c *Client) UpdateElement(id int64, patch model.ElementPatch) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpElementUpdate, ID: protocol.IDRaw(id), Payload: &patch})
}

func (c *Client) DeleteElement(id int64) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpElementDelete, ID: protocol.IDRaw(id)})
}

// CreateZone sends an optimistic zone create.
func (c *Client) CreateZone(payload model.ZoneCreate) (string, error) {
	t := tempID()
	return t, c.submit(&protocol.Operation{Kind: protocol.OpZoneCreate, TempID: t, Payload: &payload})
}

func (c *Client) UpdateZone(id int64, patch model.ZonePatch) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpZoneUpdate, ID: protocol.IDRaw(id), Payload: &patch})
}

func (c *Client) DeleteZone(id int64) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpZoneDelete, ID: protocol.IDRaw(id)})
}

// CreateColumn sends an optimistic setlist column create.
func (c *Client) CreateColumn(payload model.ColumnCreate) (string, error) {
	t := tempID()
	return t, c.submit(&protocol.Operation{Kind: protocol.OpColumnCreate, TempID: t, Payload: &payload})
}

func (c *Client) UpdateColumn(id int64, patch model.ColumnPatch) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpColumnUpdate, ID: protocol.IDRaw(id), Payload: &patch})
}

func (c *Client) DeleteColumn(id int64) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpColumnDelete, ID: protocol.IDRaw(id)})
}

// ReorderColumns reorders the setlist columns to the given id order.
func (c *Client) ReorderColumns(order []int64) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpColumnsReorder, Order: order})
}

// CreateSong sends an optimistic song create.
func (c *Client) CreateSong(payload model.SongCreate) (string, error) {
	t := tempID()
	return t, c.submit(&protocol.Operation{Kind: protocol.OpSongCreate, TempID: t, Payload: &payload})
}

func (c *Client) UpdateSong(id int64, patch model.SongPatch) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpSongUpdate, ID: protocol.IDRaw(id), Payload: &patch})
}

func (c *Client) DeleteSong(id int64) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpSongDelete, ID: protocol.IDRaw(id)})
}

// ReorderSongs reorders the setlist to the given id order.
func (c *Client) ReorderSongs(order []int64) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpSongsReorder, Order: order})
}

// UpdateCell upserts one (song, column) cell value.
func (c *Client) UpdateCell(songID, columnID int64, value string) error {
	return c.submit(&protocol.Operation{
		Kind: protocol.OpCellUpdate,
		Payload: &protocol.CellUpdate{
			SongID:   protocol.IDRaw(songID),
			ColumnID: protocol.IDRaw(columnID),
			Value:    value,
		},
	})
}

// CreatePreset adds a notification preset.  Presets are confirmed without
// a correlation token, so there is no provisional record to re-key.
func (c *Client) CreatePreset(input model.NotificationPresetInput) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpPresetCreate, Payload: &input})
}

func (c *Client) UpdatePreset(id int64, input model.NotificationPresetInput) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpPresetUpdate, ID: protocol.IDRaw(id), Payload: &input})
}

func (c *Client) DeletePreset(id int64) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpPresetDelete, ID: protocol.IDRaw(id)})
}

// TriggerNotification fires a preset at every connected client.
func (c *Client) TriggerNotification(presetID int64) error {
	return c.submit(&protocol.Operation{Kind: protocol.OpNotifyTrigger, ID: protocol.IDRaw(presetID)})
}
