package coordinator

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yaseenlenceria/OmniConnect/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; generous enough for SDP blobs.
	maxMessageSize = 64 * 1024

	// Outbound buffer per participant. When it fills, further sends to that
	// participant are dropped rather than stalling the hub.
	sendBufferSize = 256
)

// Client wraps a single participant's websocket connection. The hub owns all
// session state; the Client only moves envelopes between the wire and the
// hub's channels.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// id is assigned by the hub at registration and never reused.
	id string

	// send buffers outbound envelopes for the write pump. Closed by the hub
	// when the participant is unregistered.
	send chan *protocol.Envelope
}

// NewClient wraps an upgraded websocket connection. The caller must register
// the client with the hub and start both pumps.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan *protocol.Envelope, sendBufferSize),
	}
}

// ReadPump pumps envelopes from the websocket connection into the hub.
//
// The application runs ReadPump in a per-connection goroutine; all reads on
// the connection happen here. When the connection drops for any reason the
// pump unregisters the client exactly once on the way out.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stop:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read failed", "participant", c.id, "err", err)
			}
			break
		}

		// A frame that does not parse costs only itself; the connection
		// stays open.
		var env protocol.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			slog.Warn("malformed message dropped", "participant", c.id, "err", err)
			continue
		}

		select {
		case c.hub.inbound <- inboundMessage{client: c, env: &env}:
		case <-c.hub.stop:
			return
		}
	}
}

// WritePump pumps envelopes from the hub to the websocket connection and
// keeps the connection alive with periodic pings. All writes happen here.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel: participant unregistered.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(env); err != nil {
				slog.Debug("websocket write failed", "participant", c.id, "err", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
