package signal

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/yaseenlenceria/OmniConnect/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// ReconnectPolicy bounds the retry loop used when the signaling connection
// drops unexpectedly. The delay starts at Base and doubles per attempt up
// to Cap.
type ReconnectPolicy struct {
	Base        time.Duration
	Cap         time.Duration
	MaxAttempts uint64
}

// DefaultReconnectPolicy is used when the caller does not override it.
var DefaultReconnectPolicy = ReconnectPolicy{
	Base:        500 * time.Millisecond,
	Cap:         10 * time.Second,
	MaxAttempts: 8,
}

// Client manages the websocket connection to the coordinator.
type Client struct {
	conn      *websocket.Conn
	serverURL string
	policy    ReconnectPolicy
	incoming  chan *protocol.Envelope
	outgoing  chan *protocol.Envelope
	done      chan struct{}
	closed    bool
}

// NewClient creates a new signaling client.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		policy:    DefaultReconnectPolicy,
		incoming:  make(chan *protocol.Envelope, 32),
		outgoing:  make(chan *protocol.Envelope, 32),
		done:      make(chan struct{}),
	}
}

// SetReconnectPolicy overrides the retry bounds. Must be called before
// Connect.
func (c *Client) SetReconnectPolicy(p ReconnectPolicy) {
	c.policy = p
}

// Connect establishes the websocket connection, retrying with exponential
// backoff until it succeeds, the attempt bound is exhausted, or ctx is
// cancelled (the user stopped the session).
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.policy.Base
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = c.policy.Cap
	bo.MaxElapsedTime = 0

	attempt := 0
	dial := func() error {
		attempt++
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
		if err != nil {
			slog.Debug("signaling dial failed", "attempt", attempt, "err", err)
			return err
		}
		c.conn = conn
		return nil
	}

	err = backoff.Retry(dial, backoff.WithContext(backoff.WithMaxRetries(bo, c.policy.MaxAttempts), ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.serverURL, err)
	}

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()

	return nil
}

// readPump reads envelopes from the websocket connection.
func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		var env protocol.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return
		}

		c.incoming <- &env
	}
}

// writePump writes envelopes to the websocket connection and sends periodic
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Send queues an envelope for delivery to the coordinator.
func (c *Client) Send(env *protocol.Envelope) {
	select {
	case c.outgoing <- env:
	case <-c.done:
	}
}

// Incoming returns the channel of envelopes from the coordinator. It is
// closed when the connection drops.
func (c *Client) Incoming() <-chan *protocol.Envelope {
	return c.incoming
}

// Close shuts the connection down and releases resources. Safe to call once.
func (c *Client) Close() {
	if c.closed {
		return
	}
	c.closed = true

	close(c.done)
}
