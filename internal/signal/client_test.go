package signal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yaseenlenceria/OmniConnect/internal/protocol"
)

func TestConnectRetriesWithBoundedAttempts(t *testing.T) {
	var hits atomic.Int32
	// A server that never upgrades makes every dial fail.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient("ws" + strings.TrimPrefix(srv.URL, "http"))
	c.SetReconnectPolicy(ReconnectPolicy{
		Base:        time.Millisecond,
		Cap:         5 * time.Millisecond,
		MaxAttempts: 3,
	})

	if err := c.Connect(context.Background()); err == nil {
		t.Fatal("Connect() succeeded against a non-websocket server")
	}

	// Initial attempt plus MaxAttempts retries.
	if got := hits.Load(); got != 4 {
		t.Errorf("dial attempts = %d, want 4", got)
	}
}

func TestConnectCancelledByContext(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient("ws" + strings.TrimPrefix(srv.URL, "http"))
	c.SetReconnectPolicy(ReconnectPolicy{
		Base:        time.Hour, // never reached; cancellation must win
		Cap:         time.Hour,
		MaxAttempts: 100,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	if err := c.Connect(ctx); err == nil {
		t.Fatal("Connect() succeeded against a non-websocket server")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("cancellation took %v, retries were not cut short", elapsed)
	}
	if got := hits.Load(); got > 2 {
		t.Errorf("dial attempts = %d after cancellation, want at most 2", got)
	}
}

func TestConnectAndExchange(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		// Greet, then echo the first envelope back.
		conn.WriteJSON(&protocol.Envelope{Kind: protocol.KindConnected, ID: "p-1"})
		var env protocol.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		conn.WriteJSON(&env)
	}))
	defer srv.Close()

	c := NewClient("ws" + strings.TrimPrefix(srv.URL, "http"))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() = %v", err)
	}
	defer c.Close()

	env := mustReceive(t, c)
	if env.Kind != protocol.KindConnected || env.ID != "p-1" {
		t.Fatalf("greeting = %+v", env)
	}

	c.Send(&protocol.Envelope{Kind: protocol.KindFindPartner})
	env = mustReceive(t, c)
	if env.Kind != protocol.KindFindPartner {
		t.Fatalf("echo = %+v", env)
	}
}

func mustReceive(t *testing.T, c *Client) *protocol.Envelope {
	t.Helper()
	select {
	case env, ok := <-c.Incoming():
		if !ok {
			t.Fatal("incoming channel closed")
		}
		return env
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for envelope")
		return nil
	}
}
