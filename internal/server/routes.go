package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/yaseenlenceria/OmniConnect/internal/coordinator"
	"github.com/yaseenlenceria/OmniConnect/internal/metrics"
)

// Configure the websocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,

	// Participants are anonymous; any origin may connect. Lock this down to
	// the frontend's domain when deploying behind a fixed origin.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewRouter builds the HTTP surface: the websocket endpoint, liveness,
// a read-only stats snapshot and the metrics endpoint.
func NewRouter(hub *coordinator.Hub, collector metrics.Collector) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/ws", serveWs(hub))
	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/stats", handleStats(hub)).Methods(http.MethodGet)
	router.Handle("/metrics", collector.Handler()).Methods(http.MethodGet)
	return router
}

// serveWs returns an http.HandlerFunc that upgrades the connection, hands it
// to the hub and starts the read/write pumps.
func serveWs(hub *coordinator.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("failed to upgrade connection", "remote", r.RemoteAddr, "err", err)
			return
		}

		client := coordinator.NewClient(hub, conn)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleStats reports current participant, queue and pair counts. Read-only,
// no side effects.
func handleStats(hub *coordinator.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(hub.Stats()); err != nil {
			slog.Error("failed to encode stats", "err", err)
		}
	}
}
