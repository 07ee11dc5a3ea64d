package negotiate

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	pion "github.com/pion/webrtc/v4"

	"github.com/yaseenlenceria/OmniConnect/internal/config"
)

// How long a "disconnected" peer connection may linger before it is treated
// the same as "failed". Short drops recover on their own; anything longer
// warrants a skip.
const disconnectGrace = 10 * time.Second

// NewPeerConnection builds a pion peer connection from the client config.
func NewPeerConnection(cfg *config.Client) (*pion.PeerConnection, error) {
	iceServers := []pion.ICEServer{{URLs: cfg.GetSTUNServers()}}

	turnServers := cfg.GetTURNServers()
	if turnServers != nil {
		username, password := cfg.GetTURNCredentials()
		iceServers = append(iceServers, pion.ICEServer{
			URLs:       turnServers,
			Username:   username,
			Credential: password,
		})
	}

	policy := pion.ICETransportPolicyAll
	if turnServers != nil && cfg.ForceRelay {
		policy = pion.ICETransportPolicyRelay
	}

	pc, err := pion.NewPeerConnection(pion.Configuration{
		ICEServers:         iceServers,
		ICETransportPolicy: policy,
	})
	if err != nil {
		return nil, NewError("create peer connection", err)
	}
	return pc, nil
}

// WireCandidates relays locally gathered ICE candidates the moment they are
// produced. Candidates are trickled one by one, never batched.
func WireCandidates(pc *pion.PeerConnection, send func(payload json.RawMessage)) {
	pc.OnICECandidate(func(c *pion.ICECandidate) {
		if c == nil {
			// Gathering finished.
			return
		}
		payload, err := json.Marshal(c.ToJSON())
		if err != nil {
			slog.Warn("failed to encode candidate", "err", err)
			return
		}
		send(payload)
	})
}

// WireConnectionState observes peer connectivity transitions. Failure, an
// explicit close, or a disconnection lasting longer than the grace period
// is terminal for this pairing: onFailed fires once and the caller is
// expected to skip rather than repair in place. onConnected fires on each
// transition into the connected state.
func WireConnectionState(pc *pion.PeerConnection, onConnected, onFailed func()) {
	var mu sync.Mutex
	var graceTimer *time.Timer
	failed := false

	fail := func() {
		mu.Lock()
		already := failed
		failed = true
		mu.Unlock()
		if !already {
			onFailed()
		}
	}

	pc.OnConnectionStateChange(func(state pion.PeerConnectionState) {
		slog.Debug("peer connection state", "state", state)

		mu.Lock()
		if graceTimer != nil {
			graceTimer.Stop()
			graceTimer = nil
		}
		mu.Unlock()

		switch state {
		case pion.PeerConnectionStateConnected:
			onConnected()

		case pion.PeerConnectionStateFailed, pion.PeerConnectionStateClosed:
			fail()

		case pion.PeerConnectionStateDisconnected:
			mu.Lock()
			graceTimer = time.AfterFunc(disconnectGrace, fail)
			mu.Unlock()
		}
	})
}
