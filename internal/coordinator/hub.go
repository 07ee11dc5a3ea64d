package coordinator

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/yaseenlenceria/OmniConnect/internal/metrics"
	"github.com/yaseenlenceria/OmniConnect/internal/protocol"
)

// participant is the registry record for one connected client: its transport
// wrapper plus its position in the session lifecycle.
type participant struct {
	client *Client
	state  State
}

// inboundMessage couples an envelope with the client it arrived from.
type inboundMessage struct {
	client *Client
	env    *protocol.Envelope
}

// Stats is a read-only snapshot of the coordinator's counters.
type Stats struct {
	Participants int `json:"participants"`
	Waiting      int `json:"waiting"`
	Pairs        int `json:"pairs"`
}

// Hub is the session coordinator. It owns the participant registry, the
// waiting queue and the pair table, and it is the only goroutine that ever
// mutates them: every lifecycle event and every relay message is funneled
// through its channels and processed to completion before the next one.
type Hub struct {
	// Register requests from newly upgraded connections.
	register chan *Client

	// Unregister requests from closing connections.
	unregister chan *Client

	// Inbound envelopes from participant read pumps.
	inbound chan inboundMessage

	// Snapshot requests from the stats endpoint.
	statsReq chan chan Stats

	stop chan struct{}

	participants map[string]*participant
	queue        *waitQueue
	pairs        *pairTable

	collector metrics.Collector
}

// NewHub creates a new Hub. Pass metrics.NopCollector{} to disable metrics.
func NewHub(collector metrics.Collector) *Hub {
	return &Hub{
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		inbound:      make(chan inboundMessage),
		statsReq:     make(chan chan Stats),
		stop:         make(chan struct{}),
		participants: make(map[string]*participant),
		queue:        newWaitQueue(),
		pairs:        newPairTable(),
		collector:    collector,
	}
}

// Run starts the hub's main processing loop. This is the single goroutine
// that safely manages all coordinator state.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case msg := <-h.inbound:
			h.handleMessage(msg.client, msg.env)

		case reply := <-h.statsReq:
			reply <- Stats{
				Participants: len(h.participants),
				Waiting:      h.queue.len(),
				Pairs:        h.pairs.count(),
			}

		case <-h.stop:
			for id, p := range h.participants {
				if p.client.conn != nil {
					p.client.conn.Close()
				}
				close(p.client.send)
				delete(h.participants, id)
			}
			return
		}
	}
}

// Register hands a new connection to the hub. A connection that races
// shutdown is closed instead of blocking its handler goroutine forever.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.stop:
		if c.conn != nil {
			c.conn.Close()
		}
	}
}

// Stats returns a snapshot of the coordinator's counters.
func (h *Hub) Stats() Stats {
	reply := make(chan Stats, 1)
	select {
	case h.statsReq <- reply:
		return <-reply
	case <-h.stop:
		return Stats{}
	}
}

// Close stops the run loop and closes every participant connection.
func (h *Hub) Close() {
	close(h.stop)
}

// handleRegister allocates an identity for a fresh connection and makes the
// participant visible to the rest of the coordinator.
func (h *Hub) handleRegister(c *Client) {
	c.id = uuid.NewString()
	h.participants[c.id] = &participant{client: c, state: StateIdle}
	h.collector.ParticipantConnected()

	slog.Info("participant connected", "participant", c.id)

	h.sendTo(c.id, &protocol.Envelope{Kind: protocol.KindConnected, ID: c.id})
}

// handleUnregister removes a participant after its transport closed. The
// waiting queue and the pair table are cleaned up before the record is
// dropped, so a half-removed participant is never observable.
func (h *Hub) handleUnregister(c *Client) {
	p, ok := h.participants[c.id]
	if !ok {
		// Already removed, or the connection never completed registration.
		return
	}

	h.queue.remove(c.id)
	h.dissolvePair(c.id)
	p.state = StateLeft

	delete(h.participants, c.id)
	close(c.send)

	h.collector.ParticipantDisconnected()
	h.collector.QueueDepth(h.queue.len())

	slog.Info("participant disconnected", "participant", c.id)
}

// handleMessage is the relay router: it dispatches one inbound envelope by
// kind. Nothing in here is allowed to fail loudly; a bad message costs at
// most its own delivery.
func (h *Hub) handleMessage(c *Client, env *protocol.Envelope) {
	p, ok := h.participants[c.id]
	if !ok {
		// Message raced with the unregister; the participant is gone.
		return
	}

	switch env.Kind {
	case protocol.KindFindPartner:
		h.handleFindPartner(p)

	case protocol.KindOffer, protocol.KindAnswer, protocol.KindCandidate:
		h.relayToPartner(p, env)

	case protocol.KindSkip, protocol.KindDisconnect:
		h.handleLeave(p)

	default:
		slog.Warn("unknown message kind", "participant", c.id, "kind", env.Kind)
		h.collector.MessageDropped(string(env.Kind), "unknown-kind")
	}
}

// handleFindPartner puts an idle participant into the waiting queue and
// attempts a match. A request from a participant that is already waiting or
// already paired is ignored.
func (h *Hub) handleFindPartner(p *participant) {
	id := p.client.id

	if p.state != StateIdle {
		slog.Debug("find-partner ignored", "participant", id, "state", p.state)
		h.collector.MessageDropped(string(protocol.KindFindPartner), "not-idle")
		return
	}

	// Clear any stale entry before re-adding, so the queue never holds the
	// same id twice when a pairing attempt fires.
	h.queue.remove(id)
	h.queue.enqueue(id)
	h.setState(p, StateWaiting)

	h.sendTo(id, &protocol.Envelope{Kind: protocol.KindWaiting})

	h.tryPair()
	h.collector.QueueDepth(h.queue.len())
}

// tryPair matches the two oldest waiting participants. The dequeue and the
// pairing happen in one step of the run loop, so no third participant can
// slip in between.
func (h *Hub) tryPair() {
	first, second, ok := h.queue.dequeueTwo()
	if !ok {
		return
	}

	if !h.pairs.pair(first, second) {
		// Cannot happen while the queue invariants hold; refuse loudly
		// rather than corrupt the pair table.
		slog.Error("pairing refused", "first", first, "second", second)
		return
	}

	a := h.participants[first]
	b := h.participants[second]
	h.setState(a, StatePaired)
	h.setState(b, StatePaired)

	h.collector.PairCreated()
	h.collector.ActivePairs(h.pairs.count())

	slog.Info("participants paired", "first", first, "second", second)

	// The newer entry is the one whose request completed the match; that
	// side produces the first offer.
	h.sendTo(first, &protocol.Envelope{Kind: protocol.KindPaired, PartnerID: second})
	h.sendTo(second, &protocol.Envelope{Kind: protocol.KindPaired, PartnerID: first, Initiator: true})
}

// relayToPartner forwards an opaque negotiation payload to the sender's
// partner. Messages from unpaired participants, or to partners that are
// already gone, are dropped silently: the sender will learn about the loss
// through partner-left, not through a relay error.
func (h *Hub) relayToPartner(p *participant, env *protocol.Envelope) {
	id := p.client.id

	partnerID, ok := h.pairs.partnerOf(id)
	if !ok {
		h.collector.MessageDropped(string(env.Kind), "no-partner")
		return
	}
	if _, ok := h.participants[partnerID]; !ok {
		h.collector.MessageDropped(string(env.Kind), "partner-gone")
		return
	}

	if env.Kind == protocol.KindOffer && p.state == StatePaired {
		h.setState(p, StateNegotiating)
	}

	h.sendTo(partnerID, &protocol.Envelope{
		Kind:    env.Kind,
		ID:      id,
		Payload: env.Payload,
	})
	h.collector.MessageRelayed(string(env.Kind))
}

// handleLeave processes skip and disconnect: undo whatever pairing or queue
// membership the sender has, notify the partner, and acknowledge. Always
// succeeds; with nothing to undo it is a pure acknowledgement.
func (h *Hub) handleLeave(p *participant) {
	id := p.client.id

	h.queue.remove(id)
	h.dissolvePair(id)

	if p.state != StateIdle {
		h.setState(p, StateIdle)
	}

	h.sendTo(id, &protocol.Envelope{Kind: protocol.KindDisconnected})

	h.collector.QueueDepth(h.queue.len())
}

// dissolvePair tears down the pairing id belongs to, if any. The partner is
// notified exactly once and returned to Idle; it re-enters the queue only by
// sending its own find-partner, never automatically.
func (h *Hub) dissolvePair(id string) {
	partnerID, ok := h.pairs.unpair(id)
	if !ok {
		return
	}

	h.collector.PairDissolved()
	h.collector.ActivePairs(h.pairs.count())

	partner, ok := h.participants[partnerID]
	if !ok {
		return
	}

	h.setState(partner, StateIdle)
	h.sendTo(partnerID, &protocol.Envelope{Kind: protocol.KindPartnerLeft})
}

// setState applies a lifecycle transition, refusing anything the transition
// table does not allow.
func (h *Hub) setState(p *participant, to State) {
	if !canTransition(p.state, to) {
		slog.Warn("illegal state transition refused",
			"participant", p.client.id, "from", p.state, "to", to)
		return
	}
	p.state = to
}

// sendTo delivers an envelope to a participant's outbound buffer without
// ever blocking the run loop. A full buffer means a slow or dead receiver;
// the envelope is dropped and the ping/pong cycle will reap the connection.
func (h *Hub) sendTo(id string, env *protocol.Envelope) {
	p, ok := h.participants[id]
	if !ok {
		h.collector.MessageDropped(string(env.Kind), "unknown-participant")
		return
	}

	select {
	case p.client.send <- env:
	default:
		slog.Warn("send buffer full, dropping message", "participant", id, "kind", env.Kind)
		h.collector.MessageDropped(string(env.Kind), "buffer-full")
	}
}
