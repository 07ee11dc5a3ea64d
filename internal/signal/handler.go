package signal

import (
	"encoding/json"

	"github.com/yaseenlenceria/OmniConnect/internal/protocol"
)

// Pairing is delivered when the coordinator matched us with a partner.
type Pairing struct {
	PartnerID string

	// Initiator is true when our pairing request completed the match; that
	// side produces the first offer.
	Initiator bool
}

// Remote is a relayed negotiation payload from our current partner.
type Remote struct {
	From    string
	Payload json.RawMessage
}

// Handler routes incoming signaling envelopes to typed channels.
type Handler struct {
	client *Client

	Connected   chan string
	Waiting     chan struct{}
	Paired      chan *Pairing
	Offer       chan *Remote
	Answer      chan *Remote
	Candidate   chan *Remote
	PartnerLeft chan struct{}
	LeaveAck    chan struct{}

	closed bool
}

// NewHandler creates a new envelope handler.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client:      client,
		Connected:   make(chan string, 1),
		Waiting:     make(chan struct{}, 1),
		Paired:      make(chan *Pairing, 1),
		Offer:       make(chan *Remote, 4),
		Answer:      make(chan *Remote, 4),
		Candidate:   make(chan *Remote, 32),
		PartnerLeft: make(chan struct{}, 1),
		LeaveAck:    make(chan struct{}, 1),
	}
}

// Start listens to incoming envelopes and fans them out until the connection
// drops. All handler channels are closed on return so receivers observe the
// loss of the signaling link.
func (h *Handler) Start() {
	defer h.Close()
	for env := range h.client.Incoming() {
		switch env.Kind {

		case protocol.KindConnected:
			h.Connected <- env.ID

		case protocol.KindWaiting:
			select {
			case h.Waiting <- struct{}{}:
			default:
			}

		case protocol.KindPaired:
			h.Paired <- &Pairing{PartnerID: env.PartnerID, Initiator: env.Initiator}

		case protocol.KindOffer:
			h.Offer <- &Remote{From: env.ID, Payload: env.Payload}

		case protocol.KindAnswer:
			h.Answer <- &Remote{From: env.ID, Payload: env.Payload}

		case protocol.KindCandidate:
			h.Candidate <- &Remote{From: env.ID, Payload: env.Payload}

		case protocol.KindPartnerLeft:
			select {
			case h.PartnerLeft <- struct{}{}:
			default:
			}

		case protocol.KindDisconnected:
			select {
			case h.LeaveAck <- struct{}{}:
			default:
			}

		default:
		}
	}
}

// DrainPending discards buffered negotiation messages. A partner may relay
// an offer or candidates and then leave before we consumed them; draining at
// the start of each pairing keeps those leftovers from being mistaken for
// the new partner's.
func (h *Handler) DrainPending() {
	for {
		select {
		case _, ok := <-h.Offer:
			if !ok {
				return
			}
		case _, ok := <-h.Answer:
			if !ok {
				return
			}
		case _, ok := <-h.Candidate:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// Close closes all handler channels.
func (h *Handler) Close() {
	if h.closed {
		return
	}
	h.closed = true

	close(h.Connected)
	close(h.Waiting)
	close(h.Paired)
	close(h.Offer)
	close(h.Answer)
	close(h.Candidate)
	close(h.PartnerLeft)
	close(h.LeaveAck)
}
