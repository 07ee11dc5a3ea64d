package protocol

import "encoding/json"

// Envelope is the structure of every websocket message exchanged between a
// participant and the coordinator, in both directions. Negotiation payloads
// (SDP blobs, ICE candidates) travel opaquely in Payload; the coordinator
// never looks inside them.
type Envelope struct {
	Kind Kind `json:"type"`

	// ID carries the assigned participant id on "connected" and the
	// sender's id on relayed offer/answer/candidate messages.
	ID string `json:"id,omitempty"`

	// PartnerID is set on "paired" and names the other side.
	PartnerID string `json:"partner_id,omitempty"`

	// Initiator is set on "paired". The participant whose pairing request
	// completed the match is the one expected to produce the first offer.
	Initiator bool `json:"initiator,omitempty"`

	Payload json.RawMessage `json:"payload,omitempty"`
}

// Kind tags an Envelope with its message type.
type Kind string

const (
	// Server to client.
	KindConnected    Kind = "connected"
	KindWaiting      Kind = "waiting"
	KindPaired       Kind = "paired"
	KindPartnerLeft  Kind = "partner-left"
	KindDisconnected Kind = "disconnected"

	// Client to server.
	KindFindPartner Kind = "find-partner"
	KindSkip        Kind = "skip"
	KindDisconnect  Kind = "disconnect"

	// Relayed between paired participants in either direction.
	KindOffer     Kind = "offer"
	KindAnswer    Kind = "answer"
	KindCandidate Kind = "ice-candidate"
)
