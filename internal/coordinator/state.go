package coordinator

// State is a participant's position in the session lifecycle.
type State int

const (
	// StateIdle is the rest state: connected, not looking for a partner.
	StateIdle State = iota

	// StateWaiting means the participant is in the matching queue.
	StateWaiting

	// StatePaired means a partner has been assigned but negotiation has
	// not started yet.
	StatePaired

	// StateNegotiating means an offer has been sent through the relay.
	StateNegotiating

	// StateConnected means a direct peer connection is up. Only the client
	// observes this: no relayed message kind reports connectivity, so the
	// hub holds paired participants in Negotiating until something ends
	// the pairing. Not terminal; skip returns the participant to Idle.
	StateConnected

	// StateLeft marks a participant whose transport has closed, in the
	// short window before its record is dropped from the registry.
	StateLeft
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StatePaired:
		return "paired"
	case StateNegotiating:
		return "negotiating"
	case StateConnected:
		return "connected"
	case StateLeft:
		return "left"
	default:
		return "unknown"
	}
}

// transitions is the single authority on which state changes are legal.
// Every state may fall back to Idle (skip, disconnect, partner loss) and
// every state may go to Left when the transport closes. The Negotiating to
// Connected row describes the client's side of the lifecycle; the hub never
// drives it itself.
var transitions = map[State]map[State]struct{}{
	StateIdle: {
		StateWaiting: {},
		StateLeft:    {},
	},
	StateWaiting: {
		StatePaired: {},
		StateIdle:   {},
		StateLeft:   {},
	},
	StatePaired: {
		StateNegotiating: {},
		StateIdle:        {},
		StateLeft:        {},
	},
	StateNegotiating: {
		StateConnected: {},
		StateIdle:      {},
		StateLeft:      {},
	},
	StateConnected: {
		StateIdle: {},
		StateLeft: {},
	},
	StateLeft: {},
}

// canTransition reports whether moving from one state to another is legal.
func canTransition(from, to State) bool {
	_, ok := transitions[from][to]
	return ok
}
