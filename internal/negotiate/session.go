package negotiate

import (
	"encoding/json"
	"sync"

	pion "github.com/pion/webrtc/v4"
)

// Role governs which side of a pairing produces the first description.
type Role int

const (
	// RoleResponder waits for an offer and answers it.
	RoleResponder Role = iota

	// RoleInitiator produces the offer as soon as the pairing lands.
	RoleInitiator
)

func (r Role) String() string {
	if r == RoleInitiator {
		return "initiator"
	}
	return "responder"
}

// peerLink is the slice of *pion.PeerConnection the session drives. Narrow
// on purpose: tests substitute a fake that records call order.
type peerLink interface {
	CreateOffer(*pion.OfferOptions) (pion.SessionDescription, error)
	CreateAnswer(*pion.AnswerOptions) (pion.SessionDescription, error)
	SetLocalDescription(pion.SessionDescription) error
	SetRemoteDescription(pion.SessionDescription) error
	LocalDescription() *pion.SessionDescription
	AddICECandidate(pion.ICECandidateInit) error
	Close() error
}

// SendFunc relays an encoded description or candidate to the partner via
// the signaling channel.
type SendFunc func(payload json.RawMessage)

// Session drives the two-phase offer/answer exchange and candidate trickling
// for one side of one pairing. A session lives exactly as long as its
// pairing: it is built on the paired notification and torn down, never
// reused, when the pairing ends.
//
// Operations are applied in arrival order under one lock; callers may invoke
// them from any goroutine.
type Session struct {
	role Role
	pc   peerLink

	sendOffer  SendFunc
	sendAnswer SendFunc

	mu        sync.Mutex
	localSet  bool
	remoteSet bool
	pending   []pion.ICECandidateInit
	closed    bool
}

// NewSession creates the negotiation session for a fresh pairing. Outbound
// candidate trickling is wired on the peer connection itself (WireCandidates),
// not through the session.
func NewSession(role Role, pc peerLink, sendOffer, sendAnswer SendFunc) *Session {
	return &Session{
		role:       role,
		pc:         pc,
		sendOffer:  sendOffer,
		sendAnswer: sendAnswer,
	}
}

// Role returns the side this session plays in its pairing.
func (s *Session) Role() Role {
	return s.role
}

// Start kicks off negotiation. Only the initiator acts: it produces the
// local description and relays it as the offer. The responder's first move
// is HandleOffer.
func (s *Session) Start() error {
	if s.role != RoleInitiator {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.localSet {
		return WrapError("start", ErrDuplicateSignal, "offer already produced")
	}

	offer, err := s.pc.CreateOffer(nil)
	if err != nil {
		return NewError("create offer", err)
	}
	if err := s.pc.SetLocalDescription(offer); err != nil {
		return NewError("set local description", err)
	}
	s.localSet = true

	payload, err := json.Marshal(s.pc.LocalDescription())
	if err != nil {
		return NewError("encode offer", err)
	}
	s.sendOffer(payload)

	return nil
}

// HandleOffer consumes the partner's offer: the responder conditions its own
// description on it and relays the result as the answer.
func (s *Session) HandleOffer(payload json.RawMessage) error {
	if s.role != RoleResponder {
		return WrapError("handle offer", ErrUnexpectedSignal, s.role.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.remoteSet {
		return WrapError("handle offer", ErrDuplicateSignal, "remote description already set")
	}

	var offer pion.SessionDescription
	if err := json.Unmarshal(payload, &offer); err != nil {
		return NewError("decode offer", err)
	}

	if err := s.pc.SetRemoteDescription(offer); err != nil {
		return NewError("set remote description", err)
	}
	s.remoteSet = true
	if err := s.flushPendingLocked(); err != nil {
		return err
	}

	answer, err := s.pc.CreateAnswer(nil)
	if err != nil {
		return NewError("create answer", err)
	}
	if err := s.pc.SetLocalDescription(answer); err != nil {
		return NewError("set local description", err)
	}
	s.localSet = true

	encoded, err := json.Marshal(s.pc.LocalDescription())
	if err != nil {
		return NewError("encode answer", err)
	}
	s.sendAnswer(encoded)

	return nil
}

// HandleAnswer consumes the partner's answer, completing the initiator's
// local negotiation state.
func (s *Session) HandleAnswer(payload json.RawMessage) error {
	if s.role != RoleInitiator {
		return WrapError("handle answer", ErrUnexpectedSignal, s.role.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.remoteSet {
		return WrapError("handle answer", ErrDuplicateSignal, "remote description already set")
	}

	var answer pion.SessionDescription
	if err := json.Unmarshal(payload, &answer); err != nil {
		return NewError("decode answer", err)
	}

	if err := s.pc.SetRemoteDescription(answer); err != nil {
		return NewError("set remote description", err)
	}
	s.remoteSet = true

	return s.flushPendingLocked()
}

// HandleCandidate applies a relayed reachability descriptor. Candidates that
// arrive before the remote description are buffered and flushed in arrival
// order the moment it is set.
func (s *Session) HandleCandidate(payload json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	var candidate pion.ICECandidateInit
	if err := json.Unmarshal(payload, &candidate); err != nil {
		return NewError("decode candidate", err)
	}

	if !s.remoteSet {
		s.pending = append(s.pending, candidate)
		return nil
	}

	if err := s.pc.AddICECandidate(candidate); err != nil {
		return NewError("add candidate", err)
	}
	return nil
}

func (s *Session) flushPendingLocked() error {
	for _, candidate := range s.pending {
		if err := s.pc.AddICECandidate(candidate); err != nil {
			return NewError("flush candidate", err)
		}
	}
	s.pending = nil
	return nil
}

// Close tears the session down. Idempotent; the underlying peer connection
// is closed once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.pending = nil

	return s.pc.Close()
}
