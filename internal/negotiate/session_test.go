package negotiate

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	pion "github.com/pion/webrtc/v4"
)

// fakePeer records the calls a session makes against its peer connection.
type fakePeer struct {
	local      *pion.SessionDescription
	remote     *pion.SessionDescription
	candidates []pion.ICECandidateInit
	closed     bool
}

func (f *fakePeer) CreateOffer(*pion.OfferOptions) (pion.SessionDescription, error) {
	return pion.SessionDescription{Type: pion.SDPTypeOffer, SDP: "v=0 fake-offer"}, nil
}

func (f *fakePeer) CreateAnswer(*pion.AnswerOptions) (pion.SessionDescription, error) {
	if f.remote == nil {
		return pion.SessionDescription{}, errors.New("no remote description")
	}
	return pion.SessionDescription{Type: pion.SDPTypeAnswer, SDP: "v=0 fake-answer"}, nil
}

func (f *fakePeer) SetLocalDescription(d pion.SessionDescription) error {
	f.local = &d
	return nil
}

func (f *fakePeer) SetRemoteDescription(d pion.SessionDescription) error {
	f.remote = &d
	return nil
}

func (f *fakePeer) LocalDescription() *pion.SessionDescription {
	return f.local
}

func (f *fakePeer) AddICECandidate(c pion.ICECandidateInit) error {
	f.candidates = append(f.candidates, c)
	return nil
}

func (f *fakePeer) Close() error {
	f.closed = true
	return nil
}

type sentSignals struct {
	offers  []json.RawMessage
	answers []json.RawMessage
}

func newSessionUnderTest(role Role) (*Session, *fakePeer, *sentSignals) {
	pc := &fakePeer{}
	sent := &sentSignals{}
	s := NewSession(role, pc,
		func(p json.RawMessage) { sent.offers = append(sent.offers, p) },
		func(p json.RawMessage) { sent.answers = append(sent.answers, p) },
	)
	return s, pc, sent
}

func encodeDescription(t *testing.T, d pion.SessionDescription) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func encodeCandidate(t *testing.T, i int) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(pion.ICECandidateInit{Candidate: fmt.Sprintf("candidate-%d", i)})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestInitiatorProducesOffer(t *testing.T) {
	s, pc, sent := newSessionUnderTest(RoleInitiator)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	if pc.local == nil || pc.local.Type != pion.SDPTypeOffer {
		t.Error("initiator did not set a local offer")
	}
	if len(sent.offers) != 1 {
		t.Fatalf("sent %d offers, want 1", len(sent.offers))
	}

	// The local description is set at most once per pairing.
	err := s.Start()
	if !errors.Is(err, ErrDuplicateSignal) {
		t.Errorf("second Start() = %v, want ErrDuplicateSignal", err)
	}
}

func TestResponderAnswersOffer(t *testing.T) {
	s, pc, sent := newSessionUnderTest(RoleResponder)

	// Responder's Start is a no-op; it waits for the offer.
	if err := s.Start(); err != nil {
		t.Fatalf("responder Start() = %v", err)
	}
	if len(sent.offers) != 0 {
		t.Fatal("responder produced an offer")
	}

	offer := encodeDescription(t, pion.SessionDescription{Type: pion.SDPTypeOffer, SDP: "v=0 remote"})
	if err := s.HandleOffer(offer); err != nil {
		t.Fatalf("HandleOffer() = %v", err)
	}

	if pc.remote == nil || pc.remote.SDP != "v=0 remote" {
		t.Error("remote description not applied")
	}
	if len(sent.answers) != 1 {
		t.Fatalf("sent %d answers, want 1", len(sent.answers))
	}

	err := s.HandleOffer(offer)
	if !errors.Is(err, ErrDuplicateSignal) {
		t.Errorf("second HandleOffer() = %v, want ErrDuplicateSignal", err)
	}
}

func TestSignalsForWrongRoleRefused(t *testing.T) {
	initiator, _, _ := newSessionUnderTest(RoleInitiator)
	offer := encodeDescription(t, pion.SessionDescription{Type: pion.SDPTypeOffer, SDP: "x"})
	if err := initiator.HandleOffer(offer); !errors.Is(err, ErrUnexpectedSignal) {
		t.Errorf("initiator HandleOffer() = %v, want ErrUnexpectedSignal", err)
	}

	responder, _, _ := newSessionUnderTest(RoleResponder)
	answer := encodeDescription(t, pion.SessionDescription{Type: pion.SDPTypeAnswer, SDP: "x"})
	if err := responder.HandleAnswer(answer); !errors.Is(err, ErrUnexpectedSignal) {
		t.Errorf("responder HandleAnswer() = %v, want ErrUnexpectedSignal", err)
	}
}

func TestCandidatesBufferedUntilRemoteDescription(t *testing.T) {
	s, pc, _ := newSessionUnderTest(RoleInitiator)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	// Candidates trickle in before the answer arrives.
	for i := 0; i < 3; i++ {
		if err := s.HandleCandidate(encodeCandidate(t, i)); err != nil {
			t.Fatalf("HandleCandidate(%d) = %v", i, err)
		}
	}
	if len(pc.candidates) != 0 {
		t.Fatalf("%d candidates applied before remote description", len(pc.candidates))
	}

	answer := encodeDescription(t, pion.SessionDescription{Type: pion.SDPTypeAnswer, SDP: "v=0 remote"})
	if err := s.HandleAnswer(answer); err != nil {
		t.Fatal(err)
	}

	// Flushed in exact arrival order, none lost, none duplicated.
	if len(pc.candidates) != 3 {
		t.Fatalf("%d candidates applied after flush, want 3", len(pc.candidates))
	}
	for i, c := range pc.candidates {
		if want := fmt.Sprintf("candidate-%d", i); c.Candidate != want {
			t.Errorf("candidate[%d] = %s, want %s", i, c.Candidate, want)
		}
	}

	// Late candidates now apply immediately.
	if err := s.HandleCandidate(encodeCandidate(t, 3)); err != nil {
		t.Fatal(err)
	}
	if len(pc.candidates) != 4 || pc.candidates[3].Candidate != "candidate-3" {
		t.Error("candidate after remote description not applied immediately")
	}
}

func TestClosedSessionRefusesEverything(t *testing.T) {
	s, pc, _ := newSessionUnderTest(RoleInitiator)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if !pc.closed {
		t.Error("peer connection not closed")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}

	if err := s.Start(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Start() after close = %v, want ErrSessionClosed", err)
	}
	if err := s.HandleCandidate(encodeCandidate(t, 0)); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("HandleCandidate() after close = %v, want ErrSessionClosed", err)
	}
}
