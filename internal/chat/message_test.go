package chat

import "testing"

func TestTextRoundTrip(t *testing.T) {
	m, err := NewMessage(TypeText, TextPayload{Body: "hello stranger", SentAt: 1700000000000})
	if err != nil {
		t.Fatal(err)
	}

	wire, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := Decode(wire)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Type != TypeText {
		t.Errorf("Type = %s, want %s", decoded.Type, TypeText)
	}

	var p TextPayload
	if err := decoded.DecodePayload(&p); err != nil {
		t.Fatal(err)
	}
	if p.Body != "hello stranger" || p.SentAt != 1700000000000 {
		t.Errorf("payload = %+v", p)
	}
}

func TestUnknownTypeStillDecodes(t *testing.T) {
	m, err := NewMessage("sticker", TypingPayload{Active: true})
	if err != nil {
		t.Fatal(err)
	}
	wire, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}

	// Unknown types are dropped by consumers, not rejected by the codec.
	decoded, err := Decode(wire)
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	if decoded.Type != "sticker" {
		t.Errorf("Type = %s, want sticker", decoded.Type)
	}
}
