package protocol

import (
	"encoding/json"
	"testing"
)

func TestEnvelopeDecoding(t *testing.T) {
	raw := []byte(`{"type":"paired","partner_id":"p-2","initiator":true}`)

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatal(err)
	}
	if env.Kind != KindPaired || env.PartnerID != "p-2" || !env.Initiator {
		t.Errorf("decoded envelope = %+v", env)
	}
}

func TestPayloadStaysOpaque(t *testing.T) {
	// The coordinator must never reinterpret a relayed payload; whatever
	// bytes arrive must survive a decode/encode cycle unchanged.
	payload := `{"sdp":"v=0\r\no=- 42 2 IN IP4 127.0.0.1","type":"offer","extra":[1,2,3]}`
	raw := []byte(`{"type":"offer","id":"p-1","payload":` + payload + `}`)

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatal(err)
	}
	if string(env.Payload) != payload {
		t.Errorf("payload altered by decode:\n got %s\nwant %s", env.Payload, payload)
	}
}
