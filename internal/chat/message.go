package chat

import "github.com/vmihailenco/msgpack/v5"

// Label is the data channel name for the text side-channel.
const Label = "chat"

// Message type constants.
const (
	TypeText   = "text"
	TypeTyping = "typing"
)

// Message represents all data channel messages exchanged directly between
// paired peers. The coordinator never sees these.
type Message struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// TextPayload carries one line of chat.
type TextPayload struct {
	Body   string `msgpack:"body"`
	SentAt int64  `msgpack:"sentAt"`
}

// TypingPayload signals that the peer started or stopped typing.
type TypingPayload struct {
	Active bool `msgpack:"active"`
}

// DecodePayload decodes the message payload into the provided struct.
func (m Message) DecodePayload(v any) error {
	return msgpack.Unmarshal(m.Payload, v)
}

// NewMessage creates a new Message with the given type and payload.
func NewMessage(t string, payload any) (Message, error) {
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Type:    t,
		Payload: b,
	}, nil
}

// Encode serializes a message for the wire.
func Encode(m Message) ([]byte, error) {
	return msgpack.Marshal(m)
}

// Decode parses a message off the wire.
func Decode(b []byte) (Message, error) {
	var m Message
	err := msgpack.Unmarshal(b, &m)
	return m, err
}
