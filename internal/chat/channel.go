package chat

import (
	"log/slog"
	"time"

	pion "github.com/pion/webrtc/v4"
)

// Channel wraps the chat data channel of one pairing.
type Channel struct {
	dc *pion.DataChannel
}

// NewChannel creates the chat data channel on an initiator's peer
// connection. Ordered delivery, since chat lines must not reorder.
func NewChannel(pc *pion.PeerConnection) (*Channel, error) {
	ordered := true
	dc, err := pc.CreateDataChannel(Label, &pion.DataChannelInit{
		Ordered: &ordered,
	})
	if err != nil {
		return nil, err
	}
	return &Channel{dc: dc}, nil
}

// Wrap adopts a data channel announced by the partner (responder side).
func Wrap(dc *pion.DataChannel) *Channel {
	return &Channel{dc: dc}
}

// OnOpen registers a callback for when the channel becomes usable.
func (c *Channel) OnOpen(fn func()) {
	c.dc.OnOpen(fn)
}

// OnText registers a callback for incoming chat lines. Non-text messages
// (typing indicators, unknown types) are absorbed here.
func (c *Channel) OnText(fn func(body string)) {
	c.dc.OnMessage(func(msg pion.DataChannelMessage) {
		m, err := Decode(msg.Data)
		if err != nil {
			slog.Debug("undecodable chat message dropped", "err", err)
			return
		}

		switch m.Type {
		case TypeText:
			var p TextPayload
			if err := m.DecodePayload(&p); err != nil {
				slog.Debug("bad text payload dropped", "err", err)
				return
			}
			fn(p.Body)

		case TypeTyping:
			// Not surfaced in the CLI.

		default:
			slog.Debug("unknown chat message type", "type", m.Type)
		}
	})
}

// SendText delivers one chat line to the partner.
func (c *Channel) SendText(body string) error {
	m, err := NewMessage(TypeText, TextPayload{Body: body, SentAt: time.Now().UnixMilli()})
	if err != nil {
		return err
	}
	b, err := Encode(m)
	if err != nil {
		return err
	}
	return c.dc.Send(b)
}

// Close shuts the channel down.
func (c *Channel) Close() error {
	return c.dc.Close()
}
