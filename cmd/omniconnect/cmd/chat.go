package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"

	pion "github.com/pion/webrtc/v4"
	"github.com/spf13/cobra"

	"github.com/yaseenlenceria/OmniConnect/internal/chat"
	"github.com/yaseenlenceria/OmniConnect/internal/config"
	"github.com/yaseenlenceria/OmniConnect/internal/negotiate"
	"github.com/yaseenlenceria/OmniConnect/internal/protocol"
	sig "github.com/yaseenlenceria/OmniConnect/internal/signal"
	"github.com/yaseenlenceria/OmniConnect/internal/ui"
)

var (
	flagServer   string
	flagSTUN     string
	flagTURN     string
	flagTURNUser string
	flagTURNPass string
	flagRelay    bool
)

// errQuit ends the outer matching loop when the user types /quit.
var errQuit = errors.New("quit")

// errSignalingLost reports that the coordinator connection dropped mid-session;
// the outer loop reconnects with backoff and resumes matching.
var errSignalingLost = errors.New("signaling connection lost")

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"c"},
	Short:   "Get paired with a stranger and chat over a direct connection",
	Long: `Connect to the coordinator, wait to be paired with a stranger, and chat
over a direct peer-to-peer data channel.

While chatting:
  /skip   leave the current stranger and find a new one
  /quit   leave and exit

Examples:
  omniconnect chat
  omniconnect chat --server ws://coordinator.example.com/ws`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.LoadClient(config.ClientOptions{
		ServerURL:  flagServer,
		STUNServer: flagSTUN,
		TURNServer: flagTURN,
		TURNUser:   flagTURNUser,
		TURNPass:   flagTURNPass,
		ForceRelay: flagRelay,
	})
	if err != nil {
		return err
	}

	lines := readLines(ctx)

	for {
		client, handler, err := connectCoordinator(ctx, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		err = matchLoop(ctx, cfg, client, handler, lines)
		client.Close()

		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, errSignalingLost):
			if ctx.Err() != nil {
				return nil
			}
			ui.PrintStatus("lost the coordinator, reconnecting...")
		default:
			return err
		}
	}
}

// connectCoordinator dials the coordinator (with backoff) and waits for the
// session id assignment.
func connectCoordinator(ctx context.Context, cfg *config.Client) (*sig.Client, *sig.Handler, error) {
	client := sig.NewClient(cfg.ServerURL)
	if err := client.Connect(ctx); err != nil {
		return nil, nil, err
	}

	handler := sig.NewHandler(client)
	go handler.Start()

	select {
	case selfID, ok := <-handler.Connected:
		if !ok {
			client.Close()
			return nil, nil, errSignalingLost
		}
		ui.PrintSuccessf("connected to coordinator as %s", shortID(selfID))
		return client, handler, nil
	case <-ctx.Done():
		client.Close()
		return nil, nil, ctx.Err()
	}
}

// matchLoop requests pairings until the user quits or the signaling link
// drops.
func matchLoop(ctx context.Context, cfg *config.Client, client *sig.Client, handler *sig.Handler, lines <-chan string) error {
	for {
		client.Send(&protocol.Envelope{Kind: protocol.KindFindPartner})
		ui.PrintStatus("looking for a stranger...")

		select {
		case pairing, ok := <-handler.Paired:
			if !ok {
				return errSignalingLost
			}
			err := runPairing(ctx, cfg, client, handler, pairing, lines)
			if errors.Is(err, errQuit) {
				client.Send(&protocol.Envelope{Kind: protocol.KindDisconnect})
				return errQuit
			}
			if err != nil {
				return err
			}
			// Pairing over; loop around and request a new one.

		case <-ctx.Done():
			client.Send(&protocol.Envelope{Kind: protocol.KindDisconnect})
			return errQuit
		}
	}
}

// runPairing drives one pairing from the paired notification to whatever
// ends it: a skip, the partner leaving, a connectivity failure, or the user
// quitting.
func runPairing(ctx context.Context, cfg *config.Client, client *sig.Client, handler *sig.Handler, pairing *sig.Pairing, lines <-chan string) error {
	role := negotiate.RoleResponder
	if pairing.Initiator {
		role = negotiate.RoleInitiator
	}
	ui.PrintStatusf("paired with %s (%s)", shortID(pairing.PartnerID), role)

	// Negotiation state is scoped to this pairing: anything a previous
	// partner relayed before leaving must not reach the new session.
	handler.DrainPending()

	pc, err := negotiate.NewPeerConnection(cfg)
	if err != nil {
		return err
	}

	session := negotiate.NewSession(role, pc,
		sendSignal(client, protocol.KindOffer),
		sendSignal(client, protocol.KindAnswer),
	)
	defer session.Close()

	negotiate.WireCandidates(pc, sendSignal(client, protocol.KindCandidate))

	connected := make(chan struct{}, 1)
	failed := make(chan struct{}, 1)
	negotiate.WireConnectionState(pc,
		func() { nudge(connected) },
		func() { nudge(failed) },
	)

	// The initiator opens the chat channel; the responder adopts it when it
	// is announced.
	chatReady := make(chan *chat.Channel, 1)
	if role == negotiate.RoleInitiator {
		ch, err := chat.NewChannel(pc)
		if err != nil {
			return err
		}
		ch.OnText(ui.PrintPartner)
		chatReady <- ch
	} else {
		pc.OnDataChannel(func(dc *pion.DataChannel) {
			if dc.Label() != chat.Label {
				return
			}
			ch := chat.Wrap(dc)
			ch.OnText(ui.PrintPartner)
			chatReady <- ch
		})
	}

	if err := session.Start(); err != nil {
		return err
	}

	skip := func() {
		client.Send(&protocol.Envelope{Kind: protocol.KindSkip})
	}

	var active *chat.Channel
	for {
		select {
		case <-ctx.Done():
			return errQuit

		case remote, ok := <-handler.Offer:
			if !ok {
				return errSignalingLost
			}
			if remote.From != pairing.PartnerID {
				continue
			}
			if err := session.HandleOffer(remote.Payload); err != nil {
				ui.PrintErrorf("negotiation failed: %v", err)
				skip()
				return nil
			}

		case remote, ok := <-handler.Answer:
			if !ok {
				return errSignalingLost
			}
			if remote.From != pairing.PartnerID {
				continue
			}
			if err := session.HandleAnswer(remote.Payload); err != nil {
				ui.PrintErrorf("negotiation failed: %v", err)
				skip()
				return nil
			}

		case remote, ok := <-handler.Candidate:
			if !ok {
				return errSignalingLost
			}
			if remote.From != pairing.PartnerID {
				continue
			}
			if err := session.HandleCandidate(remote.Payload); err != nil {
				ui.PrintErrorf("bad candidate: %v", err)
			}

		case _, ok := <-handler.PartnerLeft:
			if !ok {
				return errSignalingLost
			}
			ui.PrintStatus("stranger left")
			return nil

		case <-connected:
			ui.PrintSuccess("direct connection up, say hi!")

		case <-failed:
			ui.PrintError("connection to stranger failed")
			skip()
			return nil

		case ch := <-chatReady:
			active = ch

		case line, ok := <-lines:
			if !ok {
				return errQuit
			}
			switch line {
			case "/skip":
				skip()
				return nil
			case "/quit":
				return errQuit
			case "":
			default:
				if active == nil {
					ui.PrintStatus("not connected yet")
					continue
				}
				if err := active.SendText(line); err != nil {
					ui.PrintErrorf("send failed: %v", err)
				}
			}
		}
	}
}

// sendSignal adapts the signaling client into the negotiate.SendFunc shape
// for one message kind.
func sendSignal(client *sig.Client, kind protocol.Kind) negotiate.SendFunc {
	return func(payload json.RawMessage) {
		client.Send(&protocol.Envelope{Kind: kind, Payload: payload})
	}
}

// readLines feeds stdin lines into a channel so the session loop can select
// on them. Closed on EOF.
func readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func nudge(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// shortID trims a session id down to a chat-friendly handle.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&flagServer, "server", "s", "", "coordinator websocket URL")
	chatCmd.Flags().StringVar(&flagSTUN, "stun", "", "STUN server URL")
	chatCmd.Flags().StringVar(&flagTURN, "turn", "", "TURN server URL")
	chatCmd.Flags().StringVar(&flagTURNUser, "turn-user", "", "TURN username")
	chatCmd.Flags().StringVar(&flagTURNPass, "turn-pass", "", "TURN password")
	chatCmd.Flags().BoolVar(&flagRelay, "relay", false, "force media through the TURN relay")
}
