package config

import (
	"fmt"
	"os"
)

// Default client configuration values.
const (
	DefaultServerURL = "ws://localhost:8080/ws"
	DefaultSTUN      = "stun:stun.l.google.com:19302"
)

// Client holds the CLI client configuration.
type Client struct {
	// ServerURL is the coordinator's websocket endpoint.
	ServerURL string

	// ICE servers for WebRTC.
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string

	// ForceRelay routes all media through TURN even when a direct path
	// exists.
	ForceRelay bool
}

// ClientOptions carries CLI flag overrides into LoadClient.
type ClientOptions struct {
	ServerURL  string
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	ForceRelay bool
}

// LoadClient reads client configuration with the following precedence:
// CLI flags, then environment variables, then defaults.
func LoadClient(opts ClientOptions) (*Client, error) {
	serverURL := firstNonEmpty(opts.ServerURL, os.Getenv("OMNICONNECT_SERVER"), DefaultServerURL)
	stun := firstNonEmpty(opts.STUNServer, os.Getenv("STUN_SERVER"), DefaultSTUN)
	turn := firstNonEmpty(opts.TURNServer, os.Getenv("TURN_SERVER"))
	turnUser := firstNonEmpty(opts.TURNUser, os.Getenv("TURN_USERNAME"))
	turnPass := firstNonEmpty(opts.TURNPass, os.Getenv("TURN_PASSWORD"))

	if turn != "" && turnUser == "" {
		return nil, fmt.Errorf("TURN server %q configured without credentials", turn)
	}

	return &Client{
		ServerURL:  serverURL,
		STUNServer: stun,
		TURNServer: turn,
		TURNUser:   turnUser,
		TURNPass:   turnPass,
		ForceRelay: opts.ForceRelay,
	}, nil
}

// GetSTUNServers returns STUN server URLs as strings.
func (c *Client) GetSTUNServers() []string {
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured.
func (c *Client) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%s:3478?transport=udp", c.TURNServer),
		fmt.Sprintf("%s:3478?transport=tcp", c.TURNServer),
	}
}

// GetTURNCredentials returns TURN username and password.
func (c *Client) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
