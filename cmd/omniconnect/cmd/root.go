package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaseenlenceria/OmniConnect/internal/ui"
	"github.com/yaseenlenceria/OmniConnect/internal/version"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "omniconnect",
	Short:   "Talk to a random stranger over a direct peer-to-peer connection",
	Long:    `OmniConnect pairs you with a random stranger and establishes a direct WebRTC connection between you. The coordinator only brokers the handshake; everything you exchange afterwards travels peer to peer and never touches a server.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
