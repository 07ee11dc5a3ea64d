package main

import (
	"github.com/yaseenlenceria/OmniConnect/cmd/omniconnect/cmd"
	"github.com/yaseenlenceria/OmniConnect/internal/logging"
)

func main() {
	logging.Init("")
	cmd.Execute()
}
