package version

// Version is the client version, overridden at build time with
// -ldflags "-X github.com/yaseenlenceria/OmniConnect/internal/version.Version=...".
var Version = "dev"
