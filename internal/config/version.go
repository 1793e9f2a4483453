package config

// Version is the logscope binary version.
// Set at build time via: -ldflags "-X github.com/data2rest/logscope/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
