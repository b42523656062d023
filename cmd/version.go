package cmd

// Overridden at link time by the release build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)
