// Package version holds build metadata stamped at link time, reported in
// the startup log line.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
)
