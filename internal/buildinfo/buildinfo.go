package buildinfo

import "time"

// Set via -ldflags at build time
var (
	Version    = "dev"
	BuildTime  string // when the binary was compiled
	CommitHash string // short git commit hash
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC().Format(time.RFC3339)

// Fields returns the build metadata reported by the health endpoint.
// Unset values are omitted.
func Fields() map[string]string {
	out := map[string]string{"version": Version, "startedAt": StartTime}
	if BuildTime != "" {
		out["buildTime"] = BuildTime
	}
	if CommitHash != "" {
		out["commit"] = CommitHash
	}
	return out
}
