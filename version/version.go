// Package version exposes build metadata stamped in with -ldflags, e.g.
//
//	go build -ldflags "-X doghouse/version.Version=1.2.0 -X doghouse/version.CommitHash=$(git rev-parse HEAD)"
package version

import "fmt"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

const shortHashLen = 7

// GetFullVersion returns the version with a short commit hash when one was stamped.
func GetFullVersion() string {
	hash := CommitHash
	if hash == "" || hash == "unknown" {
		return Version
	}
	if len(hash) > shortHashLen {
		hash = hash[:shortHashLen]
	}
	return fmt.Sprintf("%s (%s)", Version, hash)
}

// GetBuildInfo returns the multi-line output of --version.
func GetBuildInfo() string {
	return fmt.Sprintf("doghouse %s\nCommit: %s\nBuild Time: %s", Version, CommitHash, BuildTime)
}
