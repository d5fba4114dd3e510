// Package version provides build-time version information for the verstamp
// binary itself. These variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/jmgilman/verstamp/internal/version.Version=$(cat version) \
//	                   -X github.com/jmgilman/verstamp/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/jmgilman/verstamp/internal/version.Date=$(date -u +%Y-%m-%d)"
package version

import "fmt"

var (
	// Version is the semantic version of the build.
	Version = "dev"

	// Commit is the git commit SHA of the build.
	Commit = "none"

	// Date is the build date in ISO 8601 format.
	Date = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("verstamp %s (commit: %s, built: %s)", Version, Commit, Date)
}
