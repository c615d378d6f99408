// Package version holds the build metadata injected with ldflags:
//
//	go build -ldflags "-X github.com/bayoss/landscape2/internal/version.Version=v0.3.0"
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String formats the version for --version output.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
