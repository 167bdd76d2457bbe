// Package version carries build identification, populated via -ldflags at
// release time.
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build identification on one line.
func String() string {
	return fmt.Sprintf("load-confounds %s (%s, built %s)", Version, GitSHA, BuildTime)
}
