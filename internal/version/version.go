// Package version provides build-time version information for rulesgen.
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name used in version strings and generated documents.
const Name = "rulesgen"

// Build-time variables set via ldflags.
// Example: go build -ldflags="-X github.com/andywolf/rulesgen/internal/version.Version=v1.0.0"
var (
	// Version is the semantic version (e.g., "v1.2.3"). Set via ldflags.
	Version = "dev"

	// Commit is the git commit SHA. Set via ldflags.
	Commit = "unknown"

	// BuildDate is the RFC3339 timestamp of the build. Set via ldflags.
	BuildDate = "unknown"
)

// Short returns the version string (e.g., "v1.2.3" or "dev").
func Short() string {
	return Version
}

// Generator identifies the producing tool in generated skill documents,
// e.g. "rulesgen v1.2.3".
func Generator() string {
	return Name + " " + Version
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}

// Info returns a single-line version string with commit and build info.
// Format: "rulesgen v1.2.3 (commit: abc1234, built: 2024-01-15T10:30:00Z, go: go1.25.x)"
func Info() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, go: %s)",
		Generator(), shortCommit(), BuildDate, runtime.Version())
}

// Full returns a multi-line verbose version output.
func Full() string {
	return fmt.Sprintf(`%s
  Commit:     %s
  Built:      %s
  Go version: %s
  OS/Arch:    %s/%s`,
		Generator(), Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
