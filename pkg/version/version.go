// Package version holds build-time identity information, populated via
// -ldflags by the release process and otherwise defaulting to "dev".
// Adapted in pattern from the upstream version package's var block and
// GetVersion/GetFullVersion/GetBuildInfo accessors.
package version

import (
	"fmt"
	"runtime"
	"time"
)

// Version information set at build time via ldflags
var (
	// Version is the release tag, e.g. "v0.3.0".
	Version = "dev"

	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"

	// GitTag is the exact tag checked out, if any.
	GitTag = ""

	// BuildDate is when the binary was built.
	BuildDate = "unknown"

	// BuildNumber is an auto-incremented CI build counter.
	BuildNumber = "0"

	// GoVersion is the Go toolchain version used to build.
	GoVersion = runtime.Version()

	// Platform is the target OS/arch.
	Platform = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

// GetVersion returns the resolved version string.
func GetVersion() string {
	if Version == "dev" {
		// Development version - use git info
		if GitTag != "" {
			Version = GitTag
		} else if GitCommit != "unknown" && len(GitCommit) >= 7 {
			Version = fmt.Sprintf("dev-%s", GitCommit[:7])
		}
	}

	// Add build number if not zero
	if BuildNumber != "0" {
		return fmt.Sprintf("%s+%s", Version, BuildNumber)
	}

	return Version
}

// GetFullVersion returns detailed version information
func GetFullVersion() string {
	return fmt.Sprintf(`Chip32 Toolchain %s
Build:    #%s
Commit:   %s
Date:     %s
Go:       %s
Platform: %s`,
		GetVersion(),
		BuildNumber,
		GitCommit,
		BuildDate,
		GoVersion,
		Platform)
}

// GetBuildInfo returns a single-line build info string
func GetBuildInfo() string {
	return fmt.Sprintf("chip32 %s (%s, built %s)", GetVersion(), GitCommit[:7], BuildDate)
}

// init sets the build date to current time if not already set
func init() {
	if BuildDate == "unknown" {
		BuildDate = time.Now().Format("2006-01-02T15:04:05Z")
	}
}
