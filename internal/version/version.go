package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags "-X bennypowers.dev/slimls/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// readBuildInfo is swapped out in tests
var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the version string for the application: the ldflags
// value, else the module version from build info, else "dev"
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

// GetFullVersion returns the version with the commit it was built from, when known
func GetFullVersion() string {
	v := GetVersion()
	if GitCommit == "unknown" || GitCommit == "" {
		return v
	}
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if BuildTime != "unknown" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", v, commit, BuildTime)
	}
	return fmt.Sprintf("%s (commit: %s)", v, commit)
}
