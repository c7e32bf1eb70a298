// Package version exposes build metadata injected at link time, for
// example:
//
//	go build -ldflags "-X gallerylog/version.Version=1.2.0 -X gallerylog/version.CommitHash=$(git rev-parse HEAD)"
package version

var (
	Version    = "1.0.0"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

// GetVersion returns the bare version string.
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version with an abbreviated commit hash
// when a real one was injected.
func GetFullVersion() string {
	if CommitHash == "unknown" || len(CommitHash) < 7 {
		return Version
	}
	return Version + " (" + CommitHash[:7] + ")"
}

// GetBuildInfo returns the multi-line description printed by --version.
func GetBuildInfo() string {
	return "Version: " + Version + "\nCommit: " + CommitHash + "\nBuild Time: " + BuildTime
}
