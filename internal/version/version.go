// Package version identifies the running build. The values below are
// placeholders overridden at build time via -ldflags.
package version

var (
	// Version is the release tag of the binary.
	Version = "0.0.0"

	// GitCommit is the short hash of the commit the binary was built from.
	GitCommit = "unknown"

	// BuildDate is the UTC timestamp of the build.
	BuildDate = "unknown"
)
