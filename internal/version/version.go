// Package version holds build metadata injected at link time via
// -ldflags.
package version

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"
	// GitSHA is the git commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String returns a single-line human-readable build description.
func String() string {
	return Version + " (" + GitSHA + ", built " + BuildTime + ")"
}
