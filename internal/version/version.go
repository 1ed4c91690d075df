package version

// These variables are set at build time using ldflags
var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"
	// Commit is the git commit hash
	Commit = "unknown"
	// BuildDate is the build timestamp
	BuildDate = "unknown"
)

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetCommit returns the commit hash
func GetCommit() string {
	return Commit
}

// UserAgent returns the User-Agent sent with every alert API request
func UserAgent() string {
	if Version == "dev" {
		return "alertops-opsgenie/dev+" + Commit
	}
	return "alertops-opsgenie/" + Version
}
