package medtravel

// Version information for medtravel.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/medtravel.GitCommit=$(git rev-parse HEAD)"
const (
	// Name is the application name.
	Name = "medtravel"

	// Description is a short description of the application.
	Description = "Medical-tourism site backend with page auto-translation"

	// Version is the semantic version of the application.
	Version = "0.4.0"
)

// BuildInfo contains build-time information, set via ldflags.
var (
	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// FullVersion returns the version string with optional build info.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns a user agent string for outgoing HTTP requests.
func UserAgent() string {
	return Name + "/" + Version
}
