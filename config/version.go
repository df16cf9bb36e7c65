package config

import "fmt"

// Set at build time with -ldflags "-X github.com/millie-ai/millie/config.Version=..."
var (
	Version       = "dev"
	CommitHash    = "n/a"
	BuildTime     = "n/a"
	VersionString = fmt.Sprintf("%s-%s (%s)", Version, CommitHash, BuildTime)
)

// UserAgent identifies millie to the upstream APIs it calls.
func UserAgent() string {
	return "millie/" + Version
}
