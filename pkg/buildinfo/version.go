// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/matzehuels/ringtower/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/ringtower/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/ringtower/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// The values end up in the CLI version output, the generator field of every
// exported GLB, the User-Agent of template downloads and the server's
// health response.
package buildinfo

import "fmt"

// Name is the program name used in generator and User-Agent strings.
const Name = "ringtower"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build information as served by the HTTP API.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// Generator is the asset generator tag written into exported containers,
// e.g. "ringtower v1.2.0".
func Generator() string {
	return Name + " " + Version
}

// UserAgent identifies template downloads, e.g. "ringtower/v1.2.0 (abc1234)".
func UserAgent() string {
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s/%s (%s)", Name, Version, commit)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
