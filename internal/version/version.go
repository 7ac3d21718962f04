// Package version reports the lightstack build version.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/activhome/lightstack/internal/version.Version=v0.3.0 \
//	                   -X github.com/activhome/lightstack/internal/version.Commit=abc1234"
//
// Unset values are filled from the VCS stamp in the build info, else "dev".
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

func init() {
	if Version == "" || Commit == "" || Date == "" {
		fromBuildInfo(debug.ReadBuildInfo())
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

func fromBuildInfo(info *debug.BuildInfo, ok bool) {
	if !ok || info == nil {
		return
	}

	if Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		// installed with go install module@version
		Version = info.Main.Version
	}

	var revision, modified, vcsTime string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			vcsTime = s.Value
		}
	}

	if Commit == "" && revision != "" {
		Commit = revision
		if len(Commit) > 7 {
			Commit = Commit[:7]
		}
		if modified == "true" {
			Commit += "-dirty"
		}
	}

	if vcsTime != "" {
		if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
			if Date == "" {
				Date = t.UTC().Format("2006-01-02")
			}
			if Version == "" {
				Version = "dev-" + t.UTC().Format("20060102")
			}
		}
	}
}

// Full returns the version with its commit and build date.
func Full() string {
	if Date == "" {
		return fmt.Sprintf("%s (commit: %s)", Version, Commit)
	}
	return fmt.Sprintf("%s (commit: %s, built %s)", Version, Commit, Date)
}

// Details is Full plus the Go toolchain and platform, for `lightstack version`.
func Details() string {
	return fmt.Sprintf("lightstack %s\n%s %s/%s", Full(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
