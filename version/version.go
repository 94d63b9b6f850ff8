// Package version exposes the library's build version, embedded at compile
// time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/clientkit/version.Version=1.2.0"
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var (
	// Version is the release version, "dev" when unset.
	Version = "dev"
	// GitCommit is the short commit hash of the build.
	GitCommit = ""
)

// Short returns the version string, commit-suffixed when available.
func Short() string {
	commit := GitCommit
	if commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
					commit = setting.Value[:7]
					break
				}
			}
		}
	}
	if commit == "" {
		return Version
	}
	return fmt.Sprintf("%s-%s", Version, commit)
}

// UserAgent returns the value clients send in the User-Agent header.
func UserAgent() string {
	return "clientkit/" + Short()
}

// IsRelease reports whether the build carries a tagged release version.
func IsRelease() bool {
	return Version != "dev" && !strings.Contains(Version, "dirty")
}
