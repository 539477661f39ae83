// Package buildinfo holds the build metadata of the hgstat binary.
// The linker injects values into cmd/hgstat; main forwards them with Set.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Info is a copy of the build metadata.
type Info struct {
	Version string
	Commit  string
	Date    string
	BuiltBy string
}

var current = Info{
	Version: "dev",
	Commit:  "none",
	Date:    "unknown",
	BuiltBy: "unknown",
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Set stores the build metadata received from linker-injected variables.
func Set(version, commit, date, builtBy string) {
	current = Info{Version: version, Commit: commit, Date: date, BuiltBy: builtBy}
}

// Get returns the build metadata, filling a missing commit from the VCS
// revision and a missing builder from the Go version.
func Get() Info {
	info := current
	if info.Commit != "none" && info.BuiltBy != "unknown" {
		return info
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Commit == "none" {
		for _, setting := range bi.Settings {
			if setting.Key == "vcs.revision" {
				info.Commit = setting.Value
			}
		}
	}
	if info.BuiltBy == "unknown" {
		info.BuiltBy = bi.GoVersion
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built at: %s, built by: %s)", i.Version, i.Commit, i.Date, i.BuiltBy)
}
