// Package version holds the build stamp of the calvin binaries.
package version

import "runtime/debug"

// Set with -ldflags "-X github.com/arthur-debert/calvin/internal/version.Version=..."
// (and .Commit, .Date) by the release build.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the resolved build stamp.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// Get returns the ldflags stamp. Fields left at their defaults are filled
// from the module build info, which `go install` records.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fill(&info, bi)
	}
	return info
}

func fill(info *Info, bi *debug.BuildInfo) {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && s.Value != "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "unknown" && s.Value != "" {
				info.Date = s.Value
			}
		}
	}
}
