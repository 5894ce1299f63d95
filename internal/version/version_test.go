package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-10-01T00:00:00Z"},
		},
	}

	info := Info{Version: "dev", Commit: "unknown", Date: "unknown"}
	fill(&info, bi)
	assert.Equal(t, Info{Version: "v1.2.0", Commit: "abc123", Date: "2026-10-01T00:00:00Z"}, info)
}

func TestFillKeepsLdflagsStamp(t *testing.T) {
	bi := &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	}

	info := Info{Version: "v2.0.0", Commit: "release", Date: "today"}
	fill(&info, bi)
	assert.Equal(t, Info{Version: "v2.0.0", Commit: "release", Date: "today"}, info)

	dev := Info{Version: "dev", Commit: "unknown", Date: "unknown"}
	fill(&dev, bi)
	assert.Equal(t, "dev", dev.Version)
	assert.Equal(t, "abc123", dev.Commit)
}
