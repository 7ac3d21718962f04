package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func reset(t *testing.T) {
	t.Helper()
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })
	Version, Commit, Date = "", "", ""
}

func TestFromBuildInfoVCS(t *testing.T) {
	reset(t)
	fromBuildInfo(&debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2025-11-02T10:00:00Z"},
		},
	}, true)

	if Commit != "0123456-dirty" {
		t.Errorf("Commit = %q", Commit)
	}
	if Version != "dev-20251102" {
		t.Errorf("Version = %q", Version)
	}
	if Date != "2025-11-02" {
		t.Errorf("Date = %q", Date)
	}
}

func TestFromBuildInfoModuleVersion(t *testing.T) {
	reset(t)
	fromBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "v0.3.0"}}, true)
	if Version != "v0.3.0" {
		t.Errorf("Version = %q, want v0.3.0", Version)
	}

	reset(t)
	fromBuildInfo(nil, false)
	if Version != "" || Commit != "" {
		t.Errorf("missing build info should leave values empty, got %q %q", Version, Commit)
	}
}

func TestFull(t *testing.T) {
	reset(t)
	Version, Commit = "v1.0.0", "abc1234"
	if got := Full(); got != "v1.0.0 (commit: abc1234)" {
		t.Errorf("Full() = %q", got)
	}
	Date = "2025-11-02"
	if got := Full(); !strings.Contains(got, "built 2025-11-02") {
		t.Errorf("Full() = %q", got)
	}
	if !strings.HasPrefix(Details(), "lightstack v1.0.0") {
		t.Errorf("Details() = %q", Details())
	}
}
