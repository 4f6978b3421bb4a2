package version

import (
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func TestCurrentPrefersBuildVersion(t *testing.T) {
	old := buildVersion
	buildVersion = "v1.2.3+dirty"
	t.Cleanup(func() { buildVersion = old })

	if got := Current(); got != "v1.2.3" {
		t.Fatalf("expected build version without dirty suffix, got %q", got)
	}
	if got := CurrentWithDirty(); got != "v1.2.3+dirty" {
		t.Fatalf("expected build version with dirty suffix, got %q", got)
	}
	if info := Read(); !strings.Contains(info.String(), "v1.2.3+dirty") {
		t.Fatalf("expected info to carry version, got %q", info.String())
	}
}

func TestPseudoVersion(t *testing.T) {
	ts := time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)
	info := &debug.BuildInfo{
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "1234567890abcdef"},
			{Key: "vcs.time", Value: ts.Format(time.RFC3339)},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	if got := pseudoVersion(info, true); got != "v0.0.0-20250102030405-1234567890ab+dirty" {
		t.Fatalf("unexpected pseudo version: %q", got)
	}
	if got := pseudoVersion(info, false); strings.HasSuffix(got, "+dirty") {
		t.Fatalf("expected clean pseudo version, got %q", got)
	}
	if pseudoVersion(nil, true) != "" {
		t.Fatalf("expected empty version for nil build info")
	}
}
