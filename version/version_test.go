package version

import (
	"runtime/debug"
	"testing"
)

func TestBuildReadsVCSAndDependencies(t *testing.T) {
	bi := &debug.BuildInfo{
		Deps: []*debug.Module{
			{Path: "github.com/golang/geo", Version: "v0.0.0-20230421003525-6adc56603217"},
			{Path: "github.com/paulmach/go.geojson", Version: "v1.5.0"},
			{Path: "github.com/go-sql-driver/mysql", Version: "v1.9.3"},
			{Path: "github.com/gin-gonic/gin", Version: "v1.10.1"},
		},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2024-05-01T12:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	info := build(bi, "mysql")
	if info.Service != Service || info.Store != "mysql" {
		t.Errorf("unexpected service/store: %q %q", info.Service, info.Store)
	}
	if info.GitSHA != "abc123" || info.BuildTime != "2024-05-01T12:00:00Z" {
		t.Errorf("vcs settings not read: %+v", info)
	}
	if info.VCSModified == nil || !*info.VCSModified {
		t.Error("expected vcs_modified true")
	}

	want := map[string]string{
		"geometry":     "v0.0.0-20230421003525-6adc56603217",
		"geojson":      "v1.5.0",
		"mysql_driver": "v1.9.3",
	}
	if len(info.Dependencies) != len(want) {
		t.Fatalf("expected %d dependencies, got %v", len(want), info.Dependencies)
	}
	for k, v := range want {
		if info.Dependencies[k] != v {
			t.Errorf("%s: expected %q, got %q", k, v, info.Dependencies[k])
		}
	}
}

func TestBuildPrefersReplacement(t *testing.T) {
	bi := &debug.BuildInfo{Deps: []*debug.Module{{
		Path:    "github.com/golang/geo",
		Version: "v0.0.0-old",
		Replace: &debug.Module{Path: "github.com/golang/geo", Version: "v0.0.0-new"},
	}}}
	if got := build(bi, "memory").Dependencies["geometry"]; got != "v0.0.0-new" {
		t.Errorf("expected replacement version, got %q", got)
	}
}

func TestBuildWithoutBuildInfo(t *testing.T) {
	info := build(nil, "memory")
	if info.Version != BuildVersion || info.GoVersion == "" {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.Dependencies != nil {
		t.Errorf("expected no dependencies, got %v", info.Dependencies)
	}
}
