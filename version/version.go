package version

import (
	"runtime"
	"runtime/debug"
	"strconv"
)

// Service is the name reported by /version and /health.
const Service = "pothole-service"

// Set with -ldflags "-X pothole-service/version.BuildVersion=...".
var (
	BuildVersion = "dev"
	GitSHA       = ""
	BuildTime    = ""
)

// trackedModules are the libraries region selection and storage depend on.
// Their resolved versions explain differences in selection results between
// deployments.
var trackedModules = map[string]string{
	"github.com/golang/geo":          "geometry",
	"github.com/paulmach/go.geojson": "geojson",
	"github.com/go-sql-driver/mysql": "mysql_driver",
}

// Info is the /version payload.
type Info struct {
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Store        string            `json:"store"`
	GitSHA       string            `json:"git_sha,omitempty"`
	BuildTime    string            `json:"build_time,omitempty"`
	VCSModified  *bool             `json:"vcs_modified,omitempty"`
	GoVersion    string            `json:"go_version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Get describes the running binary. store is the configured report backend.
func Get(store string) Info {
	bi, _ := debug.ReadBuildInfo()
	return build(bi, store)
}

func build(bi *debug.BuildInfo, store string) Info {
	info := Info{
		Service:   Service,
		Version:   BuildVersion,
		Store:     store,
		GitSHA:    GitSHA,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
	if bi == nil {
		return info
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitSHA == "" {
				info.GitSHA = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			if b, err := strconv.ParseBool(s.Value); err == nil {
				info.VCSModified = &b
			}
		}
	}

	for _, dep := range bi.Deps {
		if dep.Replace != nil {
			dep = dep.Replace
		}
		name, ok := trackedModules[dep.Path]
		if !ok {
			continue
		}
		if info.Dependencies == nil {
			info.Dependencies = map[string]string{}
		}
		info.Dependencies[name] = dep.Version
	}
	return info
}
