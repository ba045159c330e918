// Package version carries build metadata injected with -ldflags.
package version

import "runtime/debug"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// Info is the JSON shape served by the version endpoint.
type Info struct {
	Version   string `json:"version"`
	GitSHA    string `json:"git_sha"`
	BuildTime string `json:"build_time"`
}

// Get returns the build metadata, falling back to the VCS settings embedded
// by the Go toolchain when ldflags were not supplied.
func Get() Info {
	info := Info{Version: Version, GitSHA: GitSHA, BuildTime: BuildTime}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitSHA == "unknown" && s.Value != "" {
					info.GitSHA = s.Value
					if len(info.GitSHA) > 7 {
						info.GitSHA = info.GitSHA[:7]
					}
				}
			case "vcs.time":
				if info.BuildTime == "unknown" && s.Value != "" {
					info.BuildTime = s.Value
				}
			}
		}
	}
	return info
}

func (i Info) String() string {
	return i.Version + " (" + i.GitSHA + ", built " + i.BuildTime + ")"
}
