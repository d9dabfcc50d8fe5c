package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Info is the build information printed by the version command.
type Info struct {
	Major      string `json:"major"`
	Minor      string `json:"minor"`
	Patch      string `json:"patch"`
	PreRelease string `json:"prerelease,omitempty"`
	Meta       string `json:"meta,omitempty"`
	GitVersion string `json:"gitVersion"`
	GitCommit  string `json:"gitCommit,omitempty"`
	BuildDate  string `json:"buildDate,omitempty"`
	GoVersion  string `json:"goVersion"`
	Compiler   string `json:"compiler"`
	Platform   string `json:"platform"`
}

// GetInfo derives Info from the module version in bi.
//
// A pseudo version such as v1.2.3-20240101120000-abcdef123456 is split into
// its build date and commit. Versions that are not semantic versions are
// reported as 0.0.0 with the raw string as GitVersion.
func GetInfo(bi *debug.BuildInfo) Info {
	info := Info{
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	v, err := semver.NewVersion(bi.Main.Version)
	if err != nil {
		info.GitVersion = bi.Main.Version
		info.Major, info.Minor, info.Patch = "0", "0", "0"
		return info
	}

	info.GitVersion = v.Original()
	info.Meta = v.Metadata()
	if pre := v.Prerelease(); pre != "" {
		info.PreRelease = pre
		// the last two dot separated parts of a go pseudo version are date and commit
		parts := strings.Split(pre, ".")
		if last := parts[len(parts)-1]; strings.Count(last, "-") == 1 {
			info.BuildDate, info.GitCommit, _ = strings.Cut(last, "-")
		}
	}
	info.Major = strconv.FormatUint(v.Major(), 10)
	info.Minor = strconv.FormatUint(v.Minor(), 10)
	info.Patch = strconv.FormatUint(v.Patch(), 10)
	return info
}
