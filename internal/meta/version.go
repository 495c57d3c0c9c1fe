package meta

import (
	"fmt"
	"runtime"
	"strings"
)

// Info describes the build of a cosmogram binary. The values are stamped at
// build time with the Go linker, e.g.
//
//   go build -ldflags "-X github.com/luma/cosmogram/internal/meta.Version=1.2.0"
//
type Info struct {
	Version   string
	Build     string
	Branch    string
	BuildTime string
	Platform  string
	GoVersion string
}

// These will be filled in using the linker -X flag
var (
	// Version as an arbitrary string
	Version string

	// Build is the Git sha from when we are building
	Build string

	// Branch is the Git branch that we are building from
	Branch string

	// BuildTimeUTC is the build time in UTC (year/month/day hour:min:sec)
	BuildTimeUTC string

	platform = fmt.Sprintf("%s %s", runtime.GOOS, runtime.GOARCH)
)

// GetInfo returns an Info struct populated with the build information.
func GetInfo() Info {
	return Info{
		GoVersion: runtime.Version(),
		Version:   orUnknown(Version),
		Build:     orUnknown(Build),
		Branch:    orUnknown(Branch),
		BuildTime: orUnknown(BuildTimeUTC),
		Platform:  platform,
	}
}

func (i Info) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "cosmogram %s\n", i.Version)
	fmt.Fprintf(&b, "  build:    %s (%s)\n", i.Build, i.Branch)
	fmt.Fprintf(&b, "  built at: %s\n", i.BuildTime)
	fmt.Fprintf(&b, "  platform: %s, %s\n", i.Platform, i.GoVersion)

	return b.String()
}

// UserAgent identifies this client in HTTP requests.
func UserAgent() string {
	return "cosmogram/" + orUnknown(Version)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}
