// Package version exposes the build metadata stamped into the fig
// binary. The package-level variables are set by main from -ldflags;
// their zero values identify a local, untagged build.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Info is a point-in-time snapshot of the build metadata plus the
// runtime it was compiled with.
type Info struct {
	Version   string
	BuildTime string
	GitCommit string
	GoVersion string
	Platform  string
}

// Get snapshots the stamped values. Call it after main has applied the
// -ldflags overrides, not at package init.
func Get() Info {
	return Info{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String renders the one-line form used by "fig version".
func (i Info) String() string {
	return fmt.Sprintf("fig %s (%s) built at %s on %s",
		i.Version,
		i.GitCommit,
		i.BuildTime,
		i.Platform,
	)
}
