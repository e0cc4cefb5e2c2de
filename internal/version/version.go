package version

import "fmt"

// set by -ldflags "-X github.com/ImSingee/relsync/internal/version.version=..."
var (
	version = "DEV"
	commit  = ""
	buildAt = ""
)

type Info struct {
	Version string
	Commit  string
	BuildAt string
}

func Get() Info {
	return Info{Version: version, Commit: commit, BuildAt: buildAt}
}

func (i Info) String() string {
	return fmt.Sprintf("%s\nCommit: %s\nBuild At: %s", i.Version, i.Commit, i.BuildAt)
}

// UserAgent is sent with every request to the releases API and asset hosts.
func UserAgent() string {
	return "relsync/" + version
}
