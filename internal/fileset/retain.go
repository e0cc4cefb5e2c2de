package fileset

import (
	"log/slog"
	"sort"

	"github.com/ImSingee/semver"

	"github.com/ImSingee/relsync/internal/config"
)

// Retain keeps the max greatest versions by plain string comparison, greatest first.
// A max of zero or less means config.DefaultMaxVersions.
//
// Versions are opaque: "1.10.0" sorts before "1.9.0". Such cases are logged at debug level
// but never reordered.
func Retain(versions []string, max int) []string {
	if max <= 0 {
		max = config.DefaultMaxVersions
	}

	sorted := make([]string, len(versions))
	copy(sorted, versions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i] > sorted[j]
	})

	warnMisordered(sorted)

	if len(sorted) > max {
		sorted = sorted[:max]
	}

	return sorted
}

func warnMisordered(sorted []string) {
	for i := 0; i+1 < len(sorted); i++ {
		a, err := semver.NewVersion(sorted[i])
		if err != nil {
			continue
		}
		b, err := semver.NewVersion(sorted[i+1])
		if err != nil {
			continue
		}

		if a.LessThan(b) {
			slog.Debug("String order disagrees with semantic version order", "before", sorted[i], "after", sorted[i+1])
		}
	}
}
