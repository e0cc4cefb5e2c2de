package fileset

import (
	"os"
	"regexp"
	"sort"

	"github.com/ImSingee/go-ex/ee"
)

// VersionFileSet maps a version to the local file of each type found for it.
type VersionFileSet map[string]map[FileType]string

// Pattern matches canonical filenames of product, capturing version and type.
func Pattern(product string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(product) + `-(.+)\.(` + typePattern() + `)$`)
}

// Group scans dir (not recursively) for canonical filenames of product.
func Group(dir, product string) (VersionFileSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ee.Wrapf(err, "cannot read directory %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}

	return GroupNames(names, product), nil
}

// GroupNames groups names as Group does, ignoring names that are not canonical.
func GroupNames(names []string, product string) VersionFileSet {
	re := Pattern(product)
	set := VersionFileSet{}

	for _, name := range names {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}

		version, t := m[1], FileType(m[2])
		if set[version] == nil {
			set[version] = map[FileType]string{}
		}
		set[version][t] = name
	}

	return set
}

// Versions returns all versions in ascending string order.
func (s VersionFileSet) Versions() []string {
	versions := make([]string, 0, len(s))
	for v := range s {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// Keep returns the subset of s holding the given versions. Unknown versions are ignored.
func (s VersionFileSet) Keep(versions []string) VersionFileSet {
	kept := make(VersionFileSet, len(versions))
	for _, v := range versions {
		if files, ok := s[v]; ok {
			kept[v] = files
		}
	}
	return kept
}

// Files returns the filenames of version in FileTypes order.
func (s VersionFileSet) Files(version string) []string {
	files := s[version]
	result := make([]string, 0, len(files))
	for _, t := range FileTypes {
		if name, ok := files[t]; ok {
			result = append(result, name)
		}
	}
	return result
}
