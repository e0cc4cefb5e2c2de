package glob

import (
	"github.com/ImSingee/go-ex/ee"
	"github.com/gobwas/glob"
)

// Set is a list of compiled patterns; the empty Set matches everything.
type Set struct {
	patterns []string
	globs    []glob.Glob
}

func Compile(patterns []string) (*Set, error) {
	s := &Set{
		patterns: patterns,
		globs:    make([]glob.Glob, 0, len(patterns)),
	}

	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, ee.Wrapf(err, "invalid glob pattern `%s`", p)
		}
		s.globs = append(s.globs, g)
	}

	return s, nil
}

func (s *Set) Empty() bool {
	return s == nil || len(s.globs) == 0
}

func (s *Set) Match(name string) bool {
	if s.Empty() {
		return true
	}

	for _, g := range s.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (s *Set) Patterns() []string {
	if s == nil {
		return nil
	}
	return s.patterns
}
