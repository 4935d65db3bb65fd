package watch

import (
	"fmt"
	"path/filepath"
)

// PatternFilter selects file names by glob. Excludes win over includes and
// an empty include list accepts everything not excluded.
type PatternFilter struct {
	Include []string
	Exclude []string
}

// NewPatternFilter validates the globs up front so Matches can ignore errors.
func NewPatternFilter(include, exclude []string) (*PatternFilter, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}
	return &PatternFilter{Include: include, Exclude: exclude}, nil
}

// Matches is applied to the base name of path.
func (f *PatternFilter) Matches(path string) bool {
	base := filepath.Base(path)
	if anyMatch(f.Exclude, base) {
		return false
	}
	return len(f.Include) == 0 || anyMatch(f.Include, base)
}

func anyMatch(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
