package utils

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MatchGlobs applies an ordered list of globs to name. Patterns prefixed
// with "!" exclude and the last matching pattern wins. A list that opens
// with an exclusion starts from everything included; an empty list matches
// nothing.
func MatchGlobs(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return false
	}

	matched := strings.HasPrefix(patterns[0], "!")
	for _, pattern := range patterns {
		negate := strings.HasPrefix(pattern, "!")
		if negate {
			pattern = pattern[1:]
		}
		if ok, _ := doublestar.Match(pattern, name); ok {
			matched = !negate
		}
	}
	return matched
}

// ValidateGlob reports whether pattern, without a leading "!", is a well
// formed glob.
func ValidateGlob(pattern string) bool {
	return doublestar.ValidatePattern(strings.TrimPrefix(pattern, "!"))
}
