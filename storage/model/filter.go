package model

import (
	"regexp"

	"github.com/fatih/structs"
)

// FilterSpec maps a column name (`user`, `name`, `mail`, `grps`) to a match
// pattern. Patterns are case-insensitive and are tried as regular
// expressions first, falling back to literal substring matching when they do
// not compile. The `grps` pattern matches a record when any single group
// matches. A pattern on an unknown column matches nothing.
type FilterSpec map[string]string

// Matches reports whether the record satisfies every pattern in the filter.
func (f FilterSpec) Matches(rec *UserRecord) bool {
	if len(f) == 0 {
		return true
	}
	fields := structs.Map(rec)
	for column, pattern := range f {
		value, ok := fields[column]
		if !ok {
			return false
		}
		re := compilePattern(pattern)
		switch v := value.(type) {
		case string:
			if !re.MatchString(v) {
				return false
			}
		case []string:
			if !matchAny(re, v) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func matchAny(re *regexp.Regexp, values []string) bool {
	for _, v := range values {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

func compilePattern(pattern string) *regexp.Regexp {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(pattern))
	}
	return re
}
