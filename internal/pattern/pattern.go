package pattern

import (
	"regexp"
	"strings"
)

// Matches reports whether filename satisfies the user-supplied pattern.
// Dispatch by pattern shape:
//   - empty pattern matches everything
//   - patterns with "*" or "?" use glob semantics
//   - patterns starting with "." are extension suffix matches (case-sensitive)
//   - anything else is exact filename equality
func Matches(filename, pattern string) bool {
	if pattern == "" {
		return true
	}
	if strings.ContainsAny(pattern, "*?") {
		return matchesGlob(filename, pattern)
	}
	if strings.HasPrefix(pattern, ".") {
		return strings.HasSuffix(filename, pattern)
	}
	return filename == pattern
}

// matchesGlob translates the glob to a regexp and matches the entire
// filename, case-insensitively. "**" collapses to a recursive wildcard
// before the remaining characters are escaped, so separators match too.
// The translation happens once per call; at the file counts this engine
// handles a compile cache would be noise.
func matchesGlob(filename, pattern string) bool {
	re, err := regexp.Compile("(?i)^" + translate(pattern) + "$")
	if err != nil {
		// Should not happen given the escaping, but a malformed expression
		// must stay non-fatal: fall back to raw substring containment.
		return strings.Contains(filename, pattern)
	}
	return re.MatchString(filename)
}

// translate converts a glob pattern into an unanchored regexp body.
// "**" (with or without a trailing separator) collapses to a single "*"
// so a recursive wildcard never demands a literal separator in the name,
// then "*" becomes ".*", "?" becomes ".", and every other regexp
// metacharacter is escaped so it matches literally.
func translate(pattern string) string {
	expanded := strings.ReplaceAll(pattern, "**/", "*")
	expanded = strings.ReplaceAll(expanded, "**", "*")

	var b strings.Builder
	for _, r := range expanded {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}
