package pattern

import "testing"

// TestEmptyPatternMatchesAll verifies the match-all default
func TestEmptyPatternMatchesAll(t *testing.T) {
	for _, name := range []string{"a.txt", "", "weird name.tar.gz", ".hidden"} {
		if !Matches(name, "") {
			t.Errorf("Matches(%q, \"\") = false, expected true", name)
		}
	}
}

// TestExactMatch verifies plain patterns require exact equality
func TestExactMatch(t *testing.T) {
	tests := []struct {
		filename string
		pattern  string
		expected bool
	}{
		{"report.txt", "report.txt", true},
		{"report.txt", "report", false},
		{"report", "report", true},
		{"Report", "report", false}, // exact match is case-sensitive
		{"report.txt.bak", "report.txt", false},
	}

	for _, tt := range tests {
		if got := Matches(tt.filename, tt.pattern); got != tt.expected {
			t.Errorf("Matches(%q, %q) = %v, expected %v", tt.filename, tt.pattern, got, tt.expected)
		}
	}
}

// TestExtensionMatch verifies leading-dot patterns are suffix matches
func TestExtensionMatch(t *testing.T) {
	tests := []struct {
		filename string
		pattern  string
		expected bool
	}{
		{"report.txt", ".txt", true},
		{"archive.tar.gz", ".gz", true},
		{"archive.tar.gz", ".tar.gz", true},
		{"report.txt", ".log", false},
		{"report.TXT", ".txt", false}, // extension match is case-sensitive
		{".txt", ".txt", true},
	}

	for _, tt := range tests {
		if got := Matches(tt.filename, tt.pattern); got != tt.expected {
			t.Errorf("Matches(%q, %q) = %v, expected %v", tt.filename, tt.pattern, got, tt.expected)
		}
	}
}

// TestGlobMatch verifies glob semantics: anchored, case-insensitive,
// with * matching any run and ? exactly one character
func TestGlobMatch(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		pattern  string
		expected bool
	}{
		{"star suffix", "report.txt", "*.txt", true},
		{"anchored not substring", "report.txt.bak", "*.txt", false},
		{"anchored at front", "myreport.txt", "report*", false},
		{"star prefix", "report_2024.csv", "report*", true},
		{"case insensitive", "REPORT.TXT", "*.txt", true},
		{"question mark", "log1.txt", "log?.txt", true},
		{"question mark one char only", "log12.txt", "log?.txt", false},
		{"recursive wildcard", "nested.log", "**/*.log", true},
		{"recursive wildcard plain", "app.log", "**.log", true},
		{"middle star", "backup-jan.tar", "backup-*.tar", true},
		{"no match", "image.png", "*.txt", false},
		{"literal dot escaped", "reportxtxt", "*.txt", false},
		{"literal brackets", "file[1].txt", "file[1].*", true},
		{"literal plus", "a+b.txt", "a+b.*", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.filename, tt.pattern); got != tt.expected {
				t.Errorf("Matches(%q, %q) = %v, expected %v", tt.filename, tt.pattern, got, tt.expected)
			}
		})
	}
}

// TestNoWildcardEqualsExact is the property from the matching contract:
// without wildcards and without a leading dot, matching is equality.
func TestNoWildcardEqualsExact(t *testing.T) {
	filenames := []string{"a.txt", "b.jpg", "notes", "a", ""}
	patterns := []string{"a.txt", "notes", "b", "a"}

	for _, f := range filenames {
		for _, p := range patterns {
			if got := Matches(f, p); got != (f == p) {
				t.Errorf("Matches(%q, %q) = %v, expected %v", f, p, got, f == p)
			}
		}
	}
}

// TestTranslate verifies the glob-to-regexp translation directly
func TestTranslate(t *testing.T) {
	tests := []struct {
		pattern  string
		expected string
	}{
		{"*.txt", `.*\.txt`},
		{"log?.txt", `log.\.txt`},
		{"**/*.log", `.*\.log`},
		{"a+b", `a\+b`},
		{"file(1)", `file\(1\)`},
	}

	for _, tt := range tests {
		if got := translate(tt.pattern); got != tt.expected {
			t.Errorf("translate(%q) = %q, expected %q", tt.pattern, got, tt.expected)
		}
	}
}
