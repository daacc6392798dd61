package safety

import (
	"io/fs"
	"path/filepath"
	"strings"

	"smartfile/internal/command"
)

// DefaultConfirmFileThreshold is the file count above which non-delete
// operations ask for confirmation.
const DefaultConfirmFileThreshold = 100

// Gate classifies paths as safe or unsafe for mutation. It is a blunt
// denylist guard, not a sandbox: matching is a plain string-prefix check on
// the resolved path, with no symlink or ".." defusing.
type Gate struct {
	SystemDirs           []string
	ConfirmFileThreshold int
}

// NewGate creates a gate with the default system-directory denylist plus any
// extra protected prefixes. threshold <= 0 selects the default.
func NewGate(extraSystemDirs []string, threshold int) *Gate {
	if threshold <= 0 {
		threshold = DefaultConfirmFileThreshold
	}
	return &Gate{
		SystemDirs:           defaultSystemDirs(extraSystemDirs),
		ConfirmFileThreshold: threshold,
	}
}

// IsSafe reports whether path may be mutated. Filesystem roots and anything
// under a denylisted system directory are rejected.
func (g *Gate) IsSafe(path string) bool {
	if isFilesystemRoot(path) {
		return false
	}
	return !g.isSystemDirectory(path)
}

// RequiresConfirmation reports whether the operation should be confirmed by
// the caller before running. Delete always requires confirmation. Other
// actions require it when the path holds more than the configured number of
// entries; the count stops as soon as the threshold is crossed. A scan
// failure counts as "no confirmation needed" — the check fails open, a
// documented caveat inherited from the original policy.
func (g *Gate) RequiresConfirmation(action, path string) bool {
	if action == command.ActionDelete {
		return true
	}

	count := 0
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		// Entries beneath the root count, not the root itself
		if p == path {
			return nil
		}
		count++
		if count > g.ConfirmFileThreshold {
			return filepath.SkipAll
		}
		return nil
	})
	return count > g.ConfirmFileThreshold
}

func (g *Gate) isSystemDirectory(path string) bool {
	for _, dir := range g.SystemDirs {
		if strings.HasPrefix(path, dir) {
			return true
		}
	}
	return false
}

// isFilesystemRoot matches "/" and Windows drive roots ("C:\", "D:/").
func isFilesystemRoot(path string) bool {
	if path == "/" {
		return true
	}
	if len(path) == 3 && path[1] == ':' && (path[2] == '\\' || path[2] == '/') {
		return true
	}
	return false
}

// defaultSystemDirs returns the base denylist plus any extras. Kept as data
// owned by the gate so tests and config can override it.
func defaultSystemDirs(extra []string) []string {
	base := []string{
		"/bin",
		"/sbin",
		"/usr",
		"/etc",
		"/var",
		"/lib",
		"/opt",
		`C:\Windows`,
		`C:\Program Files`,
		`C:\Program Files (x86)`,
	}
	return append(base, extra...)
}
