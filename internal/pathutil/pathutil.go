package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves the home-directory shorthand ("~/...") to an absolute
// path. Any other input is returned as-is; relative paths are resolved
// against the working directory by the filesystem layer, not here.
//
// If the home directory cannot be determined the shorthand is left in place
// and the path is returned unexpanded. Callers that need a hard guarantee
// should tighten this, but the soft fallback is the documented contract.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, path[2:])
}

// HumanReadableSize formats a byte count as "1.5 MB" style output.
func HumanReadableSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
