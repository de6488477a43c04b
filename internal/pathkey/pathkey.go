// Package pathkey canonicalizes user-supplied workbook paths into stable
// cache keys. Two textual paths that denote the same file must normalize to
// the same key.
package pathkey

import (
	"os"
	"path/filepath"
	"strings"
)

// Normalize expands a leading tilde and resolves the path to a cleaned
// absolute form. It never fails: inputs that cannot be resolved are returned
// cleaned as-is and left for file I/O to reject.
func Normalize(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			if path == "~" {
				path = home
			} else if len(path) > 1 && (path[1] == '/' || path[1] == '\\') {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	cleaned := filepath.Clean(path)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return cleaned
	}
	return absolute
}
