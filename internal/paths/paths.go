// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Expand resolves a configured path to one the filesystem understands.
//
// Input normalization:
//   - "" -> "" (unset stays unset)
//   - "~" -> home directory
//   - "~/rules.db" -> "<home>/rules.db"
//   - "$XDG_DATA_HOME/phonrule.db" -> environment variables expanded
//   - "a/../b.yaml" -> "b.yaml"
//
// "~user" forms are not supported and are returned cleaned but otherwise
// unchanged.
func Expand(path string) string {
	if path == "" {
		return ""
	}
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return filepath.Clean(path)
}

// RelativeTo resolves a relative path against the directory holding file,
// so paths in a config file mean the same from any working directory.
// Absolute paths and an empty file are returned as given.
func RelativeTo(file, path string) string {
	if path == "" || file == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(file), path)
}
