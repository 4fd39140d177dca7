package pathsafety

import (
	"os"
	"path/filepath"
)

// resolveSymlinks resolves symbolic links along path without requiring that
// path itself exist. It walks the path component by component, resolving
// symlinks on existing ancestors via filepath.EvalSymlinks, and appends any
// trailing components that don't yet exist unresolved. This lets create-
// style operations target a path that doesn't exist yet while still
// catching symlink escapes in the portions of the path that do exist.
func resolveSymlinks(path string) (string, error) {
	cleaned := filepath.Clean(path)

	// Find the longest existing ancestor.
	existing := cleaned
	var suffix []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			// Reached the filesystem root without finding an existing
			// ancestor; nothing to resolve.
			existing = parent
			break
		}
		suffix = append([]string{filepath.Base(existing)}, suffix...)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}

	for _, component := range suffix {
		resolved = filepath.Join(resolved, component)
	}

	return resolved, nil
}
