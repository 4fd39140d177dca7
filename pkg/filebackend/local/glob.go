package local

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob implements filebackend.Backend.Glob.
func (s *Store) Glob(ctx context.Context, pattern string, includeDirs bool) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(s.root), pattern)
	if err != nil {
		return nil, err
	}

	var results []string
	for _, match := range matches {
		if !includeDirs {
			info, err := os.Lstat(s.absoluteFromRelative(match))
			if err != nil {
				continue
			}
			if info.IsDir() {
				continue
			}
		}
		results = append(results, match)
	}

	sort.Strings(results)
	return results, nil
}

// absoluteFromRelative joins a root-relative, slash-form path (as produced
// by doublestar) back to an absolute, OS-native path.
func (s *Store) absoluteFromRelative(relative string) string {
	return filepath.Join(s.root, filepath.FromSlash(relative))
}
