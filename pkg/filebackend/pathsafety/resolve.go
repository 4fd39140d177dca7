// Package pathsafety implements the normalisation and containment check
// that every other filebackend component relies on: turning a caller-
// supplied, possibly hostile relative path into an absolute path that is
// provably within a backend root.
package pathsafety

import (
	"path/filepath"
	"strings"

	"github.com/f9labs/gofilebackend/pkg/filebackend"
)

// Resolve normalises input against root and returns the resulting absolute
// path. It never requires that the target exist: the caller may be about to
// create it. It fails with *filebackend.InvalidOperationError carrying
// KindEmptyPath, KindRootPathNotAllowed, or KindPathOutsideRoot.
//
// root must already be an absolute, clean path; callers construct backends
// with an absolute root at construction time.
func Resolve(root, input string) (string, error) {
	return resolve(root, input, false)
}

// ResolveAllowRoot behaves like Resolve but permits input to resolve to the
// root itself. Most operations should use Resolve; a handful (directory
// listing internals) need to address the root directly.
func ResolveAllowRoot(root, input string) (string, error) {
	return resolve(root, input, true)
}

func resolve(root, input string, allowRoot bool) (string, error) {
	// Reject empty or whitespace-only input outright.
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", &filebackend.InvalidOperationError{Kind: filebackend.KindEmptyPath}
	}

	// Normalise platform-native separators to forward slashes.
	normalized := strings.ReplaceAll(input, "\\", "/")

	// If the path begins with a slash and doesn't already begin with the
	// absolute root, treat the leading slashes as a root-relative
	// convention and strip them.
	rootAsSlash := strings.ReplaceAll(root, "\\", "/")
	if strings.HasPrefix(normalized, "/") && !strings.HasPrefix(normalized, rootAsSlash) {
		normalized = strings.TrimLeft(normalized, "/")
		if normalized == "" {
			normalized = "."
		}
	}

	// Reject a bare reference to the root itself when disallowed. We check
	// this before join/resolve because "." and "" both mean "the root".
	if !allowRoot {
		cleanedInput := filepath.Clean(normalized)
		if cleanedInput == "." || cleanedInput == "/" {
			return "", &filebackend.InvalidOperationError{Kind: filebackend.KindRootPathNotAllowed}
		}
	}

	// Join with the root and resolve symbolically and syntactically,
	// without requiring existence.
	joined := filepath.Join(root, filepath.FromSlash(normalized))
	resolved, err := resolveSymlinks(joined)
	if err != nil {
		return "", &filebackend.InvalidOperationError{Kind: filebackend.KindPathOutsideRoot, Path: input}
	}

	// Check containment: resolved must be the root or a descendant of it.
	if !isWithin(root, resolved) {
		return "", &filebackend.InvalidOperationError{Kind: filebackend.KindPathOutsideRoot, Path: input}
	}

	return resolved, nil
}

// isWithin reports whether candidate is equal to root or a descendant of
// it, using lexical (already-cleaned) paths.
func isWithin(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
