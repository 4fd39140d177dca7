package buildinfo

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// SourceTreePath computes the path to the root of the module's source tree
// by walking up from this file's own location (captured at compile time via
// runtime.Caller) until it finds a directory containing a go.mod file. It's
// used by tests that need to shell out to "go run" against a package within
// this module.
func SourceTreePath() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("unable to determine caller information")
	}

	directory := filepath.Dir(file)
	for {
		if _, err := os.Stat(filepath.Join(directory, "go.mod")); err == nil {
			return directory, nil
		}
		parent := filepath.Dir(directory)
		if parent == directory {
			return "", errors.New("unable to locate module root")
		}
		directory = parent
	}
}
