// Package local implements the Local Store: on-disk CRUD, streaming,
// metadata, glob matching, and hashing rooted at a directory, satisfying
// filebackend.Backend.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/f9labs/gofilebackend/pkg/filebackend"
	"github.com/f9labs/gofilebackend/pkg/filebackend/locking"
	"github.com/f9labs/gofilebackend/pkg/filebackend/pathsafety"
	"github.com/f9labs/gofilebackend/pkg/logging"
)

const (
	// lockFileName is the conventional name of the hidden process-lock file
	// kept at the top level of the backend root.
	lockFileName = ".backend.lock"
	// defaultFilePermissions are the permissions applied to newly created
	// regular files.
	defaultFilePermissions = 0644
	// defaultDirectoryPermissions are the permissions applied to newly
	// created directories.
	defaultDirectoryPermissions = 0755
)

// Store implements filebackend.Backend against a directory on the local
// filesystem. It exclusively owns a locking.ProcessLock keyed by a hidden
// lock file at the root of its tree.
type Store struct {
	// root is the absolute, resolved path anchoring this store's virtual
	// filesystem.
	root string
	// lock is this store's process lock, used by SyncSession.
	lock *locking.ProcessLock
	// log is the optional logger for this store.
	log *logging.Logger
}

// NewStore creates a Local Store rooted at root. If createIfMissing is
// true, root is created (along with any missing parents) if it doesn't
// already exist; otherwise a missing root is an error.
func NewStore(root string, createIfMissing bool, log *logging.Logger) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot = filepath.Clean(absRoot)

	if info, err := os.Stat(absRoot); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if !createIfMissing {
			return nil, err
		}
		if err := os.MkdirAll(absRoot, defaultDirectoryPermissions); err != nil {
			return nil, err
		}
	} else if !info.IsDir() {
		return nil, &filebackend.InvalidOperationError{Kind: filebackend.KindCannotOverwriteFileWithDirectory, Path: root}
	}

	return &Store{
		root: absRoot,
		lock: locking.NewProcessLock(filepath.Join(absRoot, lockFileName), log),
		log:  log,
	}, nil
}

// Root returns the absolute path anchoring this store.
func (s *Store) Root() string {
	return s.root
}

// resolve validates and resolves a caller-supplied path against this
// store's root.
func (s *Store) resolve(path string) (string, error) {
	return pathsafety.Resolve(s.root, path)
}

// toRelative converts an absolute, resolved path back to a POSIX-form path
// relative to the store's root.
func (s *Store) toRelative(absolute string) string {
	rel, err := filepath.Rel(s.root, absolute)
	if err != nil {
		return absolute
	}
	return filepath.ToSlash(rel)
}

// RelativePath validates path against the store's root and returns its
// canonical, POSIX-form, root-relative representation. It is used by
// collaborators (such as the Sync Engine) that need to hand a path to an
// external tool addressed relative to the store's root.
func (s *Store) RelativePath(path string) (string, error) {
	resolved, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	return s.toRelative(resolved), nil
}

// Create implements filebackend.Backend.Create.
func (s *Store) Create(ctx context.Context, path string, data []byte, isDirectory, overwrite bool) (*filebackend.FileInfo, error) {
	resolved, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	if err := ensureParentIsDirectory(resolved); err != nil {
		return nil, err
	}

	existing, statErr := os.Lstat(resolved)
	exists := statErr == nil

	if isDirectory {
		if exists && !existing.IsDir() {
			return nil, &filebackend.InvalidOperationError{Kind: filebackend.KindCannotOverwriteFileWithDirectory, Path: path}
		}
		if !exists {
			if err := os.MkdirAll(resolved, defaultDirectoryPermissions); err != nil {
				return nil, err
			}
		}
		s.log.Debugf("created directory %s", path)
		return s.Info(ctx, path)
	}

	if exists && existing.IsDir() {
		return nil, &filebackend.InvalidOperationError{Kind: filebackend.KindCannotOverwriteDirectoryWithFile, Path: path}
	}
	if exists && !overwrite {
		return nil, filebackend.ErrAlreadyExists
	}

	if err := writeFileAtomic(resolved, data, defaultFilePermissions, s.log); err != nil {
		return nil, err
	}
	s.log.Debugf("created file %s (%s)", path, humanize.Bytes(uint64(len(data))))

	return s.Info(ctx, path)
}

// Read implements filebackend.Backend.Read.
func (s *Store) Read(ctx context.Context, path string, binary bool) ([]byte, error) {
	resolved, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Lstat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, filebackend.ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, &filebackend.InvalidOperationError{Kind: filebackend.KindCannotReadDirectory, Path: path}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, err
	}

	if !binary && !isValidUTF8(data) {
		return nil, fmt.Errorf("contents of %s do not decode as valid UTF-8", path)
	}

	return data, nil
}

// Update implements filebackend.Backend.Update.
func (s *Store) Update(ctx context.Context, path string, data []byte, appendData bool) (*filebackend.FileInfo, error) {
	resolved, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Lstat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, filebackend.ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, &filebackend.InvalidOperationError{Kind: filebackend.KindCannotUpdateDirectory, Path: path}
	}

	final := data
	if appendData {
		existing, err := os.ReadFile(resolved)
		if err != nil {
			return nil, err
		}
		final = append(append([]byte{}, existing...), data...)
	}

	permissions := info.Mode().Perm()
	if err := writeFileAtomic(resolved, final, permissions, s.log); err != nil {
		return nil, err
	}
	s.log.Debugf("updated file %s (%s written, append=%v, total now %s)", path, humanize.Bytes(uint64(len(data))), appendData, humanize.Bytes(uint64(len(final))))

	return s.Info(ctx, path)
}

// Delete implements filebackend.Backend.Delete.
func (s *Store) Delete(ctx context.Context, path string, recursive bool) error {
	resolved, err := s.resolve(path)
	if err != nil {
		return err
	}

	info, err := os.Lstat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return filebackend.ErrNotFound
		}
		return err
	}

	if info.IsDir() {
		if !recursive {
			entries, err := os.ReadDir(resolved)
			if err != nil {
				return err
			}
			if len(entries) > 0 {
				return &filebackend.InvalidOperationError{Kind: filebackend.KindDirectoryNotEmpty, Path: path}
			}
			if err := os.Remove(resolved); err != nil {
				return err
			}
			s.log.Debugf("deleted empty directory %s", path)
			return nil
		}
		if err := os.RemoveAll(resolved); err != nil {
			return err
		}
		s.log.Debugf("deleted directory tree %s", path)
		return nil
	}

	if err := os.Remove(resolved); err != nil {
		return err
	}
	s.log.Debugf("deleted file %s", path)
	return nil
}

// ensureParentIsDirectory creates missing ancestor directories for resolved
// and fails with KindParentNotDirectory if an existing ancestor isn't a
// directory.
func ensureParentIsDirectory(resolved string) error {
	parent := filepath.Dir(resolved)
	info, err := os.Stat(parent)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(parent, defaultDirectoryPermissions)
		}
		return err
	}
	if !info.IsDir() {
		return &filebackend.InvalidOperationError{Kind: filebackend.KindParentNotDirectory, Path: parent}
	}
	return nil
}
