// Package locking implements the cross-platform, cross-process advisory
// lock that backs the Process Lock component: a reentrant, timed lock keyed
// by a file on disk.
package locking

import (
	"os"

	"github.com/pkg/errors"
)

// Locker provides low-level file locking facilities: a single OS-level
// advisory lock keyed by an open file handle. It has no notion of
// reentrancy; that's layered on top by ProcessLock.
type Locker struct {
	// file is the underlying file object to be locked.
	file *os.File
	// held tracks whether Lock has succeeded without a matching Unlock.
	held bool
}

// NewLocker attempts to open (creating if necessary) the file at the
// specified path for locking. The lock is returned in an unlocked state.
func NewLocker(path string, permissions os.FileMode) (*Locker, error) {
	mode := os.O_RDWR | os.O_CREATE | os.O_APPEND
	file, err := os.OpenFile(path, mode, permissions)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open lock file")
	}
	return &Locker{file: file}, nil
}

// Held reports whether this Locker currently holds the underlying OS lock.
func (l *Locker) Held() bool {
	return l.held
}

// Close closes the underlying file handle. It does not release the lock;
// callers should Unlock first.
func (l *Locker) Close() error {
	return l.file.Close()
}
