package locking

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/f9labs/gofilebackend/pkg/filebackend"
	"github.com/f9labs/gofilebackend/pkg/identifier"
	"github.com/f9labs/gofilebackend/pkg/logging"
	"github.com/f9labs/gofilebackend/pkg/process"
)

// maxRetryInterval bounds the sleep between non-blocking acquisition
// attempts, per the algorithm in the Process Lock component design.
const maxRetryInterval = 100 * time.Millisecond

// currentProcessName returns a best-effort, platform-normalised name for the
// current process, for pairing with ownerPID in debug logs. It derives the
// base name of the running executable and reconstructs it through
// process.ExecutableName so the reported name always carries the correct
// platform suffix, even if the raw path from os.Executable doesn't (e.g. a
// binary invoked through an extension-less symlink on Windows). Returns ""
// if the executable path can't be determined.
func currentProcessName() string {
	executable, err := os.Executable()
	if err != nil {
		return ""
	}
	base := filepath.Base(executable)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return process.ExecutableName(base, runtime.GOOS)
}

// ProcessLock is a cross-process, cross-platform, reentrant, timed
// advisory lock keyed by a file on disk. Reentrancy is recognised by
// process identity: any number of acquisitions from the same process
// succeed immediately once the process holds the lock, and must be
// balanced by an equal number of releases before the OS-level lock is
// actually released.
//
// A ProcessLock is safe for concurrent use by multiple goroutines within a
// single process: it serialises acquisition attempts with an internal
// mutex, and reentry is defined at the process level, not the goroutine
// level.
type ProcessLock struct {
	// path is the path to the lock file.
	path string
	// log is the optional logger for this lock.
	log *logging.Logger

	// mu serialises access to the fields below.
	mu sync.Mutex
	// locker is the open, currently-held Locker, nil when the record is
	// Idle.
	locker *Locker
	// count is the current reentry depth. Zero means Idle.
	count int
	// ownerPID is the process ID that currently holds the lock, valid only
	// when count > 0.
	ownerPID int
	// correlationID identifies the current hold for log correlation,
	// valid only when count > 0.
	correlationID string
}

// NewProcessLock creates a ProcessLock keyed by the file at path. The lock
// starts in the Idle state; no file is created or opened until Acquire is
// called.
func NewProcessLock(path string, log *logging.Logger) *ProcessLock {
	return &ProcessLock{path: path, log: log}
}

// Guard represents a held ProcessLock acquisition. Release must be called
// exactly once, typically via defer, on every exit path from the scope it
// protects.
type Guard struct {
	lock *ProcessLock
}

// Release releases one level of reentrancy on the lock that produced this
// guard. Calling Release more times than the lock was acquired is a
// programming error; it is a no-op rather than a panic, per the Process
// Lock invariants.
func (g *Guard) Release() error {
	return g.lock.release()
}

// Acquire attempts to acquire the lock, blocking until it succeeds or
// timeout elapses. A nil timeout means block indefinitely (subject only to
// non-transient failures surfacing as *filebackend.LockError). A timeout of
// zero means a single non-blocking attempt.
func (l *ProcessLock) Acquire(timeout *float64) (*Guard, error) {
	pid := os.Getpid()

	l.mu.Lock()
	if l.count > 0 && l.ownerPID == pid {
		l.count++
		l.mu.Unlock()
		l.log.Debugf("reentrant acquire, depth now %d", l.count)
		return &Guard{lock: l}, nil
	}
	l.mu.Unlock()

	start := time.Now()
	for {
		acquired, transient, err := l.tryAcquire(pid)
		if acquired {
			return &Guard{lock: l}, nil
		}
		if !transient {
			return nil, &filebackend.LockError{Message: "non-transient lock failure", Path: l.path, Underlying: err}
		}

		if timeout != nil {
			elapsed := time.Since(start).Seconds()
			if elapsed >= *timeout {
				return nil, filebackend.ErrLockTimeout
			}
			remaining := *timeout - elapsed
			interval := maxRetryInterval
			if bounded := time.Duration(remaining / 10 * float64(time.Second)); bounded < interval {
				interval = bounded
			}
			if interval < 0 {
				return nil, filebackend.ErrLockTimeout
			}
			time.Sleep(interval)
		} else {
			time.Sleep(maxRetryInterval)
		}
	}
}

// tryAcquire performs a single non-blocking acquisition attempt. It returns
// (true, _, nil) on success. On failure it returns (false, transient, err):
// transient is true when the failure is ordinary lock contention (the
// caller should retry subject to timeout) and false when it's an
// environmental failure (missing parent, permissions) that should surface
// immediately as a LockError.
func (l *ProcessLock) tryAcquire(pid int) (bool, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return false, false, err
	}

	locker, err := NewLocker(l.path, 0600)
	if err != nil {
		return false, false, err
	}

	if err := locker.Lock(false); err != nil {
		locker.Close()
		return false, true, err
	}

	correlationID, err := identifier.New(identifier.PrefixLock)
	if err != nil {
		locker.Unlock()
		locker.Close()
		return false, false, err
	}

	l.locker = locker
	l.count = 1
	l.ownerPID = pid
	l.correlationID = correlationID
	l.log.Debugf("acquired lock file %s (%s, owner %s pid %d)", l.path, correlationID, currentProcessName(), pid)
	return true, false, nil
}

// release decrements the reentry count, releasing the underlying OS lock
// and closing the file handle only once the count reaches zero.
func (l *ProcessLock) release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == 0 {
		// Releasing more times than acquired is a programming error; we
		// no-op rather than panic, per the Process Lock invariants.
		return nil
	}

	l.count--
	if l.count > 0 {
		l.log.Debugf("released reentrant acquire, depth now %d", l.count)
		return nil
	}

	locker := l.locker
	correlationID := l.correlationID
	l.locker = nil
	l.ownerPID = 0
	l.correlationID = ""

	if locker == nil {
		return nil
	}

	unlockErr := locker.Unlock()
	closeErr := locker.Close()
	l.log.Debugf("released lock file %s (%s, owner %s)", l.path, correlationID, currentProcessName())
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
