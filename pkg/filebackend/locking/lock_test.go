package locking

import (
	"bufio"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/f9labs/gofilebackend/pkg/buildinfo"
)

func TestProcessLockAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "backend.lock")
	lock := NewProcessLock(path, nil)

	guard, err := lock.Acquire(nil)
	if err != nil {
		t.Fatal("unable to acquire lock:", err)
	}
	if err := guard.Release(); err != nil {
		t.Fatal("unable to release lock:", err)
	}
}

func TestProcessLockReentrant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backend.lock")
	lock := NewProcessLock(path, nil)

	first, err := lock.Acquire(nil)
	if err != nil {
		t.Fatal("unable to acquire lock:", err)
	}
	second, err := lock.Acquire(nil)
	if err != nil {
		t.Fatal("unable to reentrantly acquire lock:", err)
	}

	if lock.count != 2 {
		t.Errorf("expected reentry count 2, got %d", lock.count)
	}

	if err := second.Release(); err != nil {
		t.Fatal("unable to release reentrant acquisition:", err)
	}
	if lock.count != 1 {
		t.Errorf("expected reentry count 1 after one release, got %d", lock.count)
	}

	if err := first.Release(); err != nil {
		t.Fatal("unable to release final acquisition:", err)
	}
	if lock.count != 0 {
		t.Errorf("expected reentry count 0 after balanced release, got %d", lock.count)
	}
}

func TestProcessLockExcessiveReleaseIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backend.lock")
	lock := NewProcessLock(path, nil)

	guard, err := lock.Acquire(nil)
	if err != nil {
		t.Fatal("unable to acquire lock:", err)
	}
	if err := guard.Release(); err != nil {
		t.Fatal("unable to release lock:", err)
	}
	if err := guard.Release(); err != nil {
		t.Fatal("excessive release should be a no-op, not an error:", err)
	}
}

// TestProcessLockTimeoutAcrossProcesses verifies that a ProcessLock waiting
// on a file held by a different process fails with ErrLockTimeout once its
// timeout elapses. This has to be cross-process: POSIX advisory locks are
// scoped per-process, so two ProcessLock instances in the same process
// would not contend with each other the way two separate processes do.
func TestProcessLockTimeoutAcrossProcesses(t *testing.T) {
	sourcePath, err := buildinfo.SourceTreePath()
	if err != nil {
		t.Fatal("unable to compute path to module source tree:", err)
	}

	lockPath := filepath.Join(t.TempDir(), "backend.lock")

	holder := exec.Command("go", "run", lockTestExecutablePackage, lockPath, "2")
	holder.Dir = sourcePath
	stdout, err := holder.StdoutPipe()
	if err != nil {
		t.Fatal("unable to capture holder stdout:", err)
	}
	if err := holder.Start(); err != nil {
		t.Fatal("unable to start holder process:", err)
	}
	defer holder.Wait()

	scanner := bufio.NewScanner(stdout)
	if !scanner.Scan() {
		t.Fatal("holder process did not report acquisition")
	}

	contender := NewProcessLock(lockPath, nil)
	timeout := 0.2
	start := time.Now()
	if _, err := contender.Acquire(&timeout); err == nil {
		t.Fatal("expected lock acquisition to time out")
	}
	if elapsed := time.Since(start); elapsed < time.Duration(timeout*float64(time.Second)) {
		t.Errorf("acquisition failed before timeout elapsed: %v", elapsed)
	}
}
