// Command locktest exercises cross-process lock contention, which can't be
// simulated within a single process because POSIX advisory locks are scoped
// per-process rather than per-file-descriptor. With one argument, it
// attempts a single non-blocking acquisition of the lock file and reports
// success or failure. With a second, numeric argument, it instead acquires
// the lock, holds it for that many seconds, then releases it; this lets a
// parent test observe genuine contention for a bounded window.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/f9labs/gofilebackend/pkg/filebackend/locking"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] == "" {
		fail(errors.New("expected a non-empty lock path argument"))
	}
	path := os.Args[1]

	var holdSeconds float64
	if len(os.Args) == 3 {
		parsed, err := strconv.ParseFloat(os.Args[2], 64)
		if err != nil {
			fail(fmt.Errorf("invalid hold duration: %w", err))
		}
		holdSeconds = parsed
	}

	locker, err := locking.NewLocker(path, 0600)
	if err != nil {
		fail(fmt.Errorf("unable to create locker: %w", err))
	}
	if err := locker.Lock(false); err != nil {
		fail(fmt.Errorf("lock acquisition failed: %w", err))
	}

	if holdSeconds > 0 {
		fmt.Println("acquired")
		time.Sleep(time.Duration(holdSeconds * float64(time.Second)))
	}

	if err := locker.Unlock(); err != nil {
		fail(fmt.Errorf("lock release failed: %w", err))
	}
	if err := locker.Close(); err != nil {
		fail(fmt.Errorf("locker closure failed: %w", err))
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
