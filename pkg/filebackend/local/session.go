package local

import (
	"context"

	"github.com/f9labs/gofilebackend/pkg/filebackend"
)

// storeSession implements filebackend.Session for the Local Store,
// releasing the store's process lock on Close.
type storeSession struct {
	guard interface{ Release() error }
}

// Close implements filebackend.Session.Close.
func (h *storeSession) Close() error {
	return h.guard.Release()
}

// SyncSession implements filebackend.Backend.SyncSession. It blocks until
// the store's process lock is acquired or timeout elapses, and returns a
// handle whose Close releases it.
func (s *Store) SyncSession(ctx context.Context, timeout *float64) (filebackend.Session, error) {
	guard, err := s.lock.Acquire(timeout)
	if err != nil {
		return nil, err
	}
	return &storeSession{guard: guard}, nil
}
