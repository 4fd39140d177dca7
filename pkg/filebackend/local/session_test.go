package local

import (
	"context"
	"testing"
)

func TestSyncSessionAcquireAndClose(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session, err := store.SyncSession(ctx, nil)
	if err != nil {
		t.Fatalf("SyncSession failed: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestSyncSessionReentrantSameProcess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.SyncSession(ctx, nil)
	if err != nil {
		t.Fatalf("first SyncSession failed: %v", err)
	}
	second, err := store.SyncSession(ctx, nil)
	if err != nil {
		t.Fatalf("reentrant SyncSession failed: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("inner Close failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("outer Close failed: %v", err)
	}
}
