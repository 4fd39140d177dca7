package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/f9labs/gofilebackend/pkg/filebackend"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	store, err := NewStore(root, false, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestNewStoreCreateIfMissing(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "root")
	if _, err := NewStore(root, false, nil); err == nil {
		t.Fatalf("expected error for missing root without createIfMissing")
	}
	store, err := NewStore(root, true, nil)
	if err != nil {
		t.Fatalf("NewStore with createIfMissing failed: %v", err)
	}
	if _, err := os.Stat(store.Root()); err != nil {
		t.Fatalf("expected root to exist: %v", err)
	}
}

func TestNewStoreRejectsFileRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(root, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(root, true, nil); err == nil {
		t.Fatalf("expected error when root is a regular file")
	}
}

func TestCreateReadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	info, err := store.Create(ctx, "greeting.txt", []byte("hello"), false, false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if info.IsDir || info.Size != 5 {
		t.Fatalf("unexpected info: %+v", info)
	}

	data, err := store.Read(ctx, "greeting.txt", false)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q, want %q", data, "hello")
	}
}

func TestCreateDuplicateWithoutOverwriteFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "a.txt", []byte("1"), false, false); err != nil {
		t.Fatal(err)
	}
	_, err := store.Create(ctx, "a.txt", []byte("2"), false, false)
	if err != filebackend.ErrAlreadyExists {
		t.Fatalf("got %v, want ErrAlreadyExists", err)
	}
}

func TestCreateOverwriteSucceeds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "a.txt", []byte("1"), false, false); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(ctx, "a.txt", []byte("22"), false, true); err != nil {
		t.Fatalf("overwrite Create failed: %v", err)
	}
	data, err := store.Read(ctx, "a.txt", false)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "22" {
		t.Fatalf("got %q, want %q", data, "22")
	}
}

func TestCreateDirectoryIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "dir", nil, true, false); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := store.Create(ctx, "dir", nil, true, false); err != nil {
		t.Fatalf("second Create (idempotent) failed: %v", err)
	}
}

func TestCreateFileOverDirectoryFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "dir", nil, true, false); err != nil {
		t.Fatal(err)
	}
	_, err := store.Create(ctx, "dir", []byte("x"), false, true)
	var invalid *filebackend.InvalidOperationError
	if !asInvalidOperation(err, &invalid) || invalid.Kind != filebackend.KindCannotOverwriteDirectoryWithFile {
		t.Fatalf("got %v, want KindCannotOverwriteDirectoryWithFile", err)
	}
}

func TestCreateDirectoryOverFileFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "a.txt", []byte("x"), false, false); err != nil {
		t.Fatal(err)
	}
	_, err := store.Create(ctx, "a.txt", nil, true, false)
	var invalid *filebackend.InvalidOperationError
	if !asInvalidOperation(err, &invalid) || invalid.Kind != filebackend.KindCannotOverwriteFileWithDirectory {
		t.Fatalf("got %v, want KindCannotOverwriteFileWithDirectory", err)
	}
}

func TestReadMissingReturnsNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Read(context.Background(), "missing.txt", false)
	if err != filebackend.ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestReadDirectoryFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Create(ctx, "dir", nil, true, false); err != nil {
		t.Fatal(err)
	}
	_, err := store.Read(ctx, "dir", false)
	var invalid *filebackend.InvalidOperationError
	if !asInvalidOperation(err, &invalid) || invalid.Kind != filebackend.KindCannotReadDirectory {
		t.Fatalf("got %v, want KindCannotReadDirectory", err)
	}
}

func TestReadNonUTF8RejectedUnlessBinary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	invalidUTF8 := []byte{0xff, 0xfe, 0x00}

	if _, err := store.Create(ctx, "bin.dat", invalidUTF8, false, false); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Read(ctx, "bin.dat", false); err == nil {
		t.Fatalf("expected error decoding invalid UTF-8 as text")
	}
	data, err := store.Read(ctx, "bin.dat", true)
	if err != nil {
		t.Fatalf("binary Read failed: %v", err)
	}
	if len(data) != len(invalidUTF8) {
		t.Fatalf("got %d bytes, want %d", len(data), len(invalidUTF8))
	}
}

func TestUpdateAppend(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "log.txt", []byte("a"), false, false); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Update(ctx, "log.txt", []byte("b"), true); err != nil {
		t.Fatalf("Update append failed: %v", err)
	}
	data, err := store.Read(ctx, "log.txt", false)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ab" {
		t.Fatalf("got %q, want %q", data, "ab")
	}
}

func TestUpdateReplace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "log.txt", []byte("a"), false, false); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Update(ctx, "log.txt", []byte("z"), false); err != nil {
		t.Fatalf("Update replace failed: %v", err)
	}
	data, err := store.Read(ctx, "log.txt", false)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "z" {
		t.Fatalf("got %q, want %q", data, "z")
	}
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Update(context.Background(), "missing.txt", []byte("x"), false)
	if err != filebackend.ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "a.txt", []byte("x"), false, false); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "a.txt", false); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Read(ctx, "a.txt", false); err != filebackend.ErrNotFound {
		t.Fatalf("expected file to be gone, got %v", err)
	}
}

func TestDeleteNonEmptyDirectoryRequiresRecursive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "dir", nil, true, false); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(ctx, "dir/a.txt", []byte("x"), false, false); err != nil {
		t.Fatal(err)
	}

	err := store.Delete(ctx, "dir", false)
	var invalid *filebackend.InvalidOperationError
	if !asInvalidOperation(err, &invalid) || invalid.Kind != filebackend.KindDirectoryNotEmpty {
		t.Fatalf("got %v, want KindDirectoryNotEmpty", err)
	}

	if err := store.Delete(ctx, "dir", true); err != nil {
		t.Fatalf("recursive Delete failed: %v", err)
	}
}

func TestDeleteMissingReturnsNotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.Delete(context.Background(), "missing", false)
	if err != filebackend.ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPathEscapeRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, err := store.Create(ctx, "../escape.txt", []byte("x"), false, false)
	if err == nil {
		t.Fatalf("expected error escaping store root")
	}
}

// asInvalidOperation is a small type-assertion helper kept local to the test
// file; unlike errors.As, it does not unwrap err.
func asInvalidOperation(err error, target **filebackend.InvalidOperationError) bool {
	invalid, ok := err.(*filebackend.InvalidOperationError)
	if !ok {
		return false
	}
	*target = invalid
	return true
}
