package local

import (
	"context"
	"testing"
)

func TestGlobMatchesNestedFiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, path := range []string{"a.txt", "sub/b.txt", "sub/deeper/c.txt", "sub/notes.md"} {
		if _, err := store.Create(ctx, path, []byte("x"), false, false); err != nil {
			t.Fatal(err)
		}
	}

	matches, err := store.Glob(ctx, "**/*.txt", false)
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	want := []string{"a.txt", "sub/b.txt", "sub/deeper/c.txt"}
	if len(matches) != len(want) {
		t.Fatalf("got %v, want %v", matches, want)
	}
	for i, m := range want {
		if matches[i] != m {
			t.Fatalf("got %v, want %v", matches, want)
		}
	}
}

func TestGlobExcludesDirectoriesByDefault(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "sub", nil, true, false); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(ctx, "sub/file.txt", []byte("x"), false, false); err != nil {
		t.Fatal(err)
	}

	matches, err := store.Glob(ctx, "*", false)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range matches {
		if m == "sub" {
			t.Fatalf("expected directory to be excluded, got %v", matches)
		}
	}

	withDirs, err := store.Glob(ctx, "*", true)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, m := range withDirs {
		if m == "sub" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected directory included when includeDirs=true, got %v", withDirs)
	}
}
