package filebackend

import "context"

// Backend is the core file-operation capability set implemented by any
// storage provider rooted at a single anchor directory: on-disk CRUD,
// streaming, metadata, glob, and hashing.
type Backend interface {
	// Create writes data at path. If isDirectory is true, data is ignored
	// and a directory is created (idempotently). If a file already exists
	// at path and overwrite is false, Create fails with ErrAlreadyExists.
	Create(ctx context.Context, path string, data []byte, isDirectory, overwrite bool) (*FileInfo, error)

	// Read returns the contents at path. If binary is false, the contents
	// must decode as valid UTF-8 text or Read fails.
	Read(ctx context.Context, path string, binary bool) ([]byte, error)

	// Update replaces (or, if append is true, concatenates to) the contents
	// of the existing file at path.
	Update(ctx context.Context, path string, data []byte, appendData bool) (*FileInfo, error)

	// Delete removes the entry at path. Non-empty directories require
	// recursive to be true.
	Delete(ctx context.Context, path string, recursive bool) error

	// Info returns metadata for the entry at path.
	Info(ctx context.Context, path string) (*FileInfo, error)

	// StreamRead returns a lazy, forward-only, finite ChunkSource over the
	// contents at path, yielding chunks of approximately chunkSize bytes.
	StreamRead(ctx context.Context, path string, chunkSize int, binary bool) (ChunkSource, error)

	// StreamWrite consumes source sequentially and writes it to path,
	// subject to the same existence and type rules as Create.
	StreamWrite(ctx context.Context, path string, source ChunkSource, chunkSize int, overwrite bool) (*FileInfo, error)

	// Checksum computes a content digest for path using algorithm.
	Checksum(ctx context.Context, path string, algorithm ChecksumAlgorithm) (string, error)

	// ChecksumMany computes digests for a set of paths, silently skipping
	// entries that are missing or are directories. The returned map is
	// keyed by the caller's original path string, verbatim.
	ChecksumMany(ctx context.Context, paths []string, algorithm ChecksumAlgorithm) (map[string]string, error)

	// Glob matches pattern against paths rooted at the backend root,
	// supporting "*", "?", "[...]", and recursive "**". Results are
	// deterministically sorted and relative to the root.
	Glob(ctx context.Context, pattern string, includeDirs bool) ([]string, error)

	// SyncSession acquires the process lock for the duration of the
	// returned Session, blocking until acquired or timeout elapses.
	SyncSession(ctx context.Context, timeout *float64) (Session, error)
}

// Session is a scoped handle returned by Backend.SyncSession. Its lock is
// released when Close is called; callers must always call Close, typically
// via defer.
type Session interface {
	// Close releases the process lock held by the session.
	Close() error
}

// SyncBackend extends Backend with bidirectional synchronisation against a
// remote version-control endpoint.
type SyncBackend interface {
	Backend

	// Push stages and commits any working-tree changes (using message, or
	// "Sync changes" if message is empty) and pushes the configured branch
	// to the remote. It fails with *SyncError if unresolved conflicts
	// exist.
	Push(ctx context.Context, message string) error

	// Pull fetches the remote branch and merges it into the local branch.
	// It fails with *SyncError if unresolved conflicts exist, the working
	// tree is not clean, or the merge itself fails.
	Pull(ctx context.Context) error

	// Sync performs Pull followed by Push.
	Sync(ctx context.Context) error

	// ConflictReport returns the set of paths the VCS collaborator
	// currently reports as unmerged.
	ConflictReport(ctx context.Context) ([]SyncConflict, error)

	// ConflictAcceptLocal resolves the conflict at path by keeping the
	// local ("ours") side.
	ConflictAcceptLocal(ctx context.Context, path string) error

	// ConflictAcceptRemote resolves the conflict at path by keeping the
	// remote ("theirs") side.
	ConflictAcceptRemote(ctx context.Context, path string) error

	// ConflictResolve resolves the conflict at path by overwriting it with
	// data and staging the result.
	ConflictResolve(ctx context.Context, path string, data []byte) error
}
