package vcssync

import (
	"context"
	"fmt"

	"github.com/f9labs/gofilebackend/pkg/filebackend"
	"github.com/f9labs/gofilebackend/pkg/identifier"
)

// insideSession reports whether the engine is currently inside a sync
// session, during which per-operation auto-sync is suppressed.
func (e *Engine) insideSession() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inSession
}

func (e *Engine) setInSession(value bool) {
	e.mu.Lock()
	e.inSession = value
	e.mu.Unlock()
}

// maybeAutoPull invokes Pull before a read-family operation when AutoPull is
// enabled and the engine is not inside a session.
func (e *Engine) maybeAutoPull(ctx context.Context) error {
	if !e.options.AutoPull || e.insideSession() {
		return nil
	}
	return e.Pull(ctx)
}

// maybeAutoPush invokes Push after a successful write-family operation when
// AutoPush is enabled and the engine is not inside a session.
func (e *Engine) maybeAutoPush(ctx context.Context, message string) error {
	if !e.options.AutoPush || e.insideSession() {
		return nil
	}
	return e.Push(ctx, message)
}

// Create implements filebackend.Backend.Create, forwarding to the Local
// Store and auto-pushing on success when configured.
func (e *Engine) Create(ctx context.Context, path string, data []byte, isDirectory, overwrite bool) (*filebackend.FileInfo, error) {
	info, err := e.store.Create(ctx, path, data, isDirectory, overwrite)
	if err != nil {
		return nil, err
	}
	if err := e.maybeAutoPush(ctx, fmt.Sprintf("create %s", path)); err != nil {
		return nil, err
	}
	return info, nil
}

// Read implements filebackend.Backend.Read, auto-pulling first when
// configured.
func (e *Engine) Read(ctx context.Context, path string, binary bool) ([]byte, error) {
	if err := e.maybeAutoPull(ctx); err != nil {
		return nil, err
	}
	return e.store.Read(ctx, path, binary)
}

// Update implements filebackend.Backend.Update, auto-pushing on success
// when configured.
func (e *Engine) Update(ctx context.Context, path string, data []byte, appendData bool) (*filebackend.FileInfo, error) {
	info, err := e.store.Update(ctx, path, data, appendData)
	if err != nil {
		return nil, err
	}
	if err := e.maybeAutoPush(ctx, fmt.Sprintf("update %s", path)); err != nil {
		return nil, err
	}
	return info, nil
}

// Delete implements filebackend.Backend.Delete, auto-pushing on success when
// configured.
func (e *Engine) Delete(ctx context.Context, path string, recursive bool) error {
	if err := e.store.Delete(ctx, path, recursive); err != nil {
		return err
	}
	return e.maybeAutoPush(ctx, fmt.Sprintf("delete %s", path))
}

// Info implements filebackend.Backend.Info, auto-pulling first when
// configured.
func (e *Engine) Info(ctx context.Context, path string) (*filebackend.FileInfo, error) {
	if err := e.maybeAutoPull(ctx); err != nil {
		return nil, err
	}
	return e.store.Info(ctx, path)
}

// StreamRead implements filebackend.Backend.StreamRead, auto-pulling first
// when configured.
func (e *Engine) StreamRead(ctx context.Context, path string, chunkSize int, binary bool) (filebackend.ChunkSource, error) {
	if err := e.maybeAutoPull(ctx); err != nil {
		return nil, err
	}
	return e.store.StreamRead(ctx, path, chunkSize, binary)
}

// StreamWrite implements filebackend.Backend.StreamWrite, auto-pushing on
// success when configured.
func (e *Engine) StreamWrite(ctx context.Context, path string, source filebackend.ChunkSource, chunkSize int, overwrite bool) (*filebackend.FileInfo, error) {
	info, err := e.store.StreamWrite(ctx, path, source, chunkSize, overwrite)
	if err != nil {
		return nil, err
	}
	if err := e.maybeAutoPush(ctx, fmt.Sprintf("stream_write %s", path)); err != nil {
		return nil, err
	}
	return info, nil
}

// Checksum implements filebackend.Backend.Checksum, delegating unchanged.
func (e *Engine) Checksum(ctx context.Context, path string, algorithm filebackend.ChecksumAlgorithm) (string, error) {
	return e.store.Checksum(ctx, path, algorithm)
}

// ChecksumMany implements filebackend.Backend.ChecksumMany, delegating
// unchanged.
func (e *Engine) ChecksumMany(ctx context.Context, paths []string, algorithm filebackend.ChecksumAlgorithm) (map[string]string, error) {
	return e.store.ChecksumMany(ctx, paths, algorithm)
}

// Glob implements filebackend.Backend.Glob, delegating unchanged.
func (e *Engine) Glob(ctx context.Context, pattern string, includeDirs bool) ([]string, error) {
	return e.store.Glob(ctx, pattern, includeDirs)
}

// SyncSession implements filebackend.Backend.SyncSession per the Session
// Policy: acquire the Local Store's process lock, set the session flag, and
// optionally pull once; the returned Session's Close optionally pushes once
// with "Batch sync changes", clears the session flag unconditionally, and
// releases the lock.
func (e *Engine) SyncSession(ctx context.Context, timeout *float64) (filebackend.Session, error) {
	inner, err := e.store.SyncSession(ctx, timeout)
	if err != nil {
		return nil, err
	}

	e.setInSession(true)

	correlationID, err := identifier.New(identifier.PrefixSession)
	if err != nil {
		e.setInSession(false)
		inner.Close()
		return nil, err
	}
	e.log.Debugf("entering sync session %s for %s", correlationID, e.workdir)

	if e.options.AutoPull {
		if err := e.Pull(ctx); err != nil {
			e.setInSession(false)
			inner.Close()
			return nil, err
		}
	}

	return &engineSession{engine: e, ctx: ctx, inner: inner, correlationID: correlationID}, nil
}

// engineSession implements filebackend.Session for the Sync Engine.
type engineSession struct {
	engine        *Engine
	ctx           context.Context
	inner         filebackend.Session
	correlationID string
}

// Close implements filebackend.Session.Close: optionally push once, then
// unconditionally clear the session flag and release the process lock.
func (s *engineSession) Close() error {
	var pushErr error
	if s.engine.options.AutoPush {
		pushErr = s.engine.Push(s.ctx, "Batch sync changes")
	}

	s.engine.setInSession(false)
	s.engine.log.Debugf("exiting sync session %s", s.correlationID)

	if closeErr := s.inner.Close(); closeErr != nil {
		return closeErr
	}
	return pushErr
}
