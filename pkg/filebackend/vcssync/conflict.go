package vcssync

import (
	"context"
	"strings"

	"github.com/f9labs/gofilebackend/pkg/filebackend"
)

// minStatusLineLength is the shortest a `git status --porcelain` line can be
// and still carry a two-character status code, a separating space, and at
// least one path character.
const minStatusLineLength = 4

// ConflictReport implements filebackend.SyncBackend.ConflictReport. It scans
// `git status --porcelain` short-status output and returns a SyncConflict
// for every entry whose two-letter code contains "U", or equals "AA" or
// "DD" — the canonical "unresolved" set.
func (e *Engine) ConflictReport(ctx context.Context) ([]filebackend.SyncConflict, error) {
	stdout, _, err := e.runGit(ctx, "status", "--porcelain")
	if err != nil {
		return nil, &filebackend.SyncError{Message: "unable to read repository status", Underlying: err}
	}

	var conflicts []filebackend.SyncConflict
	for _, line := range strings.Split(stdout, "\n") {
		if len(line) < minStatusLineLength {
			continue
		}
		code := line[:2]
		relativePath := line[3:]
		if strings.Contains(code, "U") || code == "AA" || code == "DD" {
			conflicts = append(conflicts, filebackend.SyncConflict{
				Path:   relativePath,
				Status: strings.TrimSpace(code),
			})
		}
	}
	return conflicts, nil
}

// isConflicted reports whether relativePath currently appears in the
// conflict report.
func (e *Engine) isConflicted(ctx context.Context, relativePath string) (bool, error) {
	conflicts, err := e.ConflictReport(ctx)
	if err != nil {
		return false, err
	}
	for _, conflict := range conflicts {
		if conflict.Path == relativePath {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) assertConflicted(ctx context.Context, relativePath string) error {
	conflicted, err := e.isConflicted(ctx, relativePath)
	if err != nil {
		return err
	}
	if !conflicted {
		return &filebackend.SyncError{Message: relativePath + " is not currently conflicted"}
	}
	return nil
}

// ConflictAcceptLocal implements filebackend.SyncBackend.ConflictAcceptLocal:
// checkout the "ours" side of the conflict, then stage it.
func (e *Engine) ConflictAcceptLocal(ctx context.Context, path string) error {
	relativePath, err := e.store.RelativePath(path)
	if err != nil {
		return err
	}
	if err := e.assertConflicted(ctx, relativePath); err != nil {
		return err
	}
	if _, err := e.runGitChecked(ctx, "checkout", "--ours", relativePath); err != nil {
		return err
	}
	_, err = e.runGitChecked(ctx, "add", relativePath)
	return err
}

// ConflictAcceptRemote implements
// filebackend.SyncBackend.ConflictAcceptRemote: checkout the "theirs" side
// of the conflict, then stage it.
func (e *Engine) ConflictAcceptRemote(ctx context.Context, path string) error {
	relativePath, err := e.store.RelativePath(path)
	if err != nil {
		return err
	}
	if err := e.assertConflicted(ctx, relativePath); err != nil {
		return err
	}
	if _, err := e.runGitChecked(ctx, "checkout", "--theirs", relativePath); err != nil {
		return err
	}
	_, err = e.runGitChecked(ctx, "add", relativePath)
	return err
}

// ConflictResolve implements filebackend.SyncBackend.ConflictResolve:
// overwrite the conflicted path with data via Update, then stage it.
func (e *Engine) ConflictResolve(ctx context.Context, path string, data []byte) error {
	relativePath, err := e.store.RelativePath(path)
	if err != nil {
		return err
	}
	if err := e.assertConflicted(ctx, relativePath); err != nil {
		return err
	}
	if _, err := e.store.Update(ctx, path, data, false); err != nil {
		return err
	}
	_, err = e.runGitChecked(ctx, "add", relativePath)
	return err
}
