package vcssync

import (
	"context"
	"fmt"
	"strings"

	"github.com/f9labs/gofilebackend/pkg/filebackend"
)

// Pull implements filebackend.SyncBackend.Pull per the pull protocol: fetch
// the remote branch, merge it in, and surface a merge conflict as a
// *filebackend.SyncError while leaving the working tree in the conflicted
// state for resolution.
func (e *Engine) Pull(ctx context.Context) error {
	if conflicts, err := e.ConflictReport(ctx); err != nil {
		return err
	} else if len(conflicts) > 0 {
		return &filebackend.SyncError{Message: "resolve outstanding conflicts before continuing"}
	}

	status, err := e.runGitChecked(ctx, "status", "--porcelain")
	if err != nil {
		return err
	}
	if strings.TrimSpace(status) != "" {
		return &filebackend.SyncError{Message: "working tree has pending changes; push or stash first"}
	}

	if _, fetchStderr, fetchErr := e.runGit(ctx, "fetch", "origin", e.options.branch()); fetchErr != nil {
		if strings.Contains(fetchStderr, "couldn't find remote ref") {
			// Nothing has ever been pushed to this branch on the remote.
			return nil
		}
		return &filebackend.SyncError{Message: strings.TrimSpace(fetchStderr), Underlying: fetchErr}
	}

	remoteRef := fmt.Sprintf("origin/%s", e.options.branch())
	if _, _, verifyErr := e.runGit(ctx, "rev-parse", "--verify", remoteRef); verifyErr != nil {
		// Nothing has ever been pushed to this branch on the remote.
		return nil
	}

	_, mergeStderr, mergeErr := e.runGit(ctx, "merge", "--no-edit", remoteRef)
	if mergeErr == nil {
		return nil
	}

	if conflicts, reportErr := e.ConflictReport(ctx); reportErr == nil && len(conflicts) > 0 {
		return &filebackend.SyncError{Message: "pull resulted in merge conflicts"}
	}
	return &filebackend.SyncError{Message: strings.TrimSpace(mergeStderr), Underlying: mergeErr}
}

// Sync implements filebackend.SyncBackend.Sync as Pull followed by Push.
func (e *Engine) Sync(ctx context.Context) error {
	if err := e.Pull(ctx); err != nil {
		return err
	}
	return e.Push(ctx, "")
}
