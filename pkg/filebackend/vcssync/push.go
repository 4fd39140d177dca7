package vcssync

import (
	"context"
	"os/exec"
	"strings"

	"github.com/f9labs/gofilebackend/pkg/filebackend"
)

const defaultCommitMessage = "Sync changes"

// Push implements filebackend.SyncBackend.Push per the push protocol: stage
// everything, commit only if the index differs from HEAD (treating "nothing
// to commit" as success), then push, retrying once with an upstream-setting
// variant if the remote reports a missing upstream branch.
func (e *Engine) Push(ctx context.Context, message string) error {
	if conflicts, err := e.ConflictReport(ctx); err != nil {
		return err
	} else if len(conflicts) > 0 {
		return &filebackend.SyncError{Message: "resolve outstanding conflicts before continuing"}
	}

	if _, err := e.runGitChecked(ctx, "add", "--all"); err != nil {
		return err
	}

	_, diffStderr, diffErr := e.runGit(ctx, "diff", "--cached", "--quiet")
	hasChanges := false
	if diffErr != nil {
		if exitErr, ok := diffErr.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			hasChanges = true
		} else {
			return &filebackend.SyncError{Message: strings.TrimSpace(diffStderr), Underlying: diffErr}
		}
	}

	if hasChanges {
		commitMessage := message
		if commitMessage == "" {
			commitMessage = defaultCommitMessage
		}
		_, commitStderr, commitErr := e.runGit(ctx, "commit", "-m", commitMessage)
		if commitErr != nil && !strings.Contains(strings.ToLower(commitStderr), "nothing to commit") {
			return &filebackend.SyncError{Message: strings.TrimSpace(commitStderr), Underlying: commitErr}
		}
	}

	_, pushStderr, pushErr := e.runGit(ctx, "push", "origin", e.options.branch())
	if pushErr != nil {
		if strings.Contains(pushStderr, "has no upstream branch") {
			_, retryStderr, retryErr := e.runGit(ctx, "push", "--set-upstream", "origin", e.options.branch())
			if retryErr != nil {
				return &filebackend.SyncError{Message: strings.TrimSpace(retryStderr), Underlying: retryErr}
			}
			return nil
		}
		return &filebackend.SyncError{Message: strings.TrimSpace(pushStderr), Underlying: pushErr}
	}
	return nil
}
