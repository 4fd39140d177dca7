package vcssync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/f9labs/gofilebackend/pkg/filebackend"
	"github.com/f9labs/gofilebackend/pkg/filebackend/local"
	"github.com/f9labs/gofilebackend/pkg/logging"
)

// gitPathEnvironmentVariable lets callers pin the git executable, mirroring
// the teacher's MUTAGEN_DOCKER_PATH override convention.
const gitPathEnvironmentVariable = "GOFILEBACKEND_GIT_PATH"

// Engine is the Sync Engine: a filebackend.SyncBackend wrapping a Local
// Store with a Git working tree, remote, and branch.
type Engine struct {
	options   Options
	remoteURL string
	workdir   string
	gitPath   string
	env       []string

	store *local.Store
	log   *logging.Logger

	mu        sync.Mutex
	inSession bool
}

// NewEngine brings up a Sync Engine per the Bring-up sequence: it requires
// RemoteURL and Path, reconciles or creates the working directory's Git
// repository, checks out the configured branch, applies author identity,
// and wraps the result with a Local Store.
func NewEngine(ctx context.Context, options Options, log *logging.Logger) (*Engine, error) {
	if options.RemoteURL == "" {
		return nil, fmt.Errorf("remote_url is required")
	}
	if options.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	workdir, err := filepath.Abs(options.Path)
	if err != nil {
		return nil, err
	}

	remoteURL, err := constructRemoteURL(options)
	if err != nil {
		return nil, err
	}

	gitPath, err := locateGit()
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		options:   options,
		remoteURL: remoteURL,
		workdir:   workdir,
		gitPath:   gitPath,
		env:       buildGitEnvironment(options),
		log:       log,
	}

	if _, err := os.Stat(filepath.Join(workdir, ".git")); err == nil {
		if err := engine.ensureRemote(ctx); err != nil {
			return nil, err
		}
	} else {
		entries, statErr := os.ReadDir(workdir)
		if statErr == nil && len(entries) > 0 {
			return nil, fmt.Errorf("%w: working directory exists but is not a git repository", filebackend.ErrAlreadyExists)
		}
		if err := engine.cloneRepository(ctx); err != nil {
			return nil, err
		}
	}

	if err := engine.checkoutBranch(ctx); err != nil {
		return nil, err
	}
	if err := engine.configureIdentity(ctx); err != nil {
		return nil, err
	}

	store, err := local.NewStore(workdir, true, log)
	if err != nil {
		return nil, err
	}
	engine.store = store

	return engine, nil
}

// locateGit resolves the git executable, honouring gitPathEnvironmentVariable
// before falling back to PATH lookup.
func locateGit() (string, error) {
	if override := os.Getenv(gitPathEnvironmentVariable); override != "" {
		return override, nil
	}
	path, err := exec.LookPath("git")
	if err != nil {
		return "", fmt.Errorf("unable to locate git executable on PATH: %w", err)
	}
	return path, nil
}

// buildGitEnvironment constructs the environment used for every git
// invocation, forwarding SSH key and known-hosts configuration via
// GIT_SSH_COMMAND without ever embedding SSH credentials in the remote URL.
func buildGitEnvironment(options Options) []string {
	environment := os.Environ()

	if options.SSHKeyPath == "" && options.KnownHosts == "" {
		return environment
	}

	command := "ssh"
	if options.SSHKeyPath != "" {
		command = fmt.Sprintf("ssh -i %s -o IdentitiesOnly=yes", options.SSHKeyPath)
	}
	if options.KnownHosts != "" {
		command = fmt.Sprintf("%s -o UserKnownHostsFile=%s", command, options.KnownHosts)
	}

	return append(environment, "GIT_SSH_COMMAND="+command)
}

// runGit runs a git subcommand in the working directory and returns its
// trimmed stdout and stderr. It does not itself fail on a non-zero exit
// code; callers decide how to interpret the result.
func (e *Engine) runGit(ctx context.Context, args ...string) (stdout, stderr string, exitErr error) {
	command := exec.CommandContext(ctx, e.gitPath, args...)
	command.Dir = e.workdir
	command.Env = e.env

	var outBuffer, errBuffer bytes.Buffer
	command.Stdout = &outBuffer
	command.Stderr = &errBuffer

	err := command.Run()
	e.log.Debugf("git %v -> %v", args, err)
	return outBuffer.String(), errBuffer.String(), err
}

// runGitChecked behaves like runGit but surfaces a non-zero exit as a
// *filebackend.SyncError carrying git's stderr.
func (e *Engine) runGitChecked(ctx context.Context, args ...string) (string, error) {
	stdout, stderr, err := e.runGit(ctx, args...)
	if err != nil {
		message := strings.TrimSpace(stderr)
		if message == "" {
			message = fmt.Sprintf("git %v failed", args)
		}
		return "", &filebackend.SyncError{Message: message, Underlying: err}
	}
	return stdout, nil
}

func (e *Engine) ensureRemote(ctx context.Context) error {
	stdout, _, err := e.runGit(ctx, "remote")
	if err != nil {
		return &filebackend.SyncError{Message: "unable to list remotes", Underlying: err}
	}
	hasOrigin := false
	for _, remote := range strings.Fields(stdout) {
		if remote == "origin" {
			hasOrigin = true
			break
		}
	}
	if hasOrigin {
		if _, err := e.runGitChecked(ctx, "remote", "set-url", "origin", e.remoteURL); err != nil {
			return err
		}
		return nil
	}
	_, err = e.runGitChecked(ctx, "remote", "add", "origin", e.remoteURL)
	return err
}

func (e *Engine) cloneRepository(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(e.workdir), 0755); err != nil {
		return err
	}
	if info, err := os.Stat(e.workdir); err == nil && info.IsDir() {
		os.Remove(e.workdir)
	}

	cloneArgs := []string{"clone", "--branch", e.options.branch(), "--single-branch", e.remoteURL, e.workdir}
	command := exec.CommandContext(ctx, e.gitPath, cloneArgs...)
	command.Env = e.env
	var stderr bytes.Buffer
	command.Stderr = &stderr
	if err := command.Run(); err == nil {
		return nil
	}
	firstErr := strings.TrimSpace(stderr.String())

	fallbackArgs := []string{"clone", e.remoteURL, e.workdir}
	fallback := exec.CommandContext(ctx, e.gitPath, fallbackArgs...)
	fallback.Env = e.env
	var fallbackStderr bytes.Buffer
	fallback.Stderr = &fallbackStderr
	if err := fallback.Run(); err != nil {
		message := strings.TrimSpace(fallbackStderr.String())
		if message == "" {
			message = firstErr
		}
		if message == "" {
			message = "failed to clone remote repository"
		}
		return &filebackend.SyncError{Message: message, Underlying: err}
	}
	return nil
}

func (e *Engine) checkoutBranch(ctx context.Context) error {
	current, _, err := e.runGit(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err == nil && strings.TrimSpace(current) == e.options.branch() {
		return nil
	}

	if _, _, checkoutErr := e.runGit(ctx, "checkout", e.options.branch()); checkoutErr == nil {
		return nil
	}
	_, err = e.runGitChecked(ctx, "checkout", "-b", e.options.branch())
	return err
}

func (e *Engine) configureIdentity(ctx context.Context) error {
	if _, err := e.runGitChecked(ctx, "config", "user.name", e.options.authorName()); err != nil {
		return err
	}
	_, err := e.runGitChecked(ctx, "config", "user.email", e.options.authorEmail())
	return err
}

// Workdir returns the absolute path of the engine's working tree.
func (e *Engine) Workdir() string {
	return e.workdir
}
