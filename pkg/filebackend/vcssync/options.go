// Package vcssync implements the Sync Engine: a SyncBackend that wraps a
// Local Store with a Git working tree, forwarding CRUD/stream/checksum/glob
// operations while adding push, pull, sync, and conflict resolution against
// a remote.
package vcssync

// Options carries the construction parameters for an Engine.
type Options struct {
	// RemoteURL is the Git remote to clone from and push/pull against.
	RemoteURL string
	// Path is the working directory that contains, or will be populated
	// with, the Git working tree.
	Path string
	// Branch is the branch to track. Defaults to "main" if empty.
	Branch string
	// AuthorName is the commit author name applied to the repository's
	// local configuration. Defaults to "gofilebackend-sync" if empty.
	AuthorName string
	// AuthorEmail is the commit author email applied to the repository's
	// local configuration. Defaults to "gofilebackend-sync@example.com" if
	// empty.
	AuthorEmail string
	// AutoPull enables pulling before read-family operations performed
	// outside of a session.
	AutoPull bool
	// AutoPush enables pushing after write-family operations performed
	// outside of a session.
	AutoPush bool
	// SSHKeyPath, if non-empty, is forwarded to git via GIT_SSH_COMMAND.
	SSHKeyPath string
	// KnownHosts, if non-empty, is forwarded to git via GIT_SSH_COMMAND.
	KnownHosts string
	// Username and Password, if both set and RemoteURL uses HTTP(S),
	// are embedded into the remote URL unless it already carries userinfo.
	Username string
	Password string
}

const (
	defaultBranch      = "main"
	defaultAuthorName  = "gofilebackend-sync"
	defaultAuthorEmail = "gofilebackend-sync@example.com"
)

func (o Options) branch() string {
	if o.Branch == "" {
		return defaultBranch
	}
	return o.Branch
}

func (o Options) authorName() string {
	if o.AuthorName == "" {
		return defaultAuthorName
	}
	return o.AuthorName
}

func (o Options) authorEmail() string {
	if o.AuthorEmail == "" {
		return defaultAuthorEmail
	}
	return o.AuthorEmail
}
