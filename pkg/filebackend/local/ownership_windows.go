//go:build windows

package local

import (
	"os"

	"github.com/hectane/go-acl"
)

// ownerIdentifiers extracts the owning user and group IDs from file
// metadata. Windows doesn't expose POSIX-style numeric owner/group IDs, so
// this always returns (nil, nil).
func ownerIdentifiers(info os.FileInfo) (*int, *int) {
	return nil, nil
}

// setPermissions applies the given permission bits to path using an ACL
// that approximates the requested POSIX mode, since Windows has no direct
// analogue to POSIX permission bits.
func setPermissions(path string, permissions os.FileMode) error {
	return acl.Chmod(path, permissions)
}
