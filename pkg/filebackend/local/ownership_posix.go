//go:build !windows

package local

import (
	"os"
	"syscall"
)

// ownerIdentifiers extracts the owning user and group IDs from file
// metadata, where the host filesystem exposes them.
func ownerIdentifiers(info os.FileInfo) (*int, *int) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, nil
	}
	uid := int(stat.Uid)
	gid := int(stat.Gid)
	return &uid, &gid
}

// setPermissions applies the given permission bits to path.
func setPermissions(path string, permissions os.FileMode) error {
	return os.Chmod(path, permissions)
}
