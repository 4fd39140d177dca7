package filebackend

import (
	"io/fs"
	"time"
)

// FileType enumerates the kinds of entries a backend can surface through
// FileInfo.
type FileType int

const (
	// FileTypeFile indicates a regular file.
	FileTypeFile FileType = iota
	// FileTypeDirectory indicates a directory.
	FileTypeDirectory
	// FileTypeSymlink indicates a symbolic link.
	FileTypeSymlink
	// FileTypeOther indicates a device, socket, or other special entry.
	FileTypeOther
)

// String returns a human-readable name for the file type.
func (t FileType) String() string {
	switch t {
	case FileTypeFile:
		return "File"
	case FileTypeDirectory:
		return "Directory"
	case FileTypeSymlink:
		return "Symlink"
	default:
		return "Other"
	}
}

// FileInfo is an immutable snapshot of a path's metadata at the moment it
// was produced. It is never cached across operations: callers that need a
// fresh view must call info again.
type FileInfo struct {
	// Path is the path relative to the backend root, in POSIX form.
	Path string
	// IsDir indicates whether the entry is a directory.
	IsDir bool
	// Size is the entry's size in bytes, as reported by the host filesystem.
	// For directories it is the host's directory size, not the size of the
	// directory's contents.
	Size int64
	// CreatedAt is the entry's creation time, if the host filesystem
	// exposes one.
	CreatedAt *time.Time
	// ModifiedAt is the entry's last modification time.
	ModifiedAt *time.Time
	// AccessedAt is the entry's last access time, if the host filesystem
	// exposes one.
	AccessedAt *time.Time
	// FileType classifies the entry.
	FileType FileType
	// Permissions holds the entry's POSIX-style permission bits, if the
	// host filesystem exposes them.
	Permissions *fs.FileMode
	// OwnerUID holds the entry's owning user ID, if the host filesystem
	// exposes one.
	OwnerUID *int
	// OwnerGID holds the entry's owning group ID, if the host filesystem
	// exposes one.
	OwnerGID *int
	// Checksum holds a content checksum, only populated by operations that
	// compute one incidentally.
	Checksum *string
	// Encoding is "utf-8" if the file's contents decode as valid UTF-8;
	// otherwise nil, meaning the content should be treated as binary. It is
	// only meaningful for regular files.
	Encoding *string
}

// ChecksumAlgorithm identifies a supported content-hashing algorithm.
type ChecksumAlgorithm string

const (
	// ChecksumMD5 selects the MD5 algorithm (32 hex characters).
	ChecksumMD5 ChecksumAlgorithm = "md5"
	// ChecksumSHA256 selects the SHA-256 algorithm (64 hex characters).
	ChecksumSHA256 ChecksumAlgorithm = "sha256"
	// ChecksumSHA512 selects the SHA-512 algorithm (128 hex characters).
	ChecksumSHA512 ChecksumAlgorithm = "sha512"
	// ChecksumBLAKE3 selects the BLAKE3 algorithm (64 hex characters).
	ChecksumBLAKE3 ChecksumAlgorithm = "blake3"
)

// SyncConflict identifies a path that the version-control collaborator has
// flagged as unmerged.
type SyncConflict struct {
	// Path is the conflicted path, relative to the backend root.
	Path string
	// Status is the short status code reported by the VCS collaborator for
	// this path (e.g. "UU", "AA", "DD").
	Status string
}
