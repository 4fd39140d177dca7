// Package filebackend defines the caller-facing contract for a unified,
// backend-agnostic file storage abstraction: CRUD, streaming, checksumming,
// glob matching, and metadata operations rooted at a single anchor
// directory, plus an optional bidirectional-synchronisation capability set
// implemented by sub-packages of this module.
//
// Two capability sets are defined: Backend (the core file operations) and
// SyncBackend (Backend plus push/pull/conflict operations). Implementations
// live in sibling packages: pkg/filebackend/local implements Backend against
// a plain directory, and pkg/filebackend/vcssync implements SyncBackend on
// top of a Git working tree.
package filebackend
