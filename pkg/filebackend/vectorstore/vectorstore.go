// Package vectorstore describes the external contract expected of the
// remote vector-store backend: the auxiliary collaborator summarised in
// spec.md §6. It defines only the shapes and interfaces a caller would use
// to substitute a vector-store-backed provider for the Sync Engine; no
// network client is implemented here.
package vectorstore

import "context"

// Attributes is the metadata carried alongside an uploaded file, matching
// the attribute set in spec.md §6.
type Attributes struct {
	Path       string
	IsDir      bool
	Size       int64
	ModifiedAt int64 // Unix seconds; the collaborator's own timestamp convention.
	Encoding   string
}

// Uploader uploads file content and attributes to the vector store,
// returning a collaborator-assigned file identifier.
type Uploader interface {
	Upload(ctx context.Context, data []byte, attrs Attributes) (fileID string, err error)
}

// Downloader retrieves file content by the collaborator's file identifier.
type Downloader interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// Page is one page of a paginated listing against a vector-store
// identifier.
type Page struct {
	// Entries are the file identifiers and attributes returned on this
	// page.
	Entries []Entry
	// LastID is the collaborator-reported cursor advance hint, if any. It
	// may be empty even when HasMore is true.
	LastID string
	// HasMore reports whether a further page is available.
	HasMore bool
}

// Entry pairs a vector-store file identifier with its attributes.
type Entry struct {
	ID         string
	Attributes Attributes
}

// Lister lists entries associated with a vector-store identifier, paginated
// via Cursor.
type Lister interface {
	List(ctx context.Context, vectorStoreID string, cursor Cursor) (Page, error)
}

// Cursor is an opaque pagination cursor. The zero value represents the
// first page.
type Cursor struct {
	value string
}

// String returns the cursor's wire representation.
func (c Cursor) String() string {
	return c.value
}

// Done reports whether c is the terminal (zero-value) cursor.
func (c Cursor) Done() bool {
	return c.value == ""
}

// NewCursor wraps a raw collaborator-supplied cursor value.
func NewCursor(value string) Cursor {
	return Cursor{value: value}
}

// Advance computes the next cursor from a listing page.
//
// Open question (spec.md §9): the source has two code paths for advancing
// the cursor — one trusting the collaborator's LastID, the other falling
// back to the last entry's ID. This implementation prefers LastID when
// non-empty, and falls back to the last entry's ID otherwise. Regardless of
// which source supplied the value, a page reporting HasMore=false always
// yields the terminal (zero-value) cursor: a single-page response never
// produces a dangling non-terminal cursor even if the collaborator echoed a
// LastID or the page has trailing entries.
func (p Page) Advance() Cursor {
	if !p.HasMore {
		return Cursor{}
	}
	if p.LastID != "" {
		return NewCursor(p.LastID)
	}
	if len(p.Entries) > 0 {
		return NewCursor(p.Entries[len(p.Entries)-1].ID)
	}
	return Cursor{}
}
