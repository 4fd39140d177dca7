package local

import (
	"context"
	"io"
	"os"
	"unicode/utf8"

	"github.com/f9labs/gofilebackend/pkg/filebackend"
)

// encodingSniffLength is the number of leading bytes read from a regular
// file to determine whether its contents should be reported as "utf-8" or
// left unset (binary).
const encodingSniffLength = 8192

// Info implements filebackend.Backend.Info.
func (s *Store) Info(ctx context.Context, path string) (*filebackend.FileInfo, error) {
	resolved, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return s.infoAt(resolved, path)
}

// infoAt computes a FileInfo for an already-resolved absolute path,
// reporting it under the given caller-facing relative path.
func (s *Store) infoAt(resolved, relative string) (*filebackend.FileInfo, error) {
	lstat, err := os.Lstat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, filebackend.ErrNotFound
		}
		return nil, err
	}

	fileType := classify(lstat)

	info := &filebackend.FileInfo{
		Path:     relative,
		IsDir:    lstat.IsDir(),
		Size:     lstat.Size(),
		FileType: fileType,
	}

	modTime := lstat.ModTime()
	info.ModifiedAt = &modTime

	permissions := lstat.Mode().Perm()
	info.Permissions = &permissions

	info.OwnerUID, info.OwnerGID = ownerIdentifiers(lstat)

	if fileType == filebackend.FileTypeFile {
		if encoding, ok := sniffEncoding(resolved); ok {
			info.Encoding = &encoding
		}
	}

	return info, nil
}

// classify maps an os.FileInfo to the coarse FileType taxonomy used by
// FileInfo.
func classify(info os.FileInfo) filebackend.FileType {
	mode := info.Mode()
	switch {
	case mode.IsDir():
		return filebackend.FileTypeDirectory
	case mode&os.ModeSymlink != 0:
		return filebackend.FileTypeSymlink
	case mode.IsRegular():
		return filebackend.FileTypeFile
	default:
		return filebackend.FileTypeOther
	}
}

// sniffEncoding reports "utf-8" if the first chunk of path's contents
// decodes as valid UTF-8. It returns ok=false (leave Encoding unset,
// treated as binary) on any read failure or invalid encoding.
func sniffEncoding(path string) (string, bool) {
	file, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer file.Close()

	buffer := make([]byte, encodingSniffLength)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", false
	}

	if !isValidUTF8(buffer[:n]) {
		return "", false
	}
	return "utf-8", true
}

// isValidUTF8 reports whether data is valid UTF-8. An empty slice is
// considered valid.
func isValidUTF8(data []byte) bool {
	return utf8.Valid(data)
}
