package local

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"lukechampine.com/blake3"

	"github.com/f9labs/gofilebackend/pkg/filebackend"
)

// checksumChunkSize is the fixed read size used while streaming file
// contents through a hasher.
const checksumChunkSize = 64 * 1024

// newHasher constructs the hash.Hash implementation for algorithm.
func newHasher(algorithm filebackend.ChecksumAlgorithm) (hash.Hash, error) {
	switch algorithm {
	case filebackend.ChecksumMD5:
		return md5.New(), nil
	case filebackend.ChecksumSHA256:
		return sha256.New(), nil
	case filebackend.ChecksumSHA512:
		return sha512.New(), nil
	case filebackend.ChecksumBLAKE3:
		return blake3.New(32, nil), nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm: %s", algorithm)
	}
}

// Checksum implements filebackend.Backend.Checksum.
func (s *Store) Checksum(ctx context.Context, path string, algorithm filebackend.ChecksumAlgorithm) (string, error) {
	resolved, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	return checksumPath(resolved, algorithm)
}

// checksumPath streams the file at an already-resolved path through the
// selected hasher in fixed-size reads and returns its hex digest.
func checksumPath(resolved string, algorithm filebackend.ChecksumAlgorithm) (string, error) {
	hasher, err := newHasher(algorithm)
	if err != nil {
		return "", err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", filebackend.ErrNotFound
		}
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, checksumChunkSize)
	if _, err := io.CopyBuffer(hasher, file, buffer); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// ChecksumMany implements filebackend.Backend.ChecksumMany.
func (s *Store) ChecksumMany(ctx context.Context, paths []string, algorithm filebackend.ChecksumAlgorithm) (map[string]string, error) {
	result := make(map[string]string, len(paths))
	for _, path := range paths {
		resolved, err := s.resolve(path)
		if err != nil {
			continue
		}
		info, err := os.Lstat(resolved)
		if err != nil || info.IsDir() {
			continue
		}
		digest, err := checksumPath(resolved, algorithm)
		if err != nil {
			continue
		}
		result[path] = digest
	}
	return result, nil
}
