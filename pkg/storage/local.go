package storage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/sha3"
)

// Upload kinds. Each kind maps to a subdirectory of the storage root.
const (
	KindVideo      = "videos"
	KindAttachment = "attachments"
)

// FileStore defines the contract for uploaded binary content. Files are
// addressed by their content hash, never by caller-supplied names, so the
// database only ever records the hash.
type FileStore interface {
	// Save writes content under <root>/<kind>/<hash> and returns the path.
	// Writing content that already exists is a no-op; existed reports
	// whether the file was already on disk, so callers can tell a fresh
	// write apart from a re-upload when unwinding a failed insert.
	Save(kind, hash string, content []byte) (path string, existed bool, err error)
	// Remove deletes the file for the given hash. Removing a missing file
	// is not an error.
	Remove(kind, hash string) error
	// Path returns the location a hash resolves to without touching disk.
	Path(kind, hash string) string
}

type localStore struct {
	root string
}

// NewLocalStore creates a disk-backed FileStore rooted at root, creating
// the per-kind subdirectories up front.
func NewLocalStore(root string) (FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	for _, kind := range []string{KindVideo, KindAttachment} {
		if err := os.MkdirAll(filepath.Join(root, kind), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return &localStore{root: root}, nil
}

func (s *localStore) Path(kind, hash string) string {
	return filepath.Join(s.root, kind, hash)
}

func (s *localStore) Save(kind, hash string, content []byte) (string, bool, error) {
	path := s.Path(kind, hash)
	if _, err := os.Stat(path); err == nil {
		// Identical content was uploaded before.
		return path, true, nil
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", false, fmt.Errorf("failed to store file: %w", err)
	}
	return path, false, nil
}

func (s *localStore) Remove(kind, hash string) error {
	err := os.Remove(s.Path(kind, hash))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ContentHash returns the SHA3-512 hex digest used as dedup key and path
// component for uploaded bytes.
func ContentHash(content []byte) string {
	sum := sha3.Sum512(content)
	return hex.EncodeToString(sum[:])
}
