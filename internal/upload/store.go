// Package upload handles image ingestion: validating, resizing and
// persisting uploaded photos, and deleting replaced or orphaned ones.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store is the blob-store boundary. Keys are opaque file names; Save
// returns the public URL the stored object is reachable at.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// LocalStore keeps uploads on the local filesystem, served by the router
// under baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStore) Save(_ context.Context, key string, r io.Reader) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(key))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return s.baseURL + "/" + filepath.Base(key), nil
}

// Delete removes the object behind a previously returned URL. A URL from
// a different store (or a missing file) is not an error worth surfacing;
// callers treat deletion as best effort anyway.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	key := filepath.Base(strings.TrimPrefix(url, s.baseURL+"/"))
	if key == "" || key == "." || key == string(filepath.Separator) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
