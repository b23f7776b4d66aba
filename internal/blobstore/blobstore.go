// Package blobstore is the core's object-store collaborator: opaque
// key/value byte storage for uploaded media. The core generates keys; the
// store never assigns them (spec.md §6).
package blobstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("blobstore: key not found")

// Storer is the object-store interface the core depends on. Delete and
// Download are carried for a future orphan-reclamation sweep and for
// completeness with the blob-store shape used elsewhere in this corpus;
// the core today only calls Put. Media URLs in API responses are built by
// the api package from Config.BlobBaseURL, not through URLFor.
type Storer interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URLFor(key string) string
}

// NewKey generates a fresh opaque, collision-free-by-construction key.
func NewKey() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failing means the platform is broken
	}
	return hex.EncodeToString(b)
}

// LocalDisk is a local-disk Storer implementation, namespaced by key
// prefix to avoid a single directory with millions of entries. No
// S3-compatible client library is available in this corpus (see
// DESIGN.md), so this is the concrete BlobStore the core ships with; its
// interface is the seam a future S3-compatible client would implement
// against.
type LocalDisk struct {
	dir     string
	baseURL string
}

func NewLocalDisk(dir, baseURL string) (*LocalDisk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create base dir: %w", err)
	}
	return &LocalDisk{dir: dir, baseURL: baseURL}, nil
}

func (l *LocalDisk) path(key string) string {
	if len(key) >= 2 {
		return filepath.Join(l.dir, key[:2], key)
	}
	return filepath.Join(l.dir, key)
}

func (l *LocalDisk) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	p := l.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return err
	}
	// contentType is recorded alongside the bytes so URLFor's consumer
	// can set Content-Type on retrieval; a sidecar file keeps LocalDisk
	// dependency-free while a real object store would set it as metadata.
	return os.WriteFile(p+".type", []byte(contentType), 0o644)
}

func (l *LocalDisk) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(l.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (l *LocalDisk) Delete(ctx context.Context, key string) error {
	_ = os.Remove(l.path(key) + ".type")
	err := os.Remove(l.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (l *LocalDisk) URLFor(key string) string {
	if key == "" {
		return ""
	}
	return l.baseURL + "/" + key
}
