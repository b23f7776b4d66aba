package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/alphabot-ai/flicker/internal/apperr"
	"github.com/alphabot-ai/flicker/internal/store"
)

type fakeBlobStore struct {
	puts []string
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return err
	}
	f.puts = append(f.puts, key+":"+contentType)
	return nil
}

func (f *fakeBlobStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, nil
}
func (f *fakeBlobStore) Delete(ctx context.Context, key string) error { return nil }
func (f *fakeBlobStore) URLFor(key string) string                    { return "https://blobs.example/" + key }

func TestCreatePost_RejectsOverlongBody(t *testing.T) {
	p := NewPostService(nil, nil, nil, 100<<20)
	body := make([]rune, 501)
	for i := range body {
		body[i] = 'a'
	}
	_, err := p.CreatePost(context.Background(), "u1", string(body), store.VisibilityPublic, nil)
	if !apperr.Is(err, apperr.InvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestCreatePost_RejectsInvalidVisibility(t *testing.T) {
	p := NewPostService(nil, nil, nil, 100<<20)
	_, err := p.CreatePost(context.Background(), "u1", "hello", store.Visibility("secret"), nil)
	if !apperr.Is(err, apperr.InvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestIngestMedia_RejectsOversized(t *testing.T) {
	p := NewPostService(nil, &fakeBlobStore{}, nil, 10)
	media := &MediaUpload{Reader: bytes.NewReader(make([]byte, 20)), DeclaredType: "video/mp4", Size: 20}
	_, err := p.ingestMedia(context.Background(), media)
	if !apperr.Is(err, apperr.PayloadTooLarge) {
		t.Fatalf("expected PayloadTooLarge, got %v", err)
	}
}

func TestIngestMedia_RejectsNonVideo(t *testing.T) {
	p := NewPostService(nil, &fakeBlobStore{}, nil, 100<<20)
	payload := []byte("not a video, just text bytes padded out a bit")
	media := &MediaUpload{Reader: bytes.NewReader(payload), DeclaredType: "text/plain", Size: int64(len(payload))}
	_, err := p.ingestMedia(context.Background(), media)
	if !apperr.Is(err, apperr.UnsupportedMedia) {
		t.Fatalf("expected UnsupportedMedia, got %v", err)
	}
}

func TestIngestMedia_AcceptsDeclaredVideoType(t *testing.T) {
	blobs := &fakeBlobStore{}
	p := NewPostService(nil, blobs, nil, 100<<20)
	payload := bytes.Repeat([]byte{0x00}, 1024)
	media := &MediaUpload{Reader: bytes.NewReader(payload), DeclaredType: "video/mp4", Size: int64(len(payload))}

	key, err := p.ingestMedia(context.Background(), media)
	if err != nil {
		t.Fatalf("ingestMedia: %v", err)
	}
	if key == "" {
		t.Fatal("expected a non-empty opaque key")
	}
	if len(blobs.puts) != 1 {
		t.Fatalf("expected exactly one Put call, got %d", len(blobs.puts))
	}
}
