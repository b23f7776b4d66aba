package service

import (
	"context"
	"testing"
	"time"

	"github.com/alphabot-ai/flicker/internal/apperr"
	"github.com/alphabot-ai/flicker/internal/store"
)

func TestCursorRoundTrip(t *testing.T) {
	want := store.Cursor{CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ID: "abc-123"}
	got, err := decodeCursor(encodeCursor(want))
	if err != nil {
		t.Fatalf("decodeCursor: %v", err)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || got.ID != want.ID {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestDecodeCursor_Empty(t *testing.T) {
	c, err := decodeCursor("")
	if err != nil {
		t.Fatalf("decodeCursor(\"\"): %v", err)
	}
	if c != nil {
		t.Fatalf("expected nil cursor for empty string, got %+v", c)
	}
}

func TestDecodeCursor_Malformed(t *testing.T) {
	if _, err := decodeCursor("not-valid-base64!!"); err == nil {
		t.Fatal("expected error for malformed cursor")
	}
	if _, err := decodeCursor("aGVsbG8"); err == nil {
		t.Fatal("expected error for a valid base64 payload missing the separator")
	}
}

func TestClampLimit(t *testing.T) {
	cases := map[int]int{
		0:   DefaultFeedLimit,
		-5:  DefaultFeedLimit,
		10:  10,
		50:  50,
		999: MaxFeedLimit,
	}
	for in, want := range cases {
		if got := clampLimit(in); got != want {
			t.Errorf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPaginate_SetsNextCursorOnOverflow(t *testing.T) {
	now := time.Now().UTC()
	posts := []*store.ViewerPost{
		{Post: store.Post{ID: "1", CreatedAt: now}},
		{Post: store.Post{ID: "2", CreatedAt: now.Add(-time.Second)}},
		{Post: store.Post{ID: "3", CreatedAt: now.Add(-2 * time.Second)}},
	}
	page, next, err := paginate(posts, 2)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	if next == "" {
		t.Fatal("expected a next cursor when more rows exist than limit")
	}
	c, err := decodeCursor(next)
	if err != nil {
		t.Fatalf("decodeCursor(next): %v", err)
	}
	if c.ID != "2" {
		t.Fatalf("expected next cursor anchored on last retained row, got id %q", c.ID)
	}
}

func TestUpdateProfile_RejectsEditingSomeoneElse(t *testing.T) {
	f := NewFeedService(nil)
	err := f.UpdateProfile(context.Background(), "u1", "u2", "New Name", "bio")
	if !apperr.Is(err, apperr.Forbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestPaginate_NoNextCursorWhenUnderLimit(t *testing.T) {
	posts := []*store.ViewerPost{{Post: store.Post{ID: "1"}}}
	_, next, err := paginate(posts, 5)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if next != "" {
		t.Fatalf("expected no next cursor, got %q", next)
	}
}
