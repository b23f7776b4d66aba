package service

import (
	"context"
	"testing"

	"github.com/alphabot-ai/flicker/internal/apperr"
	"github.com/alphabot-ai/flicker/internal/events"
)

func TestFollow_RejectsSelfFollow(t *testing.T) {
	f := NewFollowService(nil, events.NewNoop())
	err := f.Follow(context.Background(), "u1", "u1")
	if !apperr.Is(err, apperr.InvalidInput) {
		t.Fatalf("expected InvalidInput for self-follow, got %v", err)
	}
}
