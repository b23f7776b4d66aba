package service

import (
	"context"

	"github.com/alphabot-ai/flicker/internal/apperr"
	"github.com/alphabot-ai/flicker/internal/events"
	"github.com/alphabot-ai/flicker/internal/store"
)

// FollowService implements spec.md §4.6.
type FollowService struct {
	store  *store.Store
	events events.Publisher
}

func NewFollowService(s *store.Store, ev events.Publisher) *FollowService {
	return &FollowService{store: s, events: ev}
}

// Follow idempotently creates the (caller, target) edge and publishes
// follow.created on first creation. Self-follow is rejected: a mutual
// edge with oneself would make every friends-only post visible to its
// own author through the friend branch of the visibility predicate
// instead of the author-is-viewer branch, which is harmless but
// meaningless, so it is simplest to refuse it outright.
func (f *FollowService) Follow(ctx context.Context, caller, target string) error {
	if caller == target {
		return apperr.New(apperr.InvalidInput, "cannot follow yourself")
	}
	created, err := f.store.Follow(ctx, caller, target)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "follow", err)
	}
	if created {
		f.events.Publish(ctx, events.FollowCreated, events.FollowEvent{FollowerID: caller, FolloweeID: target})
	}
	return nil
}

// Unfollow idempotently removes the edge. Unfollow is not published:
// undoing a follow is not externally interesting to the out-of-scope
// notification/recommender collaborators this core hands events to (see
// DESIGN.md).
func (f *FollowService) Unfollow(ctx context.Context, caller, target string) error {
	if err := f.store.Unfollow(ctx, caller, target); err != nil {
		return apperr.Wrap(apperr.Internal, "unfollow", err)
	}
	return nil
}

// IsFriend reports whether a and b mutually follow each other.
func (f *FollowService) IsFriend(ctx context.Context, a, b string) (bool, error) {
	ok, err := f.store.IsFriend(ctx, a, b)
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "check friendship", err)
	}
	return ok, nil
}
