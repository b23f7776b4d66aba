// Package lifecycle centralizes the pure, deterministic policy that
// governs when posts and comments expire, how upvotes extend a comment's
// lifetime, and when toxicity terminates a comment and its parent post.
// Nothing in this package performs I/O; every function takes a snapshot
// of entity state (and, where relevant, the current time) and returns a
// decision. Callers own persisting that decision.
package lifecycle

import "time"

const (
	PostTTL           = 24 * time.Hour
	CommentTTL        = 7 * 24 * time.Hour
	UpvoteExtension   = 6 * time.Hour
	ToxicityThreshold = 5
	MaxLifetime       = 30 * 24 * time.Hour
	ViewDedupWindow   = time.Hour
)

// Kind distinguishes which TTL applies to InitialExpiry.
type Kind int

const (
	KindPost Kind = iota
	KindComment
)

// InitialExpiry returns the expires_at for a freshly created entity.
func InitialExpiry(kind Kind, createdAt time.Time) time.Time {
	switch kind {
	case KindComment:
		return createdAt.Add(CommentTTL)
	default:
		return createdAt.Add(PostTTL)
	}
}

// ApplyUpvote returns the new expires_at after a single upvote event,
// extending by UpvoteExtension but never past createdAt+MaxLifetime. It is
// a pure function of (expiresAt, createdAt) and is called once per upvote
// event — the caller must not amortize or batch calls, since the result
// depends on the expires_at in effect at the moment of the vote.
func ApplyUpvote(expiresAt, createdAt time.Time) time.Time {
	extended := expiresAt.Add(UpvoteExtension)
	maxExpiry := createdAt.Add(MaxLifetime)
	if extended.After(maxExpiry) {
		return maxExpiry
	}
	return extended
}

// ShouldTerminate reports whether a comment's downvote count, after the
// increment that produced it, has reached the toxicity threshold.
func ShouldTerminate(downvotesAfterIncrement int) bool {
	return downvotesAfterIncrement >= ToxicityThreshold
}

// Reapable is the minimal entity snapshot ShouldReap needs.
type Reapable struct {
	ExpiresAt   time.Time
	SoftDeleted bool
}

// ShouldReap reports whether an entity is live but past its expiry at now.
func ShouldReap(e Reapable, now time.Time) bool {
	return !e.SoftDeleted && !now.Before(e.ExpiresAt)
}
