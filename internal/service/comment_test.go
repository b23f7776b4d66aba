package service

import (
	"testing"

	"github.com/alphabot-ai/flicker/internal/store"
)

func upVote() *store.Vote   { return &store.Vote{Direction: store.VoteUp} }
func downVote() *store.Vote { return &store.Vote{Direction: store.VoteDown} }

func TestApplyVote_FreshUpvote(t *testing.T) {
	deltaUp, deltaDown, isNew, err := applyVote(nil, VoteUp)
	if err != nil {
		t.Fatalf("applyVote: %v", err)
	}
	if deltaUp != 1 || deltaDown != 0 || !isNew {
		t.Fatalf("got (%d, %d, %v), want (1, 0, true)", deltaUp, deltaDown, isNew)
	}
}

func TestApplyVote_FreshDownvote(t *testing.T) {
	deltaUp, deltaDown, isNew, err := applyVote(nil, VoteDown)
	if err != nil {
		t.Fatalf("applyVote: %v", err)
	}
	if deltaUp != 0 || deltaDown != 1 || isNew {
		t.Fatalf("got (%d, %d, %v), want (0, 1, false)", deltaUp, deltaDown, isNew)
	}
}

// vote(u, c, up); vote(u, c, up) must be idempotent: the second call's
// delta is zero and it is not treated as a new upvote (spec.md §8).
func TestApplyVote_RepeatedUpvoteIsIdempotent(t *testing.T) {
	deltaUp, deltaDown, isNew, err := applyVote(upVote(), VoteUp)
	if err != nil {
		t.Fatalf("applyVote: %v", err)
	}
	if deltaUp != 0 || deltaDown != 0 || isNew {
		t.Fatalf("got (%d, %d, %v), want (0, 0, false)", deltaUp, deltaDown, isNew)
	}
}

func TestApplyVote_RepeatedDownvoteIsIdempotent(t *testing.T) {
	deltaUp, deltaDown, isNew, err := applyVote(downVote(), VoteDown)
	if err != nil {
		t.Fatalf("applyVote: %v", err)
	}
	if deltaUp != 0 || deltaDown != 0 || isNew {
		t.Fatalf("got (%d, %d, %v), want (0, 0, false)", deltaUp, deltaDown, isNew)
	}
}

// vote(u, c, up); vote(u, c, down) results in downvotes += 1, upvotes += 0
// relative to pre-state, with exactly one vote row remaining (spec.md §8).
// Flipping down counts as a new downvote but never a new upvote.
func TestApplyVote_FlipUpToDown(t *testing.T) {
	deltaUp, deltaDown, isNew, err := applyVote(upVote(), VoteDown)
	if err != nil {
		t.Fatalf("applyVote: %v", err)
	}
	if deltaUp != -1 || deltaDown != 1 || isNew {
		t.Fatalf("got (%d, %d, %v), want (-1, 1, false)", deltaUp, deltaDown, isNew)
	}
}

// Flipping down -> up counts as a new upvote (spec.md §4.4 step 4).
func TestApplyVote_FlipDownToUpCountsAsNewUpvote(t *testing.T) {
	deltaUp, deltaDown, isNew, err := applyVote(downVote(), VoteUp)
	if err != nil {
		t.Fatalf("applyVote: %v", err)
	}
	if deltaUp != 1 || deltaDown != -1 || !isNew {
		t.Fatalf("got (%d, %d, %v), want (1, -1, true)", deltaUp, deltaDown, isNew)
	}
}

// Removing an upvote never shortens the comment's expiry: it must not be
// reported as a new upvote.
func TestApplyVote_RemoveUpvoteIsNotNewUpvote(t *testing.T) {
	deltaUp, deltaDown, isNew, err := applyVote(upVote(), VoteRemove)
	if err != nil {
		t.Fatalf("applyVote: %v", err)
	}
	if deltaUp != -1 || deltaDown != 0 || isNew {
		t.Fatalf("got (%d, %d, %v), want (-1, 0, false)", deltaUp, deltaDown, isNew)
	}
}

func TestApplyVote_RemoveDownvote(t *testing.T) {
	deltaUp, deltaDown, isNew, err := applyVote(downVote(), VoteRemove)
	if err != nil {
		t.Fatalf("applyVote: %v", err)
	}
	if deltaUp != 0 || deltaDown != -1 || isNew {
		t.Fatalf("got (%d, %d, %v), want (0, -1, false)", deltaUp, deltaDown, isNew)
	}
}

func TestApplyVote_RemoveWithNoPriorVoteIsNoop(t *testing.T) {
	deltaUp, deltaDown, isNew, err := applyVote(nil, VoteRemove)
	if err != nil {
		t.Fatalf("applyVote: %v", err)
	}
	if deltaUp != 0 || deltaDown != 0 || isNew {
		t.Fatalf("got (%d, %d, %v), want (0, 0, false)", deltaUp, deltaDown, isNew)
	}
}

func TestApplyVote_InvalidDirection(t *testing.T) {
	if _, _, _, err := applyVote(nil, VoteDirection("sideways")); err == nil {
		t.Fatal("expected an error for an invalid direction")
	}
}

func TestCallerDirection(t *testing.T) {
	if got := callerDirection(VoteRemove); got != "" {
		t.Fatalf("callerDirection(remove) = %q, want empty", got)
	}
	if got := callerDirection(VoteUp); got != VoteUp {
		t.Fatalf("callerDirection(up) = %q, want %q", got, VoteUp)
	}
}
