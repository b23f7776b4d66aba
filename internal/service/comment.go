package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/alphabot-ai/flicker/internal/apperr"
	"github.com/alphabot-ai/flicker/internal/events"
	"github.com/alphabot-ai/flicker/internal/lifecycle"
	"github.com/alphabot-ai/flicker/internal/store"
)

// VoteDirection is the caller-facing vote action, including the explicit
// removal spec.md §4.4 calls out.
type VoteDirection string

const (
	VoteUp     VoteDirection = "up"
	VoteDown   VoteDirection = "down"
	VoteRemove VoteDirection = "remove"
)

// VoteResult is the post-update tuple spec.md §4.4 says vote() returns.
type VoteResult struct {
	Upvotes         int
	Downvotes       int
	CallerDirection VoteDirection
}

// CommentService implements spec.md §4.4.
type CommentService struct {
	store  *store.Store
	events events.Publisher
}

func NewCommentService(s *store.Store, ev events.Publisher) *CommentService {
	return &CommentService{store: s, events: ev}
}

// CreateComment validates body length, re-checks post visibility inside
// the same transaction as the insert, and sets the comment's initial
// expiry.
func (c *CommentService) CreateComment(ctx context.Context, author, postID, body string) (*store.Comment, error) {
	n := utf8.RuneCountInString(body)
	if n < 1 || n > maxBodyGraphemes {
		return nil, apperr.New(apperr.InvalidInput, "body must be 1-500 graphemes")
	}

	now := time.Now().UTC()
	comment := &store.Comment{
		PostID:    postID,
		AuthorID:  author,
		Body:      body,
		CreatedAt: now,
		ExpiresAt: lifecycle.InitialExpiry(lifecycle.KindComment, now),
	}

	err := c.store.Atomic(ctx, func(ctx context.Context, tx *store.Tx) error {
		visible, err := tx.GetPostVisible(ctx, author, postID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "check post visibility", err)
		}
		if !visible {
			return apperr.New(apperr.NotFound, "post not found")
		}
		if err := tx.CreateComment(ctx, comment); err != nil {
			return apperr.Wrap(apperr.Internal, "create comment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns the live comments on postID, provided postID is
// visible to viewer.
func (c *CommentService) ListComments(ctx context.Context, viewer, postID string) ([]*store.Comment, error) {
	vp, err := c.store.GetPostForViewer(ctx, viewer, postID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "read post", err)
	}
	if vp == nil {
		return nil, apperr.New(apperr.NotFound, "post not found")
	}
	comments, err := c.store.ListComments(ctx, postID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list comments", err)
	}
	return comments, nil
}

// Vote applies a vote, flip, or removal to commentID on behalf of caller.
// Only a new upvote (including a flip from down to up) extends the
// comment's expiry; repeating an existing upvote does not, and removing an
// upvote never shortens it (spec.md §4.4). Reaching the toxicity
// threshold soft-deletes the comment and its parent post in the same
// transaction; a vote landing on an already-terminated comment is
// recorded but never re-fires the transition.
func (c *CommentService) Vote(ctx context.Context, caller, commentID string, direction VoteDirection) (*VoteResult, error) {
	var result VoteResult
	var terminatedPostID string

	err := c.store.Atomic(ctx, func(ctx context.Context, tx *store.Tx) error {
		comment, err := tx.LockComment(ctx, commentID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "lock comment", err)
		}
		if comment == nil {
			return apperr.New(apperr.NotFound, "comment not found")
		}

		prior, err := tx.GetVote(ctx, caller, commentID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "read vote", err)
		}

		deltaUp, deltaDown, isNewUpvote, err := applyVote(prior, direction)
		if err != nil {
			return err
		}

		switch {
		case direction == VoteRemove:
			if prior != nil {
				if err := tx.DeleteVote(ctx, caller, commentID); err != nil {
					return apperr.Wrap(apperr.Internal, "remove vote", err)
				}
			}
		case deltaUp != 0 || deltaDown != 0:
			if err := tx.UpsertVote(ctx, caller, commentID, store.VoteDirection(direction), time.Now().UTC()); err != nil {
				return apperr.Wrap(apperr.Internal, "upsert vote", err)
			}
		}

		if deltaUp != 0 || deltaDown != 0 {
			comment, err = tx.AdjustCounters(ctx, commentID, deltaUp, deltaDown)
			if err != nil {
				return apperr.Wrap(apperr.Internal, "adjust vote counters", err)
			}
		}

		if isNewUpvote {
			newExpiry := lifecycle.ApplyUpvote(comment.ExpiresAt, comment.CreatedAt)
			if err := tx.SetCommentExpiry(ctx, commentID, newExpiry); err != nil {
				return apperr.Wrap(apperr.Internal, "extend comment expiry", err)
			}
		}

		if deltaDown > 0 && !comment.SoftDeleted && lifecycle.ShouldTerminate(comment.Downvotes) {
			if err := tx.TerminateCommentAndPost(ctx, commentID, comment.PostID); err != nil {
				return apperr.Wrap(apperr.Internal, "terminate comment", err)
			}
			terminatedPostID = comment.PostID
		}

		result = VoteResult{Upvotes: comment.Upvotes, Downvotes: comment.Downvotes, CallerDirection: callerDirection(direction)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if terminatedPostID != "" {
		c.events.Publish(ctx, events.CommentTerminated, events.CommentEvent{CommentID: commentID, PostID: terminatedPostID})
		if authorID, _, err := c.store.GetPostOwnership(ctx, terminatedPostID); err == nil {
			c.events.Publish(ctx, events.PostTerminated, events.PostEvent{PostID: terminatedPostID, AuthorID: authorID, Reason: events.ReasonToxicityPropagated})
		}
	}
	return &result, nil
}

// applyVote computes the counter deltas for transitioning from prior (nil
// if no vote exists) to direction, and whether this call produces a new
// upvote (fresh or flipped from down) — the only case
// Lifecycle.ApplyUpvote fires for.
func applyVote(prior *store.Vote, direction VoteDirection) (deltaUp, deltaDown int, isNewUpvote bool, err error) {
	var priorDir store.VoteDirection
	if prior != nil {
		priorDir = prior.Direction
	}

	switch direction {
	case VoteRemove:
		switch priorDir {
		case store.VoteUp:
			return -1, 0, false, nil
		case store.VoteDown:
			return 0, -1, false, nil
		default:
			return 0, 0, false, nil
		}
	case VoteUp:
		switch priorDir {
		case store.VoteUp:
			return 0, 0, false, nil // idempotent: already an upvote
		case store.VoteDown:
			return 1, -1, true, nil // flip down -> up counts as a new upvote
		default:
			return 1, 0, true, nil
		}
	case VoteDown:
		switch priorDir {
		case store.VoteDown:
			return 0, 0, false, nil // idempotent: already a downvote
		case store.VoteUp:
			return -1, 1, false, nil // flip up -> down, no new upvote
		default:
			return 0, 1, false, nil
		}
	default:
		return 0, 0, false, apperr.New(apperr.InvalidInput, "direction must be up, down, or remove")
	}
}

func callerDirection(direction VoteDirection) VoteDirection {
	if direction == VoteRemove {
		return ""
	}
	return direction
}
