package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateComment inserts a freshly created comment. Callers set CreatedAt
// and ExpiresAt before calling (Lifecycle computes ExpiresAt); an empty ID
// is filled with a fresh UUID.
func (s *Store) CreateComment(ctx context.Context, c *Comment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO comments (id, post_id, author_id, body, created_at, expires_at, upvotes, downvotes, soft_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, false)
	`, c.ID, c.PostID, c.AuthorID, c.Body, c.CreatedAt, c.ExpiresAt)
	return err
}

// ListComments returns the live comments on post, oldest first.
func (s *Store) ListComments(ctx context.Context, post string) ([]*Comment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, post_id, author_id, body, created_at, expires_at, upvotes, downvotes, soft_deleted
		FROM comments
		WHERE post_id = $1 AND soft_deleted = false AND expires_at > now()
		ORDER BY created_at ASC
	`, post)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.ExpiresAt, &c.Upvotes, &c.Downvotes, &c.SoftDeleted); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Tx is a single database transaction scoped to the domain operations
// that must be atomic together. It is constructed only by Store.Atomic.
type Tx struct {
	tx pgx.Tx
}

// Atomic runs fn inside a single transaction. fn may call Lifecycle's pure
// functions between Tx method calls; the transaction does not commit
// until fn returns, so a vote's counter update, expiry extension and
// toxicity soft-delete are all-or-nothing.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	return s.withTx(ctx, func(pgxTx pgx.Tx) error {
		return fn(ctx, &Tx{tx: pgxTx})
	})
}

// GetVote returns the caller's current vote on comment, or (nil, nil) if
// none exists.
func (t *Tx) GetVote(ctx context.Context, user, comment string) (*Vote, error) {
	var v Vote
	err := t.tx.QueryRow(ctx, `
		SELECT user_id, comment_id, direction, created_at FROM votes WHERE user_id = $1 AND comment_id = $2
	`, user, comment).Scan(&v.UserID, &v.CommentID, &v.Direction, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpsertVote inserts or flips the caller's vote on comment to direction.
func (t *Tx) UpsertVote(ctx context.Context, user, comment string, direction VoteDirection, now time.Time) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO votes (user_id, comment_id, direction, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, comment_id) DO UPDATE SET direction = $3
	`, user, comment, direction, now)
	return err
}

// DeleteVote removes the caller's vote on comment.
func (t *Tx) DeleteVote(ctx context.Context, user, comment string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM votes WHERE user_id = $1 AND comment_id = $2`, user, comment)
	return err
}

// LockComment returns comment's current row, taking a row-level lock held
// until the transaction commits so concurrent votes on the same comment
// serialize.
func (t *Tx) LockComment(ctx context.Context, id string) (*Comment, error) {
	var c Comment
	err := t.tx.QueryRow(ctx, `
		SELECT id, post_id, author_id, body, created_at, expires_at, upvotes, downvotes, soft_deleted
		FROM comments WHERE id = $1 FOR UPDATE
	`, id).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.ExpiresAt, &c.Upvotes, &c.Downvotes, &c.SoftDeleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AdjustCounters applies deltaUp/deltaDown to comment's denormalized vote
// counters and returns the updated row.
func (t *Tx) AdjustCounters(ctx context.Context, id string, deltaUp, deltaDown int) (*Comment, error) {
	var c Comment
	err := t.tx.QueryRow(ctx, `
		UPDATE comments SET upvotes = upvotes + $2, downvotes = downvotes + $3
		WHERE id = $1
		RETURNING id, post_id, author_id, body, created_at, expires_at, upvotes, downvotes, soft_deleted
	`, id, deltaUp, deltaDown).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.ExpiresAt, &c.Upvotes, &c.Downvotes, &c.SoftDeleted)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SetCommentExpiry updates a comment's expires_at, the persistence side
// of Lifecycle.ApplyUpvote.
func (t *Tx) SetCommentExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	_, err := t.tx.Exec(ctx, `UPDATE comments SET expires_at = $2 WHERE id = $1`, id, expiresAt)
	return err
}

// TerminateCommentAndPost soft-deletes comment and its parent post in the
// same transaction, the persistence side of toxicity propagation.
func (t *Tx) TerminateCommentAndPost(ctx context.Context, commentID, postID string) error {
	if _, err := t.tx.Exec(ctx, `UPDATE comments SET soft_deleted = true WHERE id = $1`, commentID); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `UPDATE posts SET soft_deleted = true WHERE id = $1 AND soft_deleted = false`, postID)
	return err
}

// CreateComment inserts comment inside the transaction, mirroring
// Store.CreateComment for use after Tx.GetPostVisible.
func (t *Tx) CreateComment(ctx context.Context, c *Comment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO comments (id, post_id, author_id, body, created_at, expires_at, upvotes, downvotes, soft_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, false)
	`, c.ID, c.PostID, c.AuthorID, c.Body, c.CreatedAt, c.ExpiresAt)
	return err
}

// GetPostVisible re-checks, inside the transaction, that post is live and
// visible to author — used by create_comment so a comment can never
// attach to a post the author cannot see.
func (t *Tx) GetPostVisible(ctx context.Context, viewer, postID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM posts p
			WHERE p.id = $1
				AND p.soft_deleted = false
				AND p.expires_at > now()
				AND (
					p.visibility = 'public'
					OR p.author_id = $2
					OR (
						p.visibility = 'friends'
						AND EXISTS (SELECT 1 FROM follows f1 WHERE f1.follower_id = $2 AND f1.followee_id = p.author_id)
						AND EXISTS (SELECT 1 FROM follows f2 WHERE f2.follower_id = p.author_id AND f2.followee_id = $2)
					)
				)
		)
	`, postID, viewer).Scan(&exists)
	return exists, err
}
