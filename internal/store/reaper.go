package store

import (
	"context"
	"time"
)

// ReapPosts soft-deletes every post with expires_at <= now that is not
// already soft-deleted, and returns the ids it touched. The WHERE clause
// is the same predicate as Lifecycle.ShouldReap and doubles as the
// concurrency control: an unconditional UPDATE needs no row lock because
// there is no read-modify-write gap to protect.
func (s *Store) ReapPosts(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE posts SET soft_deleted = true
		WHERE soft_deleted = false AND expires_at <= $1
		RETURNING id
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReapComments soft-deletes every comment with expires_at <= now that is
// not already soft-deleted, and returns the ids it touched. Unlike
// toxicity termination, TTL expiry of a comment does not propagate to its
// parent post.
func (s *Store) ReapComments(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE comments SET soft_deleted = true
		WHERE soft_deleted = false AND expires_at <= $1
		RETURNING id
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
