package store

import "context"

// Follow idempotently creates the directed (follower, followee) edge.
// Reports whether the edge was newly created, so callers can decide
// whether to publish a follow.created event.
func (s *Store) Follow(ctx context.Context, follower, followee string) (created bool, err error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`, follower, followee)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Unfollow idempotently removes the directed edge.
func (s *Store) Unfollow(ctx context.Context, follower, followee string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, follower, followee)
	return err
}

// IsFollowing reports whether a follows b.
func (s *Store) IsFollowing(ctx context.Context, a, b string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)
	`, a, b).Scan(&exists)
	return exists, err
}

// IsFriend reports whether a and b mutually follow each other.
func (s *Store) IsFriend(ctx context.Context, a, b string) (bool, error) {
	var mutual bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)
			AND EXISTS (SELECT 1 FROM follows WHERE follower_id = $2 AND followee_id = $1)
	`, a, b).Scan(&mutual)
	return mutual, err
}

// FollowCounts returns the number of accounts following id and the number
// id follows, computed by query rather than denormalized (spec.md §4.6).
func (s *Store) FollowCounts(ctx context.Context, id string) (followers, following int, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followee_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)
	`, id).Scan(&followers, &following)
	return followers, following, err
}
