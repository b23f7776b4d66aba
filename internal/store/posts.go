package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ViewerPost is the per-viewer projection of a Post: the stored row plus
// the small set of viewer-dependent fields computed in the same round
// trip, per the "no lazy loading" design note.
type ViewerPost struct {
	Post
	AuthorDisplayName string
	LikedByViewer     bool
	CommentCount      int
}

func scanViewerPost(row pgx.Row) (*ViewerPost, error) {
	var vp ViewerPost
	err := row.Scan(
		&vp.ID, &vp.AuthorID, &vp.Body, &vp.MediaKey, &vp.Visibility,
		&vp.CreatedAt, &vp.ExpiresAt, &vp.SoftDeleted, &vp.ViewCount, &vp.LikeCount,
		&vp.AuthorDisplayName, &vp.LikedByViewer, &vp.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	return &vp, nil
}

// viewerPostSelect builds the SELECT list and visibility predicate for a
// per-viewer post projection, parameterized on which positional argument
// holds the viewer's user id. Every read of a Post goes through this one
// shape so liked_by_viewer, comment_count and the visibility rule never
// drift between endpoints.
func viewerPostSelect(viewerArg int) string {
	v := fmt.Sprintf("$%d", viewerArg)
	return fmt.Sprintf(`
		p.id, p.author_id, p.body, COALESCE(p.media_key, ''), p.visibility,
		p.created_at, p.expires_at, p.soft_deleted, p.view_count, p.like_count,
		u.display_name,
		EXISTS (SELECT 1 FROM likes l WHERE l.user_id = %[1]s AND l.post_id = p.id),
		(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id AND c.soft_deleted = false)
	`, v)
}

func visibilityPredicate(viewerArg int) string {
	v := fmt.Sprintf("$%d", viewerArg)
	return fmt.Sprintf(`(
		p.visibility = 'public'
		OR p.author_id = %[1]s
		OR (
			p.visibility = 'friends'
			AND EXISTS (SELECT 1 FROM follows f1 WHERE f1.follower_id = %[1]s AND f1.followee_id = p.author_id)
			AND EXISTS (SELECT 1 FROM follows f2 WHERE f2.follower_id = p.author_id AND f2.followee_id = %[1]s)
		)
	)`, v)
}

// CreatePost inserts a freshly created post. Callers set CreatedAt and
// ExpiresAt before calling (Lifecycle computes ExpiresAt); an empty ID is
// filled with a fresh UUID.
func (s *Store) CreatePost(ctx context.Context, p *Post) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	var mediaKey interface{}
	if p.MediaKey != "" {
		mediaKey = p.MediaKey
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO posts (id, author_id, body, media_key, visibility, created_at, expires_at, soft_deleted, view_count, like_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, 0, 0)
	`, p.ID, p.AuthorID, p.Body, mediaKey, p.Visibility, p.CreatedAt, p.ExpiresAt)
	return err
}

// GetPostForViewer returns the per-viewer projection of post id, or
// (nil, nil) if it does not exist, is soft-deleted, has expired, or is
// not visible to viewer. The caller maps a nil result to NotFound; there
// is never a Forbidden outcome here, by design (spec.md §7).
func (s *Store) GetPostForViewer(ctx context.Context, viewer, id string) (*ViewerPost, error) {
	query := `
		SELECT ` + viewerPostSelect(2) + `
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
			AND p.soft_deleted = false
			AND p.expires_at > now()
			AND ` + visibilityPredicate(2)

	vp, err := scanViewerPost(s.pool.QueryRow(ctx, query, id, viewer))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return vp, nil
}

// HomeFeed returns posts visible to viewer, newest first, keyset-paginated
// on (created_at, id). cursor is nil for the first page.
func (s *Store) HomeFeed(ctx context.Context, viewer string, cursor *Cursor, limit int) ([]*ViewerPost, error) {
	query := `
		SELECT ` + viewerPostSelect(1) + `
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.soft_deleted = false
			AND p.expires_at > now()
			AND ` + visibilityPredicate(1) + `
			AND ($2::timestamptz IS NULL OR (p.created_at, p.id) < ($2, $3))
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $4
	`
	var cursorTime interface{}
	var cursorID interface{}
	if cursor != nil {
		cursorTime, cursorID = cursor.CreatedAt, cursor.ID
	}
	return s.queryFeed(ctx, query, viewer, cursorTime, cursorID, limit)
}

// UserFeed returns target's posts visible to viewer, newest first.
func (s *Store) UserFeed(ctx context.Context, viewer, target string, cursor *Cursor, limit int) ([]*ViewerPost, error) {
	query := `
		SELECT ` + viewerPostSelect(1) + `
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.soft_deleted = false
			AND p.expires_at > now()
			AND p.author_id = $5
			AND ` + visibilityPredicate(1) + `
			AND ($2::timestamptz IS NULL OR (p.created_at, p.id) < ($2, $3))
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $4
	`
	var cursorTime interface{}
	var cursorID interface{}
	if cursor != nil {
		cursorTime, cursorID = cursor.CreatedAt, cursor.ID
	}
	return s.queryFeed(ctx, query, viewer, cursorTime, cursorID, limit, target)
}

func (s *Store) queryFeed(ctx context.Context, query, viewer string, cursorTime, cursorID interface{}, limit int, extra ...string) ([]*ViewerPost, error) {
	args := []interface{}{viewer, cursorTime, cursorID, limit}
	for _, e := range extra {
		args = append(args, e)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ViewerPost
	for rows.Next() {
		vp, err := scanViewerPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, vp)
	}
	return out, rows.Err()
}

// SoftDeletePost marks a post soft-deleted. Idempotent: deleting an
// already-deleted post is a no-op.
func (s *Store) SoftDeletePost(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE posts SET soft_deleted = true WHERE id = $1 AND soft_deleted = false`, id)
	return err
}

// GetPostOwnership returns the author id and soft-deleted flag for id,
// used by delete_post's author-only check before any visibility read. A
// missing post reports ("", false, nil).
func (s *Store) GetPostOwnership(ctx context.Context, id string) (authorID string, softDeleted bool, err error) {
	err = s.pool.QueryRow(ctx, `SELECT author_id, soft_deleted FROM posts WHERE id = $1`, id).Scan(&authorID, &softDeleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	return authorID, softDeleted, err
}

// Like idempotently likes post on behalf of user, atomically updating the
// denormalized like_count in the same transaction as the Like insert.
// Returns the post's current like count.
func (s *Store) Like(ctx context.Context, user, post string) (count int, err error) {
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO likes (user_id, post_id) VALUES ($1, $2)
			ON CONFLICT (user_id, post_id) DO NOTHING
		`, user, post)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			if _, err := tx.Exec(ctx, `UPDATE posts SET like_count = like_count + 1 WHERE id = $1`, post); err != nil {
				return err
			}
		}
		return tx.QueryRow(ctx, `SELECT like_count FROM posts WHERE id = $1`, post).Scan(&count)
	})
	return count, err
}

// Unlike idempotently unlikes post on behalf of user.
func (s *Store) Unlike(ctx context.Context, user, post string) (count int, err error) {
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, user, post)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			if _, err := tx.Exec(ctx, `UPDATE posts SET like_count = like_count - 1 WHERE id = $1`, post); err != nil {
				return err
			}
		}
		return tx.QueryRow(ctx, `SELECT like_count FROM posts WHERE id = $1`, post).Scan(&count)
	})
	return count, err
}

// RecordView inserts a View row for (viewer, post) and increments the
// denormalized view_count, unless a View for the same pair already exists
// within window. Returns whether a new view was recorded.
func (s *Store) RecordView(ctx context.Context, viewer, post string, window time.Duration, now time.Time) (bool, error) {
	var recorded bool
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM views
				WHERE viewer_id = $1 AND post_id = $2 AND observed_at > $3
			)
		`, viewer, post, now.Add(-window)).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if _, err := tx.Exec(ctx, `INSERT INTO views (viewer_id, post_id, observed_at) VALUES ($1, $2, $3)`, viewer, post, now); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, post); err != nil {
			return err
		}
		recorded = true
		return nil
	})
	return recorded, err
}

// CountUserPosts returns the number of live posts authored by id, used by
// user_profile's public counters.
func (s *Store) CountUserPosts(ctx context.Context, id string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM posts WHERE author_id = $1 AND soft_deleted = false AND expires_at > now()
	`, id).Scan(&n)
	return n, err
}
