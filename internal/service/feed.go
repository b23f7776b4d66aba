package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alphabot-ai/flicker/internal/apperr"
	"github.com/alphabot-ai/flicker/internal/store"
)

const (
	DefaultFeedLimit        = 20
	MaxFeedLimit            = 50
	maxDisplayNameGraphemes = 60
	maxBioGraphemes         = 280
)

// Profile is user_profile's per-viewer projection (spec.md §4.5).
type Profile struct {
	UserID           string
	DisplayName      string
	Bio              string
	PostCount        int
	Followers        int
	Following        int
	FollowedByViewer bool
	IsSelf           bool
}

// FeedService implements spec.md §4.5.
type FeedService struct {
	store *store.Store
}

func NewFeedService(s *store.Store) *FeedService {
	return &FeedService{store: s}
}

// HomeFeed returns the chronological feed visible to viewer.
func (f *FeedService) HomeFeed(ctx context.Context, viewer, cursorStr string, limit int) ([]*store.ViewerPost, string, error) {
	cursor, err := decodeCursor(cursorStr)
	if err != nil {
		return nil, "", apperr.New(apperr.InvalidInput, "invalid cursor")
	}
	limit = clampLimit(limit)

	posts, err := f.store.HomeFeed(ctx, viewer, cursor, limit+1)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "load home feed", err)
	}
	return paginate(posts, limit)
}

// UserFeed returns target's live posts visible to viewer.
func (f *FeedService) UserFeed(ctx context.Context, viewer, target, cursorStr string, limit int) ([]*store.ViewerPost, string, error) {
	cursor, err := decodeCursor(cursorStr)
	if err != nil {
		return nil, "", apperr.New(apperr.InvalidInput, "invalid cursor")
	}
	limit = clampLimit(limit)

	posts, err := f.store.UserFeed(ctx, viewer, target, cursor, limit+1)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "load user feed", err)
	}
	return paginate(posts, limit)
}

// UserProfile returns target's public counters plus viewer-dependent
// fields, and the editable profile fields when viewer is viewing their
// own profile.
func (f *FeedService) UserProfile(ctx context.Context, viewer, target string) (*Profile, error) {
	u, err := f.store.GetUser(ctx, target)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "lookup user", err)
	}
	if u == nil {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}

	postCount, err := f.store.CountUserPosts(ctx, target)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "count posts", err)
	}
	followers, following, err := f.store.FollowCounts(ctx, target)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "count follows", err)
	}
	followedByViewer, err := f.store.IsFollowing(ctx, viewer, target)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "check follow", err)
	}

	p := &Profile{
		UserID:           u.ID,
		DisplayName:      u.DisplayName,
		PostCount:        postCount,
		Followers:        followers,
		Following:        following,
		FollowedByViewer: followedByViewer,
		IsSelf:           viewer == target,
	}
	if p.IsSelf {
		p.Bio = u.Bio
	}
	return p, nil
}

// UpdateProfile updates caller's own display name and bio. spec.md §3
// names these the User type's only mutable fields; editing anyone else's
// profile is Forbidden.
func (f *FeedService) UpdateProfile(ctx context.Context, caller, target, displayName, bio string) error {
	if caller != target {
		return apperr.New(apperr.Forbidden, "cannot edit another user's profile")
	}
	if n := utf8.RuneCountInString(displayName); n < 1 || n > maxDisplayNameGraphemes {
		return apperr.New(apperr.InvalidInput, "display name must be 1-60 graphemes")
	}
	if utf8.RuneCountInString(bio) > maxBioGraphemes {
		return apperr.New(apperr.InvalidInput, "bio must be at most 280 graphemes")
	}
	if err := f.store.UpdateProfile(ctx, target, displayName, bio); err != nil {
		return apperr.Wrap(apperr.Internal, "update profile", err)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		return MaxFeedLimit
	}
	return limit
}

// paginate trims a limit+1-sized page down to limit and derives the next
// cursor from the last retained row, per the opaque (created_at, id)
// cursor spec.md §4.5 describes.
func paginate(posts []*store.ViewerPost, limit int) ([]*store.ViewerPost, string, error) {
	var next string
	if len(posts) > limit {
		posts = posts[:limit]
		last := posts[len(posts)-1]
		next = encodeCursor(store.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return posts, next, nil
}

func encodeCursor(c store.Cursor) string {
	raw := fmt.Sprintf("%s|%s", c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(s string) (*store.Cursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed cursor")
	}
	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, err
	}
	return &store.Cursor{CreatedAt: t, ID: parts[1]}, nil
}
