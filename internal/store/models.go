package store

import "time"

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
)

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// User is a local account, created at most once per distinct external
// subject reported by the identity provider.
type User struct {
	ID              string
	ExternalSubject string
	DisplayName     string
	Bio             string
	ProfilePublic   bool
	CreatedAt       time.Time
	LastSeenAt      time.Time
}

// Post is a user-authored item with optional media.
type Post struct {
	ID          string
	AuthorID    string
	Body        string
	MediaKey    string // empty for text-only posts
	Visibility  Visibility
	CreatedAt   time.Time
	ExpiresAt   time.Time
	SoftDeleted bool
	ViewCount   int
	LikeCount   int
}

// Comment is a user-authored reply attached to exactly one post.
type Comment struct {
	ID          string
	PostID      string
	AuthorID    string
	Body        string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Upvotes     int
	Downvotes   int
	SoftDeleted bool
}

// Like is a unique (user, post) membership.
type Like struct {
	UserID    string
	PostID    string
	CreatedAt time.Time
}

// Vote is a (user, comment, direction) tuple, unique on (user, comment).
type Vote struct {
	UserID    string
	CommentID string
	Direction VoteDirection
	CreatedAt time.Time
}

// Follow is a directed (follower, followee) relation.
type Follow struct {
	FollowerID string
	FolloweeID string
	CreatedAt  time.Time
}

// View is an append-only record used for the denormalized view counter
// and duplicate-suppression within lifecycle.ViewDedupWindow.
type View struct {
	ViewerID   string
	PostID     string
	ObservedAt time.Time
}

// Cursor is the opaque pagination position: (created_at, id), stable
// under insertion at the head.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}
