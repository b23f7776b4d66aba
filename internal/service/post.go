// Package service holds the request-path orchestration for posts,
// comments, votes and follows: the thin layer between Router handlers and
// Store that applies validation, calls Lifecycle at vote time, and
// hands off domain events.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/alphabot-ai/flicker/internal/apperr"
	"github.com/alphabot-ai/flicker/internal/blobstore"
	"github.com/alphabot-ai/flicker/internal/events"
	"github.com/alphabot-ai/flicker/internal/lifecycle"
	"github.com/alphabot-ai/flicker/internal/store"
)

const (
	// maxBodyGraphemes bounds body length by rune count, not true
	// grapheme clusters (combining marks, emoji ZWJ sequences) — an
	// accepted approximation, applied consistently everywhere a body is
	// measured.
	maxBodyGraphemes = 500
	sniffWindow      = 512
)

var allowedVideoTypes = map[string]bool{
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
}

// MediaUpload is the uploaded media part of a create_post call.
type MediaUpload struct {
	Reader       io.Reader
	DeclaredType string
	Size         int64
}

// PostService implements spec.md §4.3.
type PostService struct {
	store         *store.Store
	blobs         blobstore.Storer
	events        events.Publisher
	maxMediaBytes int64
}

func NewPostService(s *store.Store, blobs blobstore.Storer, ev events.Publisher, maxMediaBytes int64) *PostService {
	return &PostService{store: s, blobs: blobs, events: ev, maxMediaBytes: maxMediaBytes}
}

// CreatePost validates, optionally ingests media, inserts the post, and
// publishes post.created. The blob PUT happens before the DB insert so a
// committed row never references a missing blob (spec.md §4.3); an orphan
// blob left behind by a failed insert is reclaimed by a separate sweep,
// out of scope here.
func (p *PostService) CreatePost(ctx context.Context, authorID, body string, visibility store.Visibility, media *MediaUpload) (*store.ViewerPost, error) {
	if utf8.RuneCountInString(body) > maxBodyGraphemes {
		return nil, apperr.New(apperr.InvalidInput, "body must be 0-500 graphemes")
	}
	if visibility != store.VisibilityPublic && visibility != store.VisibilityFriends {
		return nil, apperr.New(apperr.InvalidInput, "visibility must be public or friends")
	}

	var mediaKey string
	if media != nil {
		key, err := p.ingestMedia(ctx, media)
		if err != nil {
			return nil, err
		}
		mediaKey = key
	}

	now := time.Now().UTC()
	post := &store.Post{
		AuthorID:   authorID,
		Body:       body,
		MediaKey:   mediaKey,
		Visibility: visibility,
		CreatedAt:  now,
		ExpiresAt:  lifecycle.InitialExpiry(lifecycle.KindPost, now),
	}
	if err := p.store.CreatePost(ctx, post); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "create post", err)
	}

	p.events.Publish(ctx, events.PostCreated, events.PostEvent{PostID: post.ID, AuthorID: authorID})

	vp, err := p.store.GetPostForViewer(ctx, authorID, post.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "read back created post", err)
	}
	return vp, nil
}

func (p *PostService) ingestMedia(ctx context.Context, media *MediaUpload) (string, error) {
	if media.Size > p.maxMediaBytes {
		return "", apperr.New(apperr.PayloadTooLarge, fmt.Sprintf("media exceeds %d bytes", p.maxMediaBytes))
	}

	head := make([]byte, sniffWindow)
	n, _ := io.ReadFull(media.Reader, head)
	head = head[:n]
	sniffed := http.DetectContentType(head)
	if !allowedVideoTypes[sniffed] && !allowedVideoTypes[media.DeclaredType] {
		return "", apperr.New(apperr.UnsupportedMedia, "media must be a supported video format")
	}

	key := blobstore.NewKey()
	body := io.MultiReader(bytes.NewReader(head), media.Reader)
	contentType := media.DeclaredType
	if contentType == "" {
		contentType = sniffed
	}
	if err := p.blobs.Put(ctx, key, body, contentType); err != nil {
		return "", apperr.Wrap(apperr.StorageUnavailable, "store media", err)
	}
	return key, nil
}

// DeletePost is author-only. A post that does not exist, is soft-deleted,
// or is not visible to caller reports NotFound, so the visibility
// non-disclosure policy extends to ownership checks too; a post the caller
// can see but did not author reports Forbidden.
func (p *PostService) DeletePost(ctx context.Context, caller, postID string) error {
	authorID, softDeleted, err := p.store.GetPostOwnership(ctx, postID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "lookup post", err)
	}
	if authorID == "" || softDeleted {
		return apperr.New(apperr.NotFound, "post not found")
	}
	if authorID != caller {
		vp, err := p.store.GetPostForViewer(ctx, caller, postID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "lookup post", err)
		}
		if vp == nil {
			return apperr.New(apperr.NotFound, "post not found")
		}
		return apperr.New(apperr.Forbidden, "only the author may delete this post")
	}
	if err := p.store.SoftDeletePost(ctx, postID); err != nil {
		return apperr.Wrap(apperr.Internal, "delete post", err)
	}
	p.events.Publish(ctx, events.PostTerminated, events.PostEvent{PostID: postID, AuthorID: authorID, Reason: events.ReasonAuthorDeleted})
	return nil
}

// GetPost returns the per-viewer projection, or NotFound if missing,
// expired, soft-deleted, or not visible to viewer.
func (p *PostService) GetPost(ctx context.Context, viewer, postID string) (*store.ViewerPost, error) {
	vp, err := p.store.GetPostForViewer(ctx, viewer, postID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "read post", err)
	}
	if vp == nil {
		return nil, apperr.New(apperr.NotFound, "post not found")
	}
	return vp, nil
}

// Like idempotently likes postID on behalf of caller. Liking a post not
// visible to caller reports NotFound without mutating anything.
func (p *PostService) Like(ctx context.Context, caller, postID string) (int, error) {
	if _, err := p.GetPost(ctx, caller, postID); err != nil {
		return 0, err
	}
	count, err := p.store.Like(ctx, caller, postID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "like post", err)
	}
	return count, nil
}

// Unlike idempotently unlikes postID on behalf of caller.
func (p *PostService) Unlike(ctx context.Context, caller, postID string) (int, error) {
	if _, err := p.GetPost(ctx, caller, postID); err != nil {
		return 0, err
	}
	count, err := p.store.Unlike(ctx, caller, postID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "unlike post", err)
	}
	return count, nil
}

// RecordView records a view, or silently does nothing if postID is not
// visible to caller — never leaking existence via an error.
func (p *PostService) RecordView(ctx context.Context, caller, postID string) error {
	vp, err := p.store.GetPostForViewer(ctx, caller, postID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "read post", err)
	}
	if vp == nil {
		return nil
	}
	now := time.Now().UTC()
	if _, err := p.store.RecordView(ctx, caller, postID, lifecycle.ViewDedupWindow, now); err != nil {
		return apperr.Wrap(apperr.Internal, "record view", err)
	}
	return nil
}
