package api

import (
	"net/http"
	"time"

	"github.com/alphabot-ai/flicker/internal/apperr"
	"github.com/alphabot-ai/flicker/internal/service"
	"github.com/alphabot-ai/flicker/internal/store"
)

type postBody struct {
	ID                string  `json:"id"`
	AuthorID          string  `json:"author_id"`
	AuthorDisplayName string  `json:"author_display_name"`
	Body              string  `json:"body"`
	MediaURL          string  `json:"media_url,omitempty"`
	Visibility        string  `json:"visibility"`
	CreatedAt         string  `json:"created_at"`
	ExpiresAt         string  `json:"expires_at"`
	HoursRemaining    float64 `json:"hours_remaining"`
	ViewCount         int     `json:"view_count"`
	LikeCount         int     `json:"like_count"`
	CommentCount      int     `json:"comment_count"`
	LikedByViewer     bool    `json:"liked_by_viewer"`
}

func (h *Handler) toPostBody(vp *store.ViewerPost) postBody {
	return postBody{
		ID:                vp.ID,
		AuthorID:          vp.AuthorID,
		AuthorDisplayName: vp.AuthorDisplayName,
		Body:              vp.Body,
		MediaURL:          h.mediaURL(vp.MediaKey),
		Visibility:        string(vp.Visibility),
		CreatedAt:         vp.CreatedAt.UTC().Format(httpTimeFormat),
		ExpiresAt:         vp.ExpiresAt.UTC().Format(httpTimeFormat),
		HoursRemaining:    hoursRemaining(vp.ExpiresAt),
		ViewCount:         vp.ViewCount,
		LikeCount:         vp.LikeCount,
		CommentCount:      vp.CommentCount,
		LikedByViewer:     vp.LikedByViewer,
	}
}

// hoursRemaining is spec.md §4.5's hours_remaining = (expires_at - now),
// floored at zero for a post whose expiry has passed but whose reaper
// sweep has not yet run.
func hoursRemaining(expiresAt time.Time) float64 {
	remaining := time.Until(expiresAt).Hours()
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (h *Handler) mediaURL(key string) string {
	if key == "" {
		return ""
	}
	return h.cfg.BlobBaseURL + "/" + key
}

const httpTimeFormat = "2006-01-02T15:04:05.000Z07:00"

const (
	maxMultipartMemory = 32 << 20 // in-memory part buffer; media itself streams to disk via ingestMedia
)

// CreatePost handles POST /posts. Accepts multipart/form-data with a
// "body" text field, a "visibility" field (public|friends) and an
// optional "media" file part.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.writeError(w, apperr.New(apperr.InvalidInput, "malformed multipart body"))
		return
	}

	body := r.FormValue("body")
	visibility := store.Visibility(r.FormValue("visibility"))
	if visibility == "" {
		visibility = store.VisibilityPublic
	}

	var media *service.MediaUpload
	if file, header, err := r.FormFile("media"); err == nil {
		defer file.Close()
		media = &service.MediaUpload{
			Reader:       file,
			DeclaredType: header.Header.Get("Content-Type"),
			Size:         header.Size,
		}
	}

	vp, err := h.posts.CreatePost(r.Context(), viewer.UserID, body, visibility, media)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toPostBody(vp))
}

// GetPost handles GET /posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	id := r.PathValue("id")

	vp, err := h.posts.GetPost(r.Context(), viewer.UserID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toPostBody(vp))
}

// DeletePost handles DELETE /posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	id := r.PathValue("id")

	if err := h.posts.DeletePost(r.Context(), viewer.UserID, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type likeBody struct {
	LikeCount int `json:"like_count"`
}

// LikePost handles POST /posts/{id}/like.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	id := r.PathValue("id")

	count, err := h.posts.Like(r.Context(), viewer.UserID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likeBody{LikeCount: count})
}

// UnlikePost handles DELETE /posts/{id}/like.
func (h *Handler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	id := r.PathValue("id")

	count, err := h.posts.Unlike(r.Context(), viewer.UserID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likeBody{LikeCount: count})
}

// RecordView handles POST /posts/{id}/view.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	id := r.PathValue("id")

	if err := h.posts.RecordView(r.Context(), viewer.UserID, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
