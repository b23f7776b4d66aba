package api

import (
	"net/http"

	"github.com/alphabot-ai/flicker/internal/store"
)

type commentBody struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	AuthorID  string `json:"author_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
}

func toCommentBody(c *store.Comment) commentBody {
	return commentBody{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt.UTC().Format(httpTimeFormat),
		ExpiresAt: c.ExpiresAt.UTC().Format(httpTimeFormat),
		Upvotes:   c.Upvotes,
		Downvotes: c.Downvotes,
	}
}

// CreateComment handles POST /posts/{id}/comments. Form field "body"
// (spec.md §6).
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	postID := r.PathValue("id")
	body := r.FormValue("body")

	c, err := h.comments.CreateComment(r.Context(), viewer.UserID, postID, body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentBody(c))
}

// ListComments handles GET /posts/{id}/comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	postID := r.PathValue("id")

	comments, err := h.comments.ListComments(r.Context(), viewer.UserID, postID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]commentBody, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentBody(c))
	}
	writeJSON(w, http.StatusOK, out)
}
