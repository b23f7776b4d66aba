package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/alphabot-ai/flicker/internal/apperr"
	"github.com/alphabot-ai/flicker/internal/service"
	"github.com/alphabot-ai/flicker/internal/store"
)

type feedBody struct {
	Posts      []postBody `json:"posts"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func (h *Handler) toFeedBody(posts []*store.ViewerPost, next string) feedBody {
	out := make([]postBody, 0, len(posts))
	for _, p := range posts {
		out = append(out, h.toPostBody(p))
	}
	return feedBody{Posts: out, NextCursor: next}
}

func parsePaging(r *http.Request) (cursor string, limit int) {
	cursor = r.URL.Query().Get("cursor")
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	return cursor, limit
}

// HomeFeed handles GET /feed.
func (h *Handler) HomeFeed(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	cursor, limit := parsePaging(r)

	posts, next, err := h.feed.HomeFeed(r.Context(), viewer.UserID, cursor, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toFeedBody(posts, next))
}

// UserFeed handles GET /users/{id}/posts.
func (h *Handler) UserFeed(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	target := r.PathValue("id")
	cursor, limit := parsePaging(r)

	posts, next, err := h.feed.UserFeed(r.Context(), viewer.UserID, target, cursor, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toFeedBody(posts, next))
}

type profileBody struct {
	UserID           string `json:"user_id"`
	DisplayName      string `json:"display_name"`
	Bio              string `json:"bio,omitempty"`
	PostCount        int    `json:"post_count"`
	Followers        int    `json:"followers"`
	Following        int    `json:"following"`
	FollowedByViewer bool   `json:"followed_by_viewer"`
}

func toProfileBody(p *service.Profile) profileBody {
	return profileBody{
		UserID:           p.UserID,
		DisplayName:      p.DisplayName,
		Bio:              p.Bio,
		PostCount:        p.PostCount,
		Followers:        p.Followers,
		Following:        p.Following,
		FollowedByViewer: p.FollowedByViewer,
	}
}

// UserProfile handles GET /users/{id}/profile.
func (h *Handler) UserProfile(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	target := r.PathValue("id")

	p, err := h.feed.UserProfile(r.Context(), viewer.UserID, target)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileBody(p))
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
}

// UpdateProfile handles PATCH /users/{id}/profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	target := r.PathValue("id")

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.New(apperr.InvalidInput, "malformed JSON body"))
		return
	}

	if err := h.feed.UpdateProfile(r.Context(), viewer.UserID, target, req.DisplayName, req.Bio); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
