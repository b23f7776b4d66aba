package api

import (
	"net/http"
)

// Follow handles POST /users/{id}/follow.
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	target := r.PathValue("id")

	if err := h.follows.Follow(r.Context(), viewer.UserID, target); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unfollow handles DELETE /users/{id}/follow.
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	target := r.PathValue("id")

	if err := h.follows.Unfollow(r.Context(), viewer.UserID, target); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
