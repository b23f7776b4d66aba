package api

import (
	"net/http"

	"github.com/alphabot-ai/flicker/internal/service"
)

type voteResponse struct {
	Upvotes         int    `json:"upvotes"`
	Downvotes       int    `json:"downvotes"`
	CallerDirection string `json:"caller_direction,omitempty"`
}

// Vote handles POST /comments/{id}/vote. Form field "direction" is one of
// "up", "down", "remove" (spec.md §6).
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)
	commentID := r.PathValue("id")
	direction := r.FormValue("direction")

	result, err := h.comments.Vote(r.Context(), viewer.UserID, commentID, service.VoteDirection(direction))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, voteResponse{
		Upvotes:         result.Upvotes,
		Downvotes:       result.Downvotes,
		CallerDirection: string(result.CallerDirection),
	})
}
