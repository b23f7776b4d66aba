// Package api wires the HTTP surface: request decoding, apperr -> status
// mapping, and dispatch into the service layer. Apart from the health
// check's database ping, handlers never touch Store directly.
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/alphabot-ai/flicker/internal/apperr"
	"github.com/alphabot-ai/flicker/internal/config"
	"github.com/alphabot-ai/flicker/internal/identity"
	"github.com/alphabot-ai/flicker/internal/service"
	"github.com/alphabot-ai/flicker/internal/store"
)

// Handler holds every dependency a route needs. Constructed once at
// startup and passed to NewRouter.
type Handler struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *store.Store
	identity identity.Resolver
	posts    *service.PostService
	comments *service.CommentService
	follows  *service.FollowService
	feed     *service.FeedService
}

func NewHandler(
	cfg *config.Config,
	log *zap.Logger,
	st *store.Store,
	res identity.Resolver,
	posts *service.PostService,
	comments *service.CommentService,
	follows *service.FollowService,
	feed *service.FeedService,
) *Handler {
	return &Handler{
		cfg:      cfg,
		log:      log,
		store:    st,
		identity: res,
		posts:    posts,
		comments: comments,
		follows:  follows,
		feed:     feed,
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

// writeJSON marshals v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps an apperr.Error's Kind to an HTTP status (the only
// place in the codebase that knows this mapping) and writes it as JSON.
// Any error that is not an *apperr.Error is treated as Internal and its
// detail is logged but never echoed to the caller.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	kind := apperr.Internal
	message := "internal error"

	if appErr, ok := err.(*apperr.Error); ok {
		kind = appErr.Kind
		message = appErr.Message
	} else {
		h.log.Error("unclassified error", zap.Error(err))
	}

	status := statusForKind(kind)
	if status == http.StatusInternalServerError && message == "" {
		message = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind, Message: message}})
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.PayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperr.UnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case apperr.RateLimited:
		return http.StatusTooManyRequests
	case apperr.StorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
