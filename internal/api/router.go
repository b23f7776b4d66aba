package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alphabot-ai/flicker/internal/ratelimit"
)

// NewRouter assembles the full HTTP surface, grounded on the teacher's
// stdlib http.ServeMux + method-pattern routing in cmd/slashclaw/main.go.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()
	limiter := ratelimit.NewMemoryLimiter()
	limiter.StartCleanup(5 * time.Minute)

	const prefix = "/api/v1"
	route := func(pattern, name string, handler http.HandlerFunc) {
		parts := strings.SplitN(pattern, " ", 2)
		mux.HandleFunc(parts[0]+" "+prefix+parts[1], withAccessLog(h.log, name, handler))
	}

	route("GET /health", "health", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	route("GET /feed", "home_feed", h.withViewer(h.HomeFeed))
	route("GET /users/{id}/posts", "user_feed", h.withViewer(h.UserFeed))
	route("GET /users/{id}/profile", "user_profile", h.withViewer(h.UserProfile))
	route("PATCH /users/{id}/profile", "update_profile", h.withViewer(h.UpdateProfile))
	route("POST /users/{id}/follow", "follow", h.withViewer(h.Follow))
	route("DELETE /users/{id}/follow", "unfollow", h.withViewer(h.Unfollow))

	route("POST /posts", "create_post", h.withViewer(h.withRateLimit(limiter, h.cfg.PostRateLimit, h.cfg.RateLimitWindow, h.CreatePost)))
	route("GET /posts/{id}", "get_post", h.withViewer(h.GetPost))
	route("DELETE /posts/{id}", "delete_post", h.withViewer(h.DeletePost))
	route("POST /posts/{id}/like", "like_post", h.withViewer(h.LikePost))
	route("DELETE /posts/{id}/like", "unlike_post", h.withViewer(h.UnlikePost))
	route("POST /posts/{id}/view", "record_view", h.withViewer(h.RecordView))

	route("GET /posts/{id}/comments", "list_comments", h.withViewer(h.ListComments))
	route("POST /posts/{id}/comments", "create_comment", h.withViewer(h.withRateLimit(limiter, h.cfg.CommentRateLimit, h.cfg.RateLimitWindow, h.CreateComment)))

	route("POST /comments/{id}/vote", "vote", h.withViewer(h.withRateLimit(limiter, h.cfg.VoteRateLimit, h.cfg.RateLimitWindow, h.Vote)))

	return mux
}
