// Package reaper implements the nightly sweep that soft-deletes expired
// posts and comments (spec.md §4.2). A sweep is a single bulk UPDATE per
// table, not a row-by-row loop: Lifecycle.ShouldReap has no
// read-modify-write gap, so there is nothing to lock.
package reaper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alphabot-ai/flicker/internal/events"
	"github.com/alphabot-ai/flicker/internal/metrics"
	"github.com/alphabot-ai/flicker/internal/store"
)

// Store is the subset of *store.Store a sweep needs, narrowed for testing.
type Store interface {
	ReapPosts(ctx context.Context, now time.Time) ([]string, error)
	ReapComments(ctx context.Context, now time.Time) ([]string, error)
	GetPostOwnership(ctx context.Context, id string) (authorID string, softDeleted bool, err error)
}

// Summary reports one sweep's outcome.
type Summary struct {
	StartedAt       time.Time
	FinishedAt      time.Time
	PostsExpired    int
	CommentsExpired int
	Errors          []string
}

type Reaper struct {
	store  Store
	events events.Publisher
	log    *zap.Logger
}

func New(s Store, ev events.Publisher, log *zap.Logger) *Reaper {
	return &Reaper{store: s, events: ev, log: log}
}

// Run performs one sweep: soft-deletes expired posts, soft-deletes expired
// comments, and publishes a post.terminated/expired event for each post it
// touched. A single id's event-publish failure is retried once and then
// logged and counted, never aborting the rest of the batch (spec.md §4.2,
// §7).
func (r *Reaper) Run(ctx context.Context, now time.Time) Summary {
	started := time.Now()
	summary := Summary{StartedAt: now}
	defer func() {
		summary.FinishedAt = time.Now()
		metrics.ReaperSweepDuration.Observe(time.Since(started).Seconds())
	}()

	postIDs, err := r.store.ReapPosts(ctx, now)
	if err != nil {
		r.log.Error("reap posts", zap.Error(err))
		metrics.ReaperErrors.Inc()
		summary.Errors = append(summary.Errors, err.Error())
	}
	summary.PostsExpired = len(postIDs)
	metrics.ReaperPostsExpired.Add(float64(len(postIDs)))

	for _, id := range postIDs {
		authorID, _, err := r.store.GetPostOwnership(ctx, id)
		if err != nil {
			r.log.Warn("lookup expired post author", zap.String("post_id", id), zap.Error(err))
			continue
		}
		r.publishWithRetry(ctx, events.PostTerminated, events.PostEvent{
			PostID: id, AuthorID: authorID, Reason: events.ReasonExpired,
		}, &summary)
	}

	commentIDs, err := r.store.ReapComments(ctx, now)
	if err != nil {
		r.log.Error("reap comments", zap.Error(err))
		metrics.ReaperErrors.Inc()
		summary.Errors = append(summary.Errors, err.Error())
	}
	summary.CommentsExpired = len(commentIDs)
	metrics.ReaperCommentsExpired.Add(float64(len(commentIDs)))

	r.log.Info("reap sweep complete",
		zap.Int("posts_expired", summary.PostsExpired),
		zap.Int("comments_expired", summary.CommentsExpired),
		zap.Int("errors", len(summary.Errors)),
	)
	return summary
}

func (r *Reaper) publishWithRetry(ctx context.Context, routingKey string, event any, summary *Summary) {
	err := r.events.Publish(ctx, routingKey, event)
	if err == nil {
		return
	}
	err = r.events.Publish(ctx, routingKey, event)
	if err != nil {
		r.log.Warn("publish reaper event failed twice, dropping", zap.String("routing_key", routingKey), zap.Error(err))
		metrics.ReaperErrors.Inc()
		summary.Errors = append(summary.Errors, err.Error())
	}
}

// RunForever ticks Run every interval until ctx is cancelled, grounded on
// the teacher's ratelimit.MemoryLimiter.StartCleanup ticker-goroutine
// pattern. Used by `serve` whenever REAP_INTERVAL is positive (it defaults
// to 24h); the `reap` CLI subcommand calls Run directly for a single sweep
// instead.
func (r *Reaper) RunForever(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Run(ctx, time.Now().UTC())
		}
	}
}

var _ Store = (*store.Store)(nil)
