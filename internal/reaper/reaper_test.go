package reaper

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/alphabot-ai/flicker/internal/events"
)

type fakeStore struct {
	postIDs    []string
	commentIDs []string
	owners     map[string]string
	reapErr    error
	ownerErr   error
}

func (f *fakeStore) ReapPosts(ctx context.Context, now time.Time) ([]string, error) {
	if f.reapErr != nil {
		return nil, f.reapErr
	}
	return f.postIDs, nil
}

func (f *fakeStore) ReapComments(ctx context.Context, now time.Time) ([]string, error) {
	return f.commentIDs, nil
}

func (f *fakeStore) GetPostOwnership(ctx context.Context, id string) (string, bool, error) {
	if f.ownerErr != nil {
		return "", false, f.ownerErr
	}
	return f.owners[id], false, nil
}

type fakePublisher struct {
	failures int
	calls    []string
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, event any) error {
	f.calls = append(f.calls, routingKey)
	if f.failures > 0 {
		f.failures--
		return errors.New("broker unavailable")
	}
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newTestReaper(s Store, ev events.Publisher) *Reaper {
	return New(s, ev, zap.NewNop())
}

func TestRun_PublishesExpiredPostEvents(t *testing.T) {
	s := &fakeStore{
		postIDs:    []string{"p1", "p2"},
		commentIDs: []string{"c1"},
		owners:     map[string]string{"p1": "u1", "p2": "u2"},
	}
	pub := &fakePublisher{}
	r := newTestReaper(s, pub)

	summary := r.Run(context.Background(), time.Now())

	if summary.PostsExpired != 2 {
		t.Fatalf("expected 2 posts expired, got %d", summary.PostsExpired)
	}
	if summary.CommentsExpired != 1 {
		t.Fatalf("expected 1 comment expired, got %d", summary.CommentsExpired)
	}
	if len(pub.calls) != 2 {
		t.Fatalf("expected 2 publish calls, got %d", len(pub.calls))
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", summary.Errors)
	}
}

func TestRun_RetriesPublishOnceThenRecordsError(t *testing.T) {
	s := &fakeStore{postIDs: []string{"p1"}, owners: map[string]string{"p1": "u1"}}
	pub := &fakePublisher{failures: 2}
	r := newTestReaper(s, pub)

	summary := r.Run(context.Background(), time.Now())

	if len(pub.calls) != 2 {
		t.Fatalf("expected publish to be attempted twice, got %d", len(pub.calls))
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("expected one recorded error after both attempts failed, got %v", summary.Errors)
	}
}

func TestRun_RetriesPublishOnceThenSucceeds(t *testing.T) {
	s := &fakeStore{postIDs: []string{"p1"}, owners: map[string]string{"p1": "u1"}}
	pub := &fakePublisher{failures: 1}
	r := newTestReaper(s, pub)

	summary := r.Run(context.Background(), time.Now())

	if len(pub.calls) != 2 {
		t.Fatalf("expected publish to be attempted twice, got %d", len(pub.calls))
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("expected no errors once the retry succeeds, got %v", summary.Errors)
	}
}

func TestRun_StoreErrorIsRecordedNotFatal(t *testing.T) {
	s := &fakeStore{reapErr: errors.New("db down"), commentIDs: []string{"c1"}}
	pub := &fakePublisher{}
	r := newTestReaper(s, pub)

	summary := r.Run(context.Background(), time.Now())

	if len(summary.Errors) != 1 {
		t.Fatalf("expected one error recorded, got %v", summary.Errors)
	}
	if summary.CommentsExpired != 1 {
		t.Fatalf("expected comment sweep to still run after post sweep failed, got %d", summary.CommentsExpired)
	}
}
