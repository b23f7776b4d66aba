package events

import (
	"context"
	"testing"
)

func TestNoop_PublishAndCloseAlwaysSucceed(t *testing.T) {
	p := NewNoop()
	if err := p.Publish(context.Background(), PostCreated, PostEvent{PostID: "p1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
