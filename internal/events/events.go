// Package events is the core's hand-off boundary to the out-of-scope
// notification and recommender collaborators spec.md §1 mentions as
// external. It has no consumer in this repository: publishing a domain
// event is additive instrumentation, never a correctness dependency of
// the core itself.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	PostCreated              = "post.created"
	PostTerminated           = "post.terminated"
	CommentTerminated        = "comment.toxicity_terminated"
	FollowCreated            = "follow.created"
	ReasonExpired            = "expired"
	ReasonAuthorDeleted      = "author_deleted"
	ReasonToxicityPropagated = "toxicity_propagated"
)

// Publisher publishes a domain event under a routing key. If no broker is
// configured, NewNoop is wired in instead, so the core runs standalone in
// dev/test.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// PostEvent is published for post.created and post.terminated.
type PostEvent struct {
	PostID   string `json:"post_id"`
	AuthorID string `json:"author_id"`
	Reason   string `json:"reason,omitempty"`
}

// CommentEvent is published for comment.toxicity_terminated.
type CommentEvent struct {
	CommentID string `json:"comment_id"`
	PostID    string `json:"post_id"`
}

// FollowEvent is published for follow.created.
type FollowEvent struct {
	FollowerID string `json:"follower_id"`
	FolloweeID string `json:"followee_id"`
}

type noopPublisher struct{}

// NewNoop returns a Publisher that drops every event. Used when
// RABBITMQ_URL is unset.
func NewNoop() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, string, any) error { return nil }
func (noopPublisher) Close() error                               { return nil }

// RabbitPublisher publishes to a topic exchange via amqp091-go.
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewRabbit(url, exchange string) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *RabbitPublisher) Close() error {
	_ = p.ch.Close()
	return p.conn.Close()
}

func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) <= 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
	}

	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		MessageId:   uuid.NewString(),
		Timestamp:   time.Now(),
	})
}
