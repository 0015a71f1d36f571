package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// JetStreamPublisher is the subset of jetstream.JetStream used for publishing.
type JetStreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher publishes engagement events to NATS JetStream.
type Publisher struct {
	js JetStreamPublisher
}

// NewPublisher creates a new Publisher.
func NewPublisher(js JetStreamPublisher) *Publisher {
	return &Publisher{js: js}
}

// Publish sends ev on the subject for its type.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	return p.publish(ctx, Subject(ev.Type), ev)
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
