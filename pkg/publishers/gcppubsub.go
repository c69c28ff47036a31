package publishers

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// pubsubPublisher implements the Publisher interface for Google Cloud Pub/Sub.
type pubsubPublisher struct {
	id     string
	typ    string
	client *pubsub.Client
	topic  *pubsub.Topic
	log    Logger
}

func newPubSubPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("publisher %q missing gcp_pubsub configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &pubsubPublisher{
		id:     cfg.ID,
		typ:    TypePubSub,
		client: client,
		topic:  client.Topic(cfg.PubSub.Topic),
		log:    ensureLogger(log),
	}, nil
}

func (p *pubsubPublisher) ID() string   { return p.id }
func (p *pubsubPublisher) Type() string { return p.typ }

// Publish sends each event as its own Pub/Sub message and waits for the
// server acknowledgements.
func (p *pubsubPublisher) Publish(ctx context.Context, events []Event) error {
	results := make([]*pubsub.PublishResult, 0, len(events))
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		results = append(results, p.topic.Publish(ctx, &pubsub.Message{
			Data: payload,
			Attributes: map[string]string{
				"platform": evt.Platform,
				"kind":     evt.Kind,
			},
		}))
	}

	for _, res := range results {
		if _, err := res.Get(ctx); err != nil {
			p.log.ErrorObj("pubsub publisher send failed", "publisher_pubsub_error", map[string]any{
				"publisher_id": p.id,
				"error":        err.Error(),
			})
			return fmt.Errorf("publish to pubsub: %w", err)
		}
	}

	p.log.DebugObj("pubsub publisher delivered events", "publisher_pubsub_delivery", map[string]any{
		"publisher_id": p.id,
		"events":       len(events),
	})
	return nil
}

// Close flushes outstanding messages and releases the client.
func (p *pubsubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
