package publishers

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestPubSubPublisherPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	defer os.Unsetenv("PUBSUB_EMULATOR_HOST")
	os.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if _, err := client.CreateTopic(ctx, "topic-1"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	pub, err := newPubSubPublisher(ctx, PublisherConfig{
		ID:   "g1",
		Type: TypePubSub,
		PubSub: &PubSubConfig{
			ProjectID: "test-project",
			Topic:     "topic-1",
		},
	}, nil)
	if err != nil {
		t.Fatalf("newPubSubPublisher: %v", err)
	}
	defer pub.Close()

	err = pub.Publish(ctx, []Event{
		{Platform: "tiktok", Kind: KindPost, RecordID: "doc-1"},
		{Platform: "tiktok", Kind: KindPost, RecordID: "doc-2"},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := len(server.Messages()); got != 2 {
		t.Fatalf("expected 2 messages on emulator, got %d", got)
	}
}
