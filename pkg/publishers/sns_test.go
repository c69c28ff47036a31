package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakeSNSClient struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-456")}, nil
}

func TestSNSPublisherPublishSuccess(t *testing.T) {
	client := &fakeSNSClient{}
	pub := &snsPublisher{
		id:       "topic1",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:eu-west-1:1234:ingest",
		client:   client,
		log:      noopLogger{},
	}

	err := pub.Publish(context.Background(), []Event{
		{Platform: "instagram", Kind: KindPost, RecordID: "doc-9"},
	})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("expected 1 publish call, got %d", len(client.inputs))
	}
	if got := aws.ToString(client.inputs[0].TopicArn); got != "arn:aws:sns:eu-west-1:1234:ingest" {
		t.Fatalf("TopicArn = %s", got)
	}
	attr, ok := client.inputs[0].MessageAttributes["platform"]
	if !ok || aws.ToString(attr.StringValue) != "instagram" {
		t.Fatalf("platform attribute missing or wrong: %#v", attr)
	}
	if client.inputs[0].Message == nil || !strings.Contains(aws.ToString(client.inputs[0].Message), `"record_id":"doc-9"`) {
		t.Fatalf("Message missing record_id: %s", aws.ToString(client.inputs[0].Message))
	}
}

func TestSNSPublisherPublishError(t *testing.T) {
	client := &fakeSNSClient{err: errors.New("boom")}
	pub := &snsPublisher{
		id:       "topic1",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:eu-west-1:1234:ingest",
		client:   client,
		log:      noopLogger{},
	}

	err := pub.Publish(context.Background(), []Event{{Platform: "instagram", Kind: KindPost}})
	if err == nil {
		t.Fatalf("expected error from Publish")
	}
}
