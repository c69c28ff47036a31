package publishers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsClient defines the minimal subset of the SNS client used by snsPublisher.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsPublisher implements the Publisher interface for AWS SNS topics.
type snsPublisher struct {
	id       string
	typ      string
	topicARN string
	client   snsClient
	log      Logger
}

func newSNSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q missing sns configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.SNS.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &snsPublisher{
		id:       cfg.ID,
		typ:      TypeSNS,
		topicARN: cfg.SNS.TopicARN,
		client:   sns.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *snsPublisher) ID() string   { return s.id }
func (s *snsPublisher) Type() string { return s.typ }

// Publish fans each event out to the configured SNS topic.
func (s *snsPublisher) Publish(ctx context.Context, events []Event) error {
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}

		input := &sns.PublishInput{
			TopicArn: aws.String(s.topicARN),
			Message:  aws.String(string(payload)),
			MessageAttributes: map[string]types.MessageAttributeValue{
				"platform": {
					DataType:    aws.String("String"),
					StringValue: aws.String(evt.Platform),
				},
				"kind": {
					DataType:    aws.String("String"),
					StringValue: aws.String(evt.Kind),
				},
			},
		}

		if _, err := s.client.Publish(ctx, input); err != nil {
			s.log.ErrorObj("sns publisher send failed", "publisher_sns_error", map[string]any{
				"publisher_id": s.id,
				"record_id":    evt.RecordID,
				"error":        err.Error(),
			})
			return fmt.Errorf("publish to sns: %w", err)
		}
	}

	s.log.DebugObj("sns publisher delivered events", "publisher_sns_delivery", map[string]any{
		"publisher_id": s.id,
		"events":       len(events),
	})
	return nil
}

func (s *snsPublisher) Close() error { return nil }
