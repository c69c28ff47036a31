package publishers

import (
	"context"
	"time"
)

// Event kinds.
const (
	KindPost    = "post"
	KindComment = "comment"
)

// Event announces one newly ingested record to downstream consumers.
type Event struct {
	Platform    string    `json:"platform"`
	AccountID   string    `json:"account_id"`
	Kind        string    `json:"kind"`
	RecordID    string    `json:"record_id"`
	PlatformID  string    `json:"platform_id"`
	CollectedAt time.Time `json:"collected_at"`
}

// Publisher delivers ingest events to a downstream sink (SQS, SNS, Pub/Sub,
// HTTP, log).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, events []Event) error
	Close() error
}
