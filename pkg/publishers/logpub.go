package publishers

import (
	"context"
)

// logPublisher writes events to the application log. Useful as a sink in
// development environments where no broker is available.
type logPublisher struct {
	id  string
	typ string
	log Logger
}

func newLogPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	return &logPublisher{
		id:  cfg.ID,
		typ: TypeLog,
		log: ensureLogger(log),
	}, nil
}

func (l *logPublisher) ID() string   { return l.id }
func (l *logPublisher) Type() string { return l.typ }

func (l *logPublisher) Publish(_ context.Context, events []Event) error {
	for _, evt := range events {
		l.log.InfoObj("ingest event", "publisher_log_event", map[string]any{
			"publisher_id": l.id,
			"platform":     evt.Platform,
			"account_id":   evt.AccountID,
			"kind":         evt.Kind,
			"record_id":    evt.RecordID,
			"platform_id":  evt.PlatformID,
		})
	}
	return nil
}

func (l *logPublisher) Close() error { return nil }
