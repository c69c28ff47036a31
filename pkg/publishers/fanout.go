package publishers

import (
	"context"
	"errors"
	"fmt"
)

// Fanout dispatches event batches to all configured publishers. It satisfies
// the Publisher interface itself so callers can treat one sink and many sinks
// the same way.
type Fanout struct {
	publishers []Publisher
}

// NewFanout builds a dispatcher that fans out events across publishers.
func NewFanout(pubs []Publisher) *Fanout {
	cp := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p == nil {
			continue
		}
		cp = append(cp, p)
	}
	return &Fanout{publishers: cp}
}

func (f *Fanout) ID() string   { return "fanout" }
func (f *Fanout) Type() string { return "fanout" }

// Publish forwards the batch to every registered publisher. Failures are
// aggregated so one slow or broken sink does not starve the others.
func (f *Fanout) Publish(ctx context.Context, events []Event) error {
	if f == nil || len(f.publishers) == 0 || len(events) == 0 {
		return nil
	}

	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, events); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every registered publisher, aggregating errors.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}

	var errs []error
	for _, p := range f.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// Size returns the number of active publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}
