package notification

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/fleetlog/fleetlog/application/port/outbound"
)

// Fanout delivers each event to every sink concurrently.
// A failing sink does not stop the others; all failures are joined.
type Fanout struct {
	sinks []outbound.NotificationSink
}

var _ outbound.NotificationSink = (*Fanout)(nil)

func NewFanout(sinks ...outbound.NotificationSink) *Fanout {
	kept := make([]outbound.NotificationSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Fanout{sinks: kept}
}

func (f *Fanout) Notify(ctx context.Context, event outbound.ChangeRequestEvent) error {
	errs := make([]error, len(f.sinks))

	var g errgroup.Group
	for i, sink := range f.sinks {
		g.Go(func() error {
			errs[i] = sink.Notify(ctx, event)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
