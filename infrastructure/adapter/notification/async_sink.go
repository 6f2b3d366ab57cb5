package notification

import (
	"context"
	"sync"
	"time"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
)

const defaultAsyncTimeout = 5 * time.Second

// AsyncSink hands events to the wrapped sink in the background.
// Delivery outlives the caller's context but is bounded by its own timeout.
type AsyncSink struct {
	next    outbound.NotificationSink
	logger  logger.Logger
	timeout time.Duration

	wg sync.WaitGroup
}

var _ outbound.NotificationSink = (*AsyncSink)(nil)

func NewAsyncSink(next outbound.NotificationSink, log logger.Logger, timeout time.Duration) *AsyncSink {
	if timeout <= 0 {
		timeout = defaultAsyncTimeout
	}
	return &AsyncSink{next: next, logger: log, timeout: timeout}
}

// Notify always returns nil; delivery errors are logged
func (s *AsyncSink) Notify(ctx context.Context, event outbound.ChangeRequestEvent) error {
	detached := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(detached, s.timeout)
		defer cancel()

		if err := s.next.Notify(ctx, event); err != nil {
			s.logger.Error(ctx, "Async notification delivery failed", err, map[string]interface{}{
				"event_id":   event.ID,
				"event_type": string(event.Type),
			})
		}
	}()
	return nil
}

// Wait blocks until pending deliveries finish or ctx is done
func (s *AsyncSink) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
