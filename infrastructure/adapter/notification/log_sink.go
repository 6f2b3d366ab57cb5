package notification

import (
	"context"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
)

// LogSink writes events to the structured log
type LogSink struct {
	logger logger.Logger
}

var _ outbound.NotificationSink = (*LogSink)(nil)

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Notify(ctx context.Context, event outbound.ChangeRequestEvent) error {
	fields := map[string]interface{}{
		"event_id":    event.ID,
		"event_type":  string(event.Type),
		"occurred_at": event.OccurredAt,
	}
	if event.Request != nil {
		fields["request_id"] = event.Request.ID
		fields["request_type"] = string(event.Request.Type)
		fields["request_status"] = string(event.Request.Status)
		fields["requester_id"] = event.Request.RequesterID
	}

	s.logger.Info(ctx, "Change request event", fields)
	return nil
}
