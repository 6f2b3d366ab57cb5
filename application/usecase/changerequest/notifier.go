package changerequest

import (
	"context"
	"time"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
	"github.com/google/uuid"
)

// notifier delivers workflow events. Delivery errors are logged and dropped.
type notifier struct {
	sink   outbound.NotificationSink
	logger logger.Logger
	now    func() time.Time
}

func (n *notifier) notify(ctx context.Context, eventType outbound.EventType, req *entity.ChangeRequest) {
	if n == nil || n.sink == nil {
		return
	}

	event := outbound.ChangeRequestEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: n.now(),
		Request:    req.Clone(),
	}

	if err := n.sink.Notify(ctx, event); err != nil {
		n.logger.Warn(ctx, "Failed to deliver change request notification", map[string]interface{}{
			"event_id":   event.ID,
			"event_type": string(eventType),
			"request_id": req.ID,
			"error":      err.Error(),
		})
	}
}
