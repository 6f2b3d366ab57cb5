package outbound

import (
	"context"
	"time"

	"github.com/fleetlog/fleetlog/domain/entity"
)

type EventType string

const (
	EventRequestCreated  EventType = "request.created"
	EventRequestApproved EventType = "request.approved"
	EventRequestRejected EventType = "request.rejected"
)

// ChangeRequestEvent is emitted whenever a change request is created or resolved
type ChangeRequestEvent struct {
	ID         string                `json:"id"`
	Type       EventType             `json:"type"`
	OccurredAt time.Time             `json:"occurred_at"`
	Request    *entity.ChangeRequest `json:"request"`
}

type NotificationSink interface {
	Notify(ctx context.Context, event ChangeRequestEvent) error
}
