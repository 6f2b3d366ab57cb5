package changerequest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetlog/fleetlog/application/port/inbound"
	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
	"github.com/fleetlog/fleetlog/pkg/payload"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type CreateRequestUseCase struct {
	repo     outbound.ChangeRequestRepository
	actors   outbound.ActorDirectory
	notifier *notifier
	metrics  outbound.WorkflowMetrics
	logger   logger.Logger
	now      func() time.Time
	tracer   trace.Tracer
}

func NewCreateRequestUseCase(
	repo outbound.ChangeRequestRepository,
	actors outbound.ActorDirectory,
	n *notifier,
	metrics outbound.WorkflowMetrics,
	log logger.Logger,
	now func() time.Time,
	tracer trace.Tracer,
) *CreateRequestUseCase {
	return &CreateRequestUseCase{
		repo:     repo,
		actors:   actors,
		notifier: n,
		metrics:  metrics,
		logger:   log,
		now:      now,
		tracer:   tracer,
	}
}

func (uc *CreateRequestUseCase) Execute(ctx context.Context, req inbound.CreateChangeRequest) (*entity.ChangeRequest, error) {
	ctx, span := uc.tracer.Start(ctx, "changerequest.Create", trace.WithAttributes(
		attribute.String("request.type", string(req.Type)),
		attribute.Int64("request.requester_id", req.RequesterID),
	))
	defer span.End()

	if err := uc.validate(ctx, req); err != nil {
		recordError(span, err)
		return nil, err
	}

	record := entity.NewChangeRequest(
		req.Type,
		req.TargetID,
		req.TargetName,
		append(json.RawMessage(nil), req.Payload...),
		req.RequesterID,
		uc.now(),
	)

	if err := uc.repo.Insert(ctx, record); err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to store change request: %w", err)
	}
	span.SetAttributes(attribute.Int64("request.id", record.ID))

	uc.metrics.RequestCreated(string(record.Type))
	logger.LogWorkflowEvent(ctx, uc.logger, "request_created", record.ID, record.RequesterID, map[string]interface{}{
		"type": string(record.Type),
	})

	uc.notifier.notify(ctx, outbound.EventRequestCreated, record)

	return record, nil
}

func (uc *CreateRequestUseCase) validate(ctx context.Context, req inbound.CreateChangeRequest) error {
	if !req.Type.IsValid() {
		return fmt.Errorf("%w: %q", entity.ErrInvalidRequestType, req.Type)
	}

	if err := payload.Validate(req.Payload); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err)
	}

	if req.Type.RequiresTarget() && req.TargetID == nil {
		return fmt.Errorf("%w: %s", entity.ErrTargetRequired, req.Type)
	}

	exists, err := uc.actors.ActorExists(ctx, req.RequesterID)
	if err != nil {
		return fmt.Errorf("failed to verify requester: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: requester %d", entity.ErrActorNotFound, req.RequesterID)
	}

	return nil
}
