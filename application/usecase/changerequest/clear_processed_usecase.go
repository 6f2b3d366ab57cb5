package changerequest

import (
	"context"
	"fmt"

	"github.com/fleetlog/fleetlog/application/port/inbound"
	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ClearProcessedUseCase struct {
	repo    outbound.ChangeRequestRepository
	metrics outbound.WorkflowMetrics
	logger  logger.Logger
	tracer  trace.Tracer
}

func NewClearProcessedUseCase(repo outbound.ChangeRequestRepository, metrics outbound.WorkflowMetrics, log logger.Logger, tracer trace.Tracer) *ClearProcessedUseCase {
	return &ClearProcessedUseCase{repo: repo, metrics: metrics, logger: log, tracer: tracer}
}

// Execute removes approved and rejected requests. Pending ones are kept.
func (uc *ClearProcessedUseCase) Execute(ctx context.Context) (*inbound.ClearProcessedResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "changerequest.ClearProcessed")
	defer span.End()

	deleted, err := uc.repo.DeleteProcessed(ctx)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to clear processed change requests: %w", err)
	}
	span.SetAttributes(attribute.Int64("requests.deleted", deleted))

	uc.metrics.RequestsCleared(deleted)
	uc.logger.Info(ctx, "Processed change requests cleared", map[string]interface{}{
		"deleted": deleted,
	})

	return &inbound.ClearProcessedResponse{Deleted: deleted}, nil
}
