package changerequest

import (
	"context"
	"fmt"

	"github.com/fleetlog/fleetlog/application/port/inbound"
	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
	"github.com/fleetlog/fleetlog/pkg/payload"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type DiffRequestUseCase struct {
	repo   outbound.ChangeRequestRepository
	tracer trace.Tracer
}

func NewDiffRequestUseCase(repo outbound.ChangeRequestRepository, tracer trace.Tracer) *DiffRequestUseCase {
	return &DiffRequestUseCase{repo: repo, tracer: tracer}
}

// Execute compares the proposed values of a request with its snapshot.
// Requests without a snapshot report every field as added.
func (uc *DiffRequestUseCase) Execute(ctx context.Context, id int64) (*inbound.ChangeRequestDiff, error) {
	ctx, span := uc.tracer.Start(ctx, "changerequest.Diff", trace.WithAttributes(attribute.Int64("request.id", id)))
	defer span.End()

	req, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to find change request %d: %w", id, err)
	}

	changes, err := payload.Diff(req.Payload)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err)
	}

	return &inbound.ChangeRequestDiff{
		RequestID: req.ID,
		Type:      req.Type,
		Changes:   changes,
	}, nil
}
