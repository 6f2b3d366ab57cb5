package changerequest

import (
	"context"
	"fmt"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ListRequestsUseCase struct {
	repo   outbound.ChangeRequestRepository
	tracer trace.Tracer
}

func NewListRequestsUseCase(repo outbound.ChangeRequestRepository, tracer trace.Tracer) *ListRequestsUseCase {
	return &ListRequestsUseCase{repo: repo, tracer: tracer}
}

func (uc *ListRequestsUseCase) Get(ctx context.Context, id int64) (*entity.ChangeRequest, error) {
	ctx, span := uc.tracer.Start(ctx, "changerequest.Get", trace.WithAttributes(attribute.Int64("request.id", id)))
	defer span.End()

	req, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to find change request %d: %w", id, err)
	}
	return req, nil
}

// All returns every request, newest first
func (uc *ListRequestsUseCase) All(ctx context.Context) ([]*entity.ChangeRequest, error) {
	ctx, span := uc.tracer.Start(ctx, "changerequest.ListAll")
	defer span.End()

	reqs, err := uc.repo.FindAll(ctx)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to list change requests: %w", err)
	}
	return reqs, nil
}

// Pending returns pending requests, oldest first
func (uc *ListRequestsUseCase) Pending(ctx context.Context) ([]*entity.ChangeRequest, error) {
	ctx, span := uc.tracer.Start(ctx, "changerequest.ListPending")
	defer span.End()

	reqs, err := uc.repo.FindPending(ctx)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to list pending change requests: %w", err)
	}
	return reqs, nil
}

func (uc *ListRequestsUseCase) ByRequester(ctx context.Context, requesterID int64) ([]*entity.ChangeRequest, error) {
	ctx, span := uc.tracer.Start(ctx, "changerequest.ListByRequester", trace.WithAttributes(
		attribute.Int64("request.requester_id", requesterID),
	))
	defer span.End()

	reqs, err := uc.repo.FindByRequester(ctx, requesterID)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to list change requests of requester %d: %w", requesterID, err)
	}
	return reqs, nil
}
