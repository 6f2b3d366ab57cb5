package changerequest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleetlog/fleetlog/application/port/inbound"
	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MutationFailure is returned by Resolve when a request was approved and
// stored but its change could not be applied to the target entity.
type MutationFailure struct {
	RequestID int64
	Type      entity.RequestType
	Err       error
}

func (e *MutationFailure) Error() string {
	return fmt.Sprintf("request %d approved, but %s could not be applied: %v", e.RequestID, e.Type, e.Err)
}

func (e *MutationFailure) Unwrap() error {
	return e.Err
}

func (e *MutationFailure) Is(target error) bool {
	return target == entity.ErrMutationFailed
}

type ResolveRequestUseCase struct {
	repo     outbound.ChangeRequestRepository
	dispatch map[entity.RequestType]mutation
	notifier *notifier
	metrics  outbound.WorkflowMetrics
	logger   logger.Logger
	now      func() time.Time
	tracer   trace.Tracer
}

func NewResolveRequestUseCase(
	repo outbound.ChangeRequestRepository,
	mutators Mutators,
	n *notifier,
	metrics outbound.WorkflowMetrics,
	log logger.Logger,
	now func() time.Time,
	tracer trace.Tracer,
) *ResolveRequestUseCase {
	return &ResolveRequestUseCase{
		repo:     repo,
		dispatch: dispatchTable(mutators),
		notifier: n,
		metrics:  metrics,
		logger:   log,
		now:      now,
		tracer:   tracer,
	}
}

// Execute approves or rejects a pending request. The status change is stored
// with a conditional update, so only one of several concurrent resolvers wins.
// A failed mutation does not undo the status change: the resolved request is
// returned together with a *MutationFailure.
func (uc *ResolveRequestUseCase) Execute(ctx context.Context, req inbound.ResolveChangeRequest) (*entity.ChangeRequest, error) {
	ctx, span := uc.tracer.Start(ctx, "changerequest.Resolve", trace.WithAttributes(
		attribute.Int64("request.id", req.RequestID),
		attribute.Bool("request.approved", req.Approved),
		attribute.Int64("request.admin_id", req.AdminID),
	))
	defer span.End()

	current, err := uc.repo.FindByID(ctx, req.RequestID)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to find change request %d: %w", req.RequestID, err)
	}

	resolved := current.Clone()
	if err := resolved.Resolve(req.Approved, req.Response, req.AdminID, uc.now()); err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("cannot resolve change request %d: %w", req.RequestID, err)
	}

	if err := uc.repo.UpdateIfPending(ctx, resolved); err != nil {
		recordError(span, err)
		if errors.Is(err, entity.ErrRequestAlreadyProcessed) {
			logger.LogWorkflowEvent(ctx, uc.logger, "resolve_lost_race", req.RequestID, req.AdminID, nil)
		}
		return nil, fmt.Errorf("cannot resolve change request %d: %w", req.RequestID, err)
	}

	outcome := string(resolved.Status)
	uc.metrics.RequestResolved(string(resolved.Type), outcome)
	logger.LogWorkflowEvent(ctx, uc.logger, "request_resolved", resolved.ID, req.AdminID, map[string]interface{}{
		"type":   string(resolved.Type),
		"status": outcome,
	})

	var result error
	if req.Approved {
		if err := uc.apply(ctx, resolved); err != nil {
			recordError(span, err)
			uc.metrics.MutationFailed(string(resolved.Type))
			uc.logger.Error(ctx, "Approved change could not be applied", err, map[string]interface{}{
				"request_id": resolved.ID,
				"type":       string(resolved.Type),
			})
			result = &MutationFailure{RequestID: resolved.ID, Type: resolved.Type, Err: err}
		}
	}

	eventType := outbound.EventRequestRejected
	if req.Approved {
		eventType = outbound.EventRequestApproved
	}
	uc.notifier.notify(ctx, eventType, resolved)

	return resolved, result
}

func (uc *ResolveRequestUseCase) apply(ctx context.Context, req *entity.ChangeRequest) error {
	mutate, ok := uc.dispatch[req.Type]
	if !ok {
		return fmt.Errorf("%w: %q", entity.ErrInvalidRequestType, req.Type)
	}

	start := time.Now()
	err := mutate(ctx, req)
	logger.LogPerformance(ctx, uc.logger, "apply_change_request", time.Since(start), map[string]interface{}{
		"request_id": req.ID,
		"type":       string(req.Type),
	})
	return err
}
