// Package changerequest implements the approval workflow for manager-proposed
// changes to drivers and vehicles.
package changerequest

import (
	"context"
	"time"

	"github.com/fleetlog/fleetlog/application/port/inbound"
	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fleetlog/fleetlog/application/usecase/changerequest"

// Mutators holds the entity mutators approved requests are dispatched to.
// Creation handles OTHER requests.
type Mutators struct {
	Driver   outbound.EntityMutator
	Vehicle  outbound.EntityMutator
	Creation outbound.EntityMutator
}

type Option func(*options)

type options struct {
	now     func() time.Time
	metrics outbound.WorkflowMetrics
	sink    outbound.NotificationSink
	tracing trace.TracerProvider
}

// WithClock overrides time.Now for createdAt and processedAt
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithMetrics(m outbound.WorkflowMetrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithNotificationSink(sink outbound.NotificationSink) Option {
	return func(o *options) { o.sink = sink }
}

// WithTracerProvider sets where workflow spans go; the global provider is used otherwise
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracing = tp }
}

type ChangeRequestUseCaseImpl struct {
	createRequestUseCase  *CreateRequestUseCase
	listRequestsUseCase   *ListRequestsUseCase
	resolveRequestUseCase *ResolveRequestUseCase
	clearProcessedUseCase *ClearProcessedUseCase
	diffRequestUseCase    *DiffRequestUseCase
}

func NewChangeRequestUseCase(
	repo outbound.ChangeRequestRepository,
	actors outbound.ActorDirectory,
	mutators Mutators,
	log logger.Logger,
	opts ...Option,
) inbound.ChangeRequestUseCase {
	o := options{now: time.Now, metrics: nopMetrics{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = nopMetrics{}
	}
	if o.tracing == nil {
		o.tracing = otel.GetTracerProvider()
	}
	tracer := o.tracing.Tracer(tracerName)

	n := &notifier{sink: o.sink, logger: log, now: o.now}

	return &ChangeRequestUseCaseImpl{
		createRequestUseCase:  NewCreateRequestUseCase(repo, actors, n, o.metrics, log, o.now, tracer),
		listRequestsUseCase:   NewListRequestsUseCase(repo, tracer),
		resolveRequestUseCase: NewResolveRequestUseCase(repo, mutators, n, o.metrics, log, o.now, tracer),
		clearProcessedUseCase: NewClearProcessedUseCase(repo, o.metrics, log, tracer),
		diffRequestUseCase:    NewDiffRequestUseCase(repo, tracer),
	}
}

func (uc *ChangeRequestUseCaseImpl) CreateRequest(ctx context.Context, req inbound.CreateChangeRequest) (*entity.ChangeRequest, error) {
	return uc.createRequestUseCase.Execute(ctx, req)
}

func (uc *ChangeRequestUseCaseImpl) GetRequest(ctx context.Context, id int64) (*entity.ChangeRequest, error) {
	return uc.listRequestsUseCase.Get(ctx, id)
}

func (uc *ChangeRequestUseCaseImpl) ListAll(ctx context.Context) ([]*entity.ChangeRequest, error) {
	return uc.listRequestsUseCase.All(ctx)
}

func (uc *ChangeRequestUseCaseImpl) ListPending(ctx context.Context) ([]*entity.ChangeRequest, error) {
	return uc.listRequestsUseCase.Pending(ctx)
}

func (uc *ChangeRequestUseCaseImpl) ListByRequester(ctx context.Context, requesterID int64) ([]*entity.ChangeRequest, error) {
	return uc.listRequestsUseCase.ByRequester(ctx, requesterID)
}

func (uc *ChangeRequestUseCaseImpl) Resolve(ctx context.Context, req inbound.ResolveChangeRequest) (*entity.ChangeRequest, error) {
	return uc.resolveRequestUseCase.Execute(ctx, req)
}

func (uc *ChangeRequestUseCaseImpl) ClearProcessed(ctx context.Context) (*inbound.ClearProcessedResponse, error) {
	return uc.clearProcessedUseCase.Execute(ctx)
}

func (uc *ChangeRequestUseCaseImpl) Diff(ctx context.Context, id int64) (*inbound.ChangeRequestDiff, error) {
	return uc.diffRequestUseCase.Execute(ctx, id)
}

type nopMetrics struct{}

func (nopMetrics) RequestCreated(string) {}
func (nopMetrics) RequestResolved(string, string) {}
func (nopMetrics) MutationFailed(string) {}
func (nopMetrics) RequestsCleared(int64) {}
