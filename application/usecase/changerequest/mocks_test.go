package changerequest

import (
	"context"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/stretchr/testify/mock"
)

type MockEntityMutator struct {
	mock.Mock
}

func (m *MockEntityMutator) ApplyUpdate(ctx context.Context, targetID int64, diff map[string]any) error {
	args := m.Called(ctx, targetID, diff)
	return args.Error(0)
}

func (m *MockEntityMutator) Delete(ctx context.Context, targetID int64) error {
	args := m.Called(ctx, targetID)
	return args.Error(0)
}

func (m *MockEntityMutator) ApplyCreation(ctx context.Context, fields map[string]any) error {
	args := m.Called(ctx, fields)
	return args.Error(0)
}

type MockNotificationSink struct {
	mock.Mock
}

func (m *MockNotificationSink) Notify(ctx context.Context, event outbound.ChangeRequestEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type fakeActors struct {
	known map[int64]bool
	err   error
}

func (f *fakeActors) ActorExists(ctx context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.known[id], nil
}

type recordingMetrics struct {
	created  []string
	resolved []string
	failed   []string
	cleared  int64
}

func (r *recordingMetrics) RequestCreated(t string) { r.created = append(r.created, t) }
func (r *recordingMetrics) RequestResolved(t, outcome string) { r.resolved = append(r.resolved, t+":"+outcome) }
func (r *recordingMetrics) MutationFailed(t string) { r.failed = append(r.failed, t) }
func (r *recordingMetrics) RequestsCleared(n int64) { r.cleared += n }
