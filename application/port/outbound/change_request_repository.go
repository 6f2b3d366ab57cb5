package outbound

import (
	"context"

	"github.com/fleetlog/fleetlog/domain/entity"
)

// ChangeRequestRepository persists change requests.
//
// UpdateIfPending must be atomic: it stores the resolved record only while the
// stored row is still PENDING. It returns entity.ErrRequestAlreadyProcessed when
// another resolver got there first and entity.ErrRequestNotFound when the row
// does not exist.
type ChangeRequestRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.ChangeRequest, error)
	// FindAll returns every request, newest first
	FindAll(ctx context.Context) ([]*entity.ChangeRequest, error)
	// FindPending returns pending requests, oldest first
	FindPending(ctx context.Context) ([]*entity.ChangeRequest, error)
	// FindByRequester returns the requester's requests, oldest first
	FindByRequester(ctx context.Context, requesterID int64) ([]*entity.ChangeRequest, error)
	Insert(ctx context.Context, req *entity.ChangeRequest) error
	UpdateIfPending(ctx context.Context, req *entity.ChangeRequest) error
	// DeleteProcessed removes every non-pending request and reports how many were removed
	DeleteProcessed(ctx context.Context) (int64, error)
}
