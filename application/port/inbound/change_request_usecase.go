package inbound

import (
	"context"
	"encoding/json"

	"github.com/fleetlog/fleetlog/domain/entity"
	"github.com/fleetlog/fleetlog/pkg/payload"
)

type CreateChangeRequest struct {
	Type        entity.RequestType `json:"type" validate:"required"`
	TargetID    *int64             `json:"target_id" validate:"omitempty,gt=0"`
	TargetName  string             `json:"target_name" validate:"max=255"`
	Payload     json.RawMessage    `json:"comment" validate:"required"`
	RequesterID int64              `json:"-"`
}

type ResolveChangeRequest struct {
	RequestID int64
	Approved  bool
	Response  string
	AdminID   int64
}

type ClearProcessedResponse struct {
	Deleted int64 `json:"deleted"`
}

type ChangeRequestDiff struct {
	RequestID int64                 `json:"request_id"`
	Type      entity.RequestType    `json:"type"`
	Changes   []payload.FieldChange `json:"changes"`
}

// ChangeRequestUseCase is the approval workflow over change requests
type ChangeRequestUseCase interface {
	CreateRequest(ctx context.Context, req CreateChangeRequest) (*entity.ChangeRequest, error)
	GetRequest(ctx context.Context, id int64) (*entity.ChangeRequest, error)
	ListAll(ctx context.Context) ([]*entity.ChangeRequest, error)
	ListPending(ctx context.Context) ([]*entity.ChangeRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*entity.ChangeRequest, error)
	// Resolve approves or rejects a pending request. When the approved change
	// cannot be applied the request stays resolved and the returned error
	// wraps ErrMutationFailed.
	Resolve(ctx context.Context, req ResolveChangeRequest) (*entity.ChangeRequest, error)
	ClearProcessed(ctx context.Context) (*ClearProcessedResponse, error)
	Diff(ctx context.Context, id int64) (*ChangeRequestDiff, error)
}
