package changerequest

import (
	"context"
	"errors"
	"fmt"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
	"github.com/fleetlog/fleetlog/pkg/payload"
)

var errNoMutator = errors.New("no mutator configured")

// mutation applies an approved request to its target
type mutation func(ctx context.Context, req *entity.ChangeRequest) error

func dispatchTable(m Mutators) map[entity.RequestType]mutation {
	return map[entity.RequestType]mutation{
		entity.RequestTypeDriverUpdate:    applyUpdate(m.Driver),
		entity.RequestTypeVehicleUpdate:   applyUpdate(m.Vehicle),
		entity.RequestTypeDriverDeletion:  deleteTarget(m.Driver),
		entity.RequestTypeVehicleDeletion: deleteTarget(m.Vehicle),
		entity.RequestTypeOther:           applyCreation(m.Creation),
	}
}

// applyUpdate sends the proposed fields, without the snapshot, to the mutator
func applyUpdate(mutator outbound.EntityMutator) mutation {
	return func(ctx context.Context, req *entity.ChangeRequest) error {
		if mutator == nil {
			return fmt.Errorf("%w for %s", errNoMutator, req.Type)
		}
		if req.TargetID == nil {
			return entity.ErrTargetRequired
		}
		diff, err := payload.Proposed(req.Payload)
		if err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err)
		}
		return mutator.ApplyUpdate(ctx, *req.TargetID, diff)
	}
}

func deleteTarget(mutator outbound.EntityMutator) mutation {
	return func(ctx context.Context, req *entity.ChangeRequest) error {
		if mutator == nil {
			return fmt.Errorf("%w for %s", errNoMutator, req.Type)
		}
		if req.TargetID == nil {
			return entity.ErrTargetRequired
		}
		return mutator.Delete(ctx, *req.TargetID)
	}
}

// applyCreation hands the full payload to the creation mutator
func applyCreation(mutator outbound.EntityMutator) mutation {
	return func(ctx context.Context, req *entity.ChangeRequest) error {
		if mutator == nil {
			return fmt.Errorf("%w for %s", errNoMutator, req.Type)
		}
		fields, err := payload.Decode(req.Payload)
		if err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err)
		}
		return mutator.ApplyCreation(ctx, fields)
	}
}
