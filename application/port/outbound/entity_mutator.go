package outbound

import (
	"context"
)

// EntityMutator applies approved changes to a fleet entity.
// Implementations return entity.ErrTargetNotFound for unknown targets and
// entity.ErrConstraintViolated when the store rejects the change.
type EntityMutator interface {
	ApplyUpdate(ctx context.Context, targetID int64, diff map[string]any) error
	Delete(ctx context.Context, targetID int64) error
	ApplyCreation(ctx context.Context, fields map[string]any) error
}
