package mutator

import (
	"context"
	"fmt"
	"strings"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
)

// EntityField names the payload field that selects the kind of entity an OTHER request creates
const EntityField = "entity"

// CreationRouter sends creation payloads to the mutator registered for their entity kind.
// Update and delete are not routed: those requests carry their own target type.
type CreationRouter struct {
	routes map[string]outbound.EntityMutator
}

var _ outbound.EntityMutator = (*CreationRouter)(nil)

func NewCreationRouter(driver, vehicle outbound.EntityMutator) *CreationRouter {
	return &CreationRouter{routes: map[string]outbound.EntityMutator{
		"driver":  driver,
		"vehicle": vehicle,
	}}
}

func (r *CreationRouter) ApplyCreation(ctx context.Context, fields map[string]any) error {
	kind, _ := fields[EntityField].(string)
	target, ok := r.routes[strings.ToLower(strings.TrimSpace(kind))]
	if !ok || target == nil {
		return fmt.Errorf("%w: unsupported %s %q", entity.ErrConstraintViolated, EntityField, kind)
	}

	rest := make(map[string]any, len(fields))
	for key, value := range fields {
		if key != EntityField {
			rest[key] = value
		}
	}
	return target.ApplyCreation(ctx, rest)
}

func (r *CreationRouter) ApplyUpdate(ctx context.Context, targetID int64, diff map[string]any) error {
	return fmt.Errorf("%w: creation router cannot update", entity.ErrConstraintViolated)
}

func (r *CreationRouter) Delete(ctx context.Context, targetID int64) error {
	return fmt.Errorf("%w: creation router cannot delete", entity.ErrConstraintViolated)
}
