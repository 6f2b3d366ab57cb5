package mutator

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
)

type VehicleMutator struct {
	vehicles outbound.VehicleRepository
	now      clock
}

var _ outbound.EntityMutator = (*VehicleMutator)(nil)

func NewVehicleMutator(vehicles outbound.VehicleRepository) *VehicleMutator {
	return &VehicleMutator{vehicles: vehicles, now: time.Now}
}

func (m *VehicleMutator) ApplyUpdate(ctx context.Context, targetID int64, diff map[string]any) error {
	current, err := m.vehicles.FindByID(ctx, targetID)
	if err != nil {
		return err
	}

	fields := sanitize(diff)
	if len(fields) == 0 {
		return nil
	}

	next, err := merge(current, fields)
	if err != nil {
		return err
	}
	if err := validateVehicle(next); err != nil {
		return err
	}

	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = m.now()

	if err := m.vehicles.Update(ctx, next); err != nil {
		return fmt.Errorf("failed to update vehicle %d: %w", targetID, err)
	}
	return nil
}

func (m *VehicleMutator) Delete(ctx context.Context, targetID int64) error {
	if err := m.vehicles.Delete(ctx, targetID); err != nil {
		return fmt.Errorf("failed to delete vehicle %d: %w", targetID, err)
	}
	return nil
}

func (m *VehicleMutator) ApplyCreation(ctx context.Context, fields map[string]any) error {
	now := m.now()
	base := &entity.Vehicle{Status: entity.VehicleStatusAvailable}

	vehicle, err := merge(base, sanitize(fields))
	if err != nil {
		return err
	}
	if err := validateVehicle(vehicle); err != nil {
		return err
	}
	vehicle.ID = 0
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	if err := m.vehicles.Create(ctx, vehicle); err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func validateVehicle(v *entity.Vehicle) error {
	if err := requireText("plateNumber", v.PlateNumber); err != nil {
		return err
	}
	if v.FuelConsumption.IsNegative() {
		return fmt.Errorf("%w: fuelConsumption cannot be negative", entity.ErrConstraintViolated)
	}
	switch v.Status {
	case entity.VehicleStatusAvailable, entity.VehicleStatusInService, entity.VehicleStatusMaintenance:
		return nil
	}
	return fmt.Errorf("%w: unknown vehicle status %q", entity.ErrConstraintViolated, v.Status)
}
