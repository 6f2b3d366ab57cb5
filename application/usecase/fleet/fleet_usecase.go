package fleet

import (
	"context"
	"fmt"

	"github.com/fleetlog/fleetlog/application/port/inbound"
	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
)

// FleetUseCase is the read side the console uses to pick targets for change requests
type FleetUseCase struct {
	drivers  outbound.DriverRepository
	vehicles outbound.VehicleRepository
}

func NewFleetUseCase(drivers outbound.DriverRepository, vehicles outbound.VehicleRepository) inbound.FleetUseCase {
	return &FleetUseCase{drivers: drivers, vehicles: vehicles}
}

func (uc *FleetUseCase) ListDrivers(ctx context.Context) ([]*entity.Driver, error) {
	drivers, err := uc.drivers.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	return drivers, nil
}

func (uc *FleetUseCase) GetDriver(ctx context.Context, id int64) (*entity.Driver, error) {
	driver, err := uc.drivers.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find driver %d: %w", id, err)
	}
	return driver, nil
}

func (uc *FleetUseCase) ListVehicles(ctx context.Context) ([]*entity.Vehicle, error) {
	vehicles, err := uc.vehicles.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}

func (uc *FleetUseCase) GetVehicle(ctx context.Context, id int64) (*entity.Vehicle, error) {
	vehicle, err := uc.vehicles.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle %d: %w", id, err)
	}
	return vehicle, nil
}
