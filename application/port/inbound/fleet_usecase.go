package inbound

import (
	"context"

	"github.com/fleetlog/fleetlog/domain/entity"
)

type FleetUseCase interface {
	ListDrivers(ctx context.Context) ([]*entity.Driver, error)
	GetDriver(ctx context.Context, id int64) (*entity.Driver, error)
	ListVehicles(ctx context.Context) ([]*entity.Vehicle, error)
	GetVehicle(ctx context.Context, id int64) (*entity.Vehicle, error)
}
