package outbound

import (
	"context"

	"github.com/fleetlog/fleetlog/domain/entity"
)

type DriverRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Driver, error)
	FindAll(ctx context.Context) ([]*entity.Driver, error)
	Create(ctx context.Context, driver *entity.Driver) error
	Update(ctx context.Context, driver *entity.Driver) error
	Delete(ctx context.Context, id int64) error
}

type VehicleRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Vehicle, error)
	FindAll(ctx context.Context) ([]*entity.Vehicle, error)
	Create(ctx context.Context, vehicle *entity.Vehicle) error
	Update(ctx context.Context, vehicle *entity.Vehicle) error
	Delete(ctx context.Context, id int64) error
}
