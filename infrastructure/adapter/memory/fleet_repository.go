package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fleetlog/fleetlog/domain/entity"
)

type DriverRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]entity.Driver
}

func NewDriverRepository() *DriverRepository {
	return &DriverRepository{items: make(map[int64]entity.Driver)}
}

func (r *DriverRepository) FindByID(ctx context.Context, id int64) (*entity.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.items[id]
	if !ok {
		return nil, entity.ErrTargetNotFound
	}
	return &d, nil
}

func (r *DriverRepository) FindAll(ctx context.Context) ([]*entity.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Driver, 0, len(r.items))
	for _, d := range r.items {
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *DriverRepository) Create(ctx context.Context, driver *entity.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.LicenseNumber, driver.LicenseNumber) {
			return entity.ErrConstraintViolated
		}
	}
	r.nextID++
	driver.ID = r.nextID
	r.items[driver.ID] = *driver
	return nil
}

func (r *DriverRepository) Update(ctx context.Context, driver *entity.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[driver.ID]; !ok {
		return entity.ErrTargetNotFound
	}
	for id, existing := range r.items {
		if id != driver.ID && strings.EqualFold(existing.LicenseNumber, driver.LicenseNumber) {
			return entity.ErrConstraintViolated
		}
	}
	r.items[driver.ID] = *driver
	return nil
}

func (r *DriverRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return entity.ErrTargetNotFound
	}
	delete(r.items, id)
	return nil
}

type VehicleRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]entity.Vehicle
}

func NewVehicleRepository() *VehicleRepository {
	return &VehicleRepository{items: make(map[int64]entity.Vehicle)}
}

func (r *VehicleRepository) FindByID(ctx context.Context, id int64) (*entity.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.items[id]
	if !ok {
		return nil, entity.ErrTargetNotFound
	}
	return &v, nil
}

func (r *VehicleRepository) FindAll(ctx context.Context) ([]*entity.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Vehicle, 0, len(r.items))
	for _, v := range r.items {
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *entity.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.PlateNumber, vehicle.PlateNumber) {
			return entity.ErrConstraintViolated
		}
	}
	r.nextID++
	vehicle.ID = r.nextID
	r.items[vehicle.ID] = *vehicle
	return nil
}

func (r *VehicleRepository) Update(ctx context.Context, vehicle *entity.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[vehicle.ID]; !ok {
		return entity.ErrTargetNotFound
	}
	for id, existing := range r.items {
		if id != vehicle.ID && strings.EqualFold(existing.PlateNumber, vehicle.PlateNumber) {
			return entity.ErrConstraintViolated
		}
	}
	r.items[vehicle.ID] = *vehicle
	return nil
}

func (r *VehicleRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return entity.ErrTargetNotFound
	}
	delete(r.items, id)
	return nil
}
