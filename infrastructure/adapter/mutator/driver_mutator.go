package mutator

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
)

type DriverMutator struct {
	drivers outbound.DriverRepository
	now     clock
}

var _ outbound.EntityMutator = (*DriverMutator)(nil)

func NewDriverMutator(drivers outbound.DriverRepository) *DriverMutator {
	return &DriverMutator{drivers: drivers, now: time.Now}
}

func (m *DriverMutator) ApplyUpdate(ctx context.Context, targetID int64, diff map[string]any) error {
	current, err := m.drivers.FindByID(ctx, targetID)
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
	if err := validateDriver(next); err != nil {
		return err
	}

	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = m.now()

	if err := m.drivers.Update(ctx, next); err != nil {
		return fmt.Errorf("failed to update driver %d: %w", targetID, err)
	}
	return nil
}

func (m *DriverMutator) Delete(ctx context.Context, targetID int64) error {
	if err := m.drivers.Delete(ctx, targetID); err != nil {
		return fmt.Errorf("failed to delete driver %d: %w", targetID, err)
	}
	return nil
}

func (m *DriverMutator) ApplyCreation(ctx context.Context, fields map[string]any) error {
	now := m.now()
	base := &entity.Driver{Status: entity.DriverStatusActive}

	driver, err := merge(base, sanitize(fields))
	if err != nil {
		return err
	}
	if err := validateDriver(driver); err != nil {
		return err
	}
	driver.ID = 0
	driver.CreatedAt = now
	driver.UpdatedAt = now

	if err := m.drivers.Create(ctx, driver); err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

func validateDriver(d *entity.Driver) error {
	if err := requireText("fullName", d.FullName); err != nil {
		return err
	}
	if err := requireText("licenseNumber", d.LicenseNumber); err != nil {
		return err
	}
	switch d.Status {
	case entity.DriverStatusActive, entity.DriverStatusOnTrip, entity.DriverStatusSuspended:
		return nil
	}
	return fmt.Errorf("%w: unknown driver status %q", entity.ErrConstraintViolated, d.Status)
}
