package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
)

const vehicleColumns = `id, plate_number, make, model, year, fuel_consumption, status, created_at, updated_at`

type VehicleRepositoryAdapter struct {
	db *sql.DB
}

func NewVehicleRepositoryAdapter(db *sql.DB) outbound.VehicleRepository {
	return &VehicleRepositoryAdapter{db: db}
}

func scanVehicle(row rowScanner) (*entity.Vehicle, error) {
	var v entity.Vehicle
	err := row.Scan(
		&v.ID,
		&v.PlateNumber,
		&v.Make,
		&v.Model,
		&v.Year,
		&v.FuelConsumption,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VehicleRepositoryAdapter) FindByID(ctx context.Context, id int64) (*entity.Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrTargetNotFound
		}
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}
	return v, nil
}

func (r *VehicleRepositoryAdapter) FindAll(ctx context.Context) ([]*entity.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := make([]*entity.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicles: %w", err)
	}
	return vehicles, nil
}

func (r *VehicleRepositoryAdapter) Create(ctx context.Context, v *entity.Vehicle) error {
	query := `
		INSERT INTO vehicles (plate_number, make, model, year, fuel_consumption, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		v.PlateNumber,
		v.Make,
		v.Model,
		v.Year,
		v.FuelConsumption,
		v.Status,
		v.CreatedAt,
		v.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", entity.ErrConstraintViolated, err)
		}
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (r *VehicleRepositoryAdapter) Update(ctx context.Context, v *entity.Vehicle) error {
	query := `
		UPDATE vehicles
		SET plate_number = $2, make = $3, model = $4, year = $5, fuel_consumption = $6, status = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		v.ID,
		v.PlateNumber,
		v.Make,
		v.Model,
		v.Year,
		v.FuelConsumption,
		v.Status,
		v.UpdatedAt,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", entity.ErrConstraintViolated, err)
		}
		return fmt.Errorf("failed to update vehicle: %w", err)
	}
	return requireOneRow(result)
}

func (r *VehicleRepositoryAdapter) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	return requireOneRow(result)
}
