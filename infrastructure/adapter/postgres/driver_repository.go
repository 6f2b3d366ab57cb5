package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
)

const driverColumns = `id, full_name, phone, license_number, status, created_at, updated_at`

type DriverRepositoryAdapter struct {
	db *sql.DB
}

func NewDriverRepositoryAdapter(db *sql.DB) outbound.DriverRepository {
	return &DriverRepositoryAdapter{db: db}
}

func scanDriver(row rowScanner) (*entity.Driver, error) {
	var d entity.Driver
	err := row.Scan(
		&d.ID,
		&d.FullName,
		&d.Phone,
		&d.LicenseNumber,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DriverRepositoryAdapter) FindByID(ctx context.Context, id int64) (*entity.Driver, error) {
	d, err := scanDriver(r.db.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrTargetNotFound
		}
		return nil, fmt.Errorf("failed to find driver: %w", err)
	}
	return d, nil
}

func (r *DriverRepositoryAdapter) FindAll(ctx context.Context) ([]*entity.Driver, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}
	defer rows.Close()

	drivers := make([]*entity.Driver, 0)
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drivers: %w", err)
	}
	return drivers, nil
}

func (r *DriverRepositoryAdapter) Create(ctx context.Context, d *entity.Driver) error {
	query := `
		INSERT INTO drivers (full_name, phone, license_number, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		d.FullName,
		d.Phone,
		d.LicenseNumber,
		d.Status,
		d.CreatedAt,
		d.UpdatedAt,
	).Scan(&d.ID)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", entity.ErrConstraintViolated, err)
		}
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

func (r *DriverRepositoryAdapter) Update(ctx context.Context, d *entity.Driver) error {
	query := `
		UPDATE drivers
		SET full_name = $2, phone = $3, license_number = $4, status = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.FullName,
		d.Phone,
		d.LicenseNumber,
		d.Status,
		d.UpdatedAt,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", entity.ErrConstraintViolated, err)
		}
		return fmt.Errorf("failed to update driver: %w", err)
	}
	return requireOneRow(result)
}

func (r *DriverRepositoryAdapter) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", entity.ErrConstraintViolated, err)
		}
		return fmt.Errorf("failed to delete driver: %w", err)
	}
	return requireOneRow(result)
}

func requireOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return entity.ErrTargetNotFound
	}
	return nil
}
