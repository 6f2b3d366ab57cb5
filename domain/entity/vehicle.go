package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusInService   VehicleStatus = "in_service"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
)

// Vehicle is a fleet vehicle. FuelConsumption is liters per 100 km.
type Vehicle struct {
	ID              int64           `json:"id"`
	PlateNumber     string          `json:"plateNumber"`
	Make            string          `json:"make"`
	Model           string          `json:"model"`
	Year            int             `json:"year"`
	FuelConsumption decimal.Decimal `json:"fuelConsumption"`
	Status          VehicleStatus   `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func NewVehicle(plateNumber, make, model string, year int, fuelConsumption decimal.Decimal) *Vehicle {
	now := time.Now()
	return &Vehicle{
		PlateNumber:     plateNumber,
		Make:            make,
		Model:           model,
		Year:            year,
		FuelConsumption: fuelConsumption,
		Status:          VehicleStatusAvailable,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
