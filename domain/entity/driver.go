package entity

import (
	"time"
)

type DriverStatus string

const (
	DriverStatusActive    DriverStatus = "active"
	DriverStatusOnTrip    DriverStatus = "on_trip"
	DriverStatusSuspended DriverStatus = "suspended"
)

type Driver struct {
	ID            int64        `json:"id"`
	FullName      string       `json:"fullName"`
	Phone         string       `json:"phone"`
	LicenseNumber string       `json:"licenseNumber"`
	Status        DriverStatus `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func NewDriver(fullName, phone, licenseNumber string) *Driver {
	now := time.Now()
	return &Driver{
		FullName:      fullName,
		Phone:         phone,
		LicenseNumber: licenseNumber,
		Status:        DriverStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
