package model

import (
	"time"
)

// Vehicle statuses
const (
	VehicleStatusAvailable   = "available"
	VehicleStatusMaintenance = "maintenance"
	VehicleStatusRetired     = "retired"
)

// Vehicle is a rentable asset owned by a tenant. RegistrationNormalized
// holds the upper-cased registration number and is unique within a tenant.
type Vehicle struct {
	ID                     string    `json:"id" gorm:"primaryKey;size:36"`
	TenantID               string    `json:"tenant_id" gorm:"index;size:36;not null;uniqueIndex:uidx_vehicles_tenant_reg"`
	CreatedByUserID        string    `json:"created_by_user_id" gorm:"index;size:36"`
	RegistrationNumber     string    `json:"registration_number" gorm:"size:32;not null"`
	RegistrationNormalized string    `json:"-" gorm:"size:32;not null;uniqueIndex:uidx_vehicles_tenant_reg"`
	Make                   string    `json:"make" gorm:"type:varchar(64)"`
	Model                  string    `json:"model" gorm:"type:varchar(64)"`
	Year                   int       `json:"year"`
	Seats                  int       `json:"seats"`
	Transmission           string    `json:"transmission" gorm:"type:varchar(16)"`
	PricePerDay            float64   `json:"price_per_day"`
	Status                 string    `json:"status" gorm:"type:varchar(16);not null;default:'available'"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}
