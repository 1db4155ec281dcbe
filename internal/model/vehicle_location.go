package model

import (
	"time"
)

// Association roles
const (
	RolePickup  = "pickup"
	RoleDropoff = "dropoff"
)

// VehicleLocation links a vehicle to a location it may be picked up from
// or dropped off at. The full set for a vehicle is always replaced
// wholesale, never patched row by row. The vehicle owns these rows; they
// are removed in the same transaction that deletes the vehicle.
type VehicleLocation struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	VehicleID  string    `json:"vehicle_id" gorm:"size:36;not null;uniqueIndex:uidx_vehicle_location_role"`
	LocationID string    `json:"location_id" gorm:"size:36;not null;uniqueIndex:uidx_vehicle_location_role"`
	Role       string    `json:"role" gorm:"type:varchar(16);not null;uniqueIndex:uidx_vehicle_location_role"`
	CreatedAt  time.Time `json:"created_at"`
}
