package model

import (
	"time"
)

// Location is a physical place where a tenant hands vehicles over.
// A location can serve pickup, dropoff, or both; the two flags are
// independent. At most one location per tenant is the headquarters,
// enforced by a partial unique index on tenant_id.
type Location struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	TenantID         string    `json:"tenant_id" gorm:"index;size:36;not null;uniqueIndex:uidx_locations_tenant_hq,where:is_headquarters"`
	Name             string    `json:"name" gorm:"type:varchar(100);not null"`
	Address          string    `json:"address,omitempty" gorm:"type:varchar(200)"`
	City             string    `json:"city,omitempty" gorm:"type:varchar(100)"`
	IsPickupCapable  bool      `json:"is_pickup_capable" gorm:"default:false"`
	IsDropoffCapable bool      `json:"is_dropoff_capable" gorm:"default:false"`
	IsHeadquarters   bool      `json:"is_headquarters" gorm:"default:false"`
	IsActive         bool      `json:"is_active" gorm:"default:true"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
