package model

import (
	"time"
)

// Tenant represents a rental company. All locations and vehicles carry a
// tenant ID and are never visible or mutable across tenant boundaries.
type Tenant struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	OwnerUserID string    `json:"owner_user_id" gorm:"uniqueIndex;size:36;not null"`
	Active      bool      `json:"active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
