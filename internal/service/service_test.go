package service

import (
	"testing"
	"time"

	"fleet-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testTimeout = 5 * time.Second

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A single connection keeps every session on the same in-memory
	// database and serializes concurrent test goroutines.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Tenant{},
		&model.Location{},
		&model.Vehicle{},
		&model.VehicleLocation{},
	))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, name, ownerUserID string) model.Tenant {
	tenant := model.Tenant{
		ID:          uuid.NewString(),
		Name:        name,
		OwnerUserID: ownerUserID,
		Active:      true,
	}
	require.NoError(t, db.Create(&tenant).Error)
	return tenant
}

func seedLocation(t *testing.T, db *gorm.DB, tenantID, name string, pickup, dropoff bool) model.Location {
	location := model.Location{
		ID:               uuid.NewString(),
		TenantID:         tenantID,
		Name:             name,
		IsPickupCapable:  pickup,
		IsDropoffCapable: dropoff,
		IsActive:         true,
	}
	require.NoError(t, db.Create(&location).Error)
	return location
}

func seedVehicle(t *testing.T, db *gorm.DB, tenantID, registration string) model.Vehicle {
	vehicle := model.Vehicle{
		ID:                     uuid.NewString(),
		TenantID:               tenantID,
		RegistrationNumber:     registration,
		RegistrationNormalized: registration,
		Status:                 model.VehicleStatusAvailable,
	}
	require.NoError(t, db.Create(&vehicle).Error)
	return vehicle
}

func associationIDs(t *testing.T, db *gorm.DB, vehicleID, role string) []string {
	var rows []model.VehicleLocation
	require.NoError(t, db.Where("vehicle_id = ? AND role = ?", vehicleID, role).Find(&rows).Error)
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.LocationID)
	}
	return ids
}
