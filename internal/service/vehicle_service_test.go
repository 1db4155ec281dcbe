package service

import (
	"context"
	"testing"

	"fleet-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newVehicleService(db *gorm.DB) *VehicleService {
	resolver := NewTenantResolver(db, testTimeout)
	validator := NewLocationValidator(db, testTimeout)
	sync := NewAssociationSynchronizer(db, validator, testTimeout)
	return NewVehicleService(db, resolver, validator, sync, testTimeout)
}

func TestSave_CreateWithLocations(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Alpha Rentals", "user-a")
	hub := seedLocation(t, db, tenant.ID, "Hub", true, true)
	garage := seedLocation(t, db, tenant.ID, "Garage", true, false)

	svc := newVehicleService(db)

	details, err := svc.Save(context.Background(), "user-a", "", VehicleInput{
		RegistrationNumber: "abc-123",
		Make:               "Toyota",
		Model:              "Corolla",
		Year:               2021,
		Seats:              5,
	}, []string{hub.ID, garage.ID}, []string{hub.ID})
	require.NoError(t, err)

	assert.NotEmpty(t, details.Vehicle.ID)
	assert.Equal(t, tenant.ID, details.Vehicle.TenantID)
	assert.Equal(t, "abc-123", details.Vehicle.RegistrationNumber)
	assert.Equal(t, model.VehicleStatusAvailable, details.Vehicle.Status)
	assert.Len(t, details.PickupLocations, 2)
	assert.Len(t, details.DropoffLocations, 1)
	assert.Equal(t, hub.ID, details.DropoffLocations[0].ID)
}

func TestSave_DuplicateRegistrationIsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	seedTenant(t, db, "Alpha Rentals", "user-a")
	tenantB := seedTenant(t, db, "Beta Rentals", "user-b")

	svc := newVehicleService(db)

	_, err := svc.Save(context.Background(), "user-a", "", VehicleInput{
		RegistrationNumber: "ABC-123",
	}, nil, nil)
	require.NoError(t, err)

	_, err = svc.Save(context.Background(), "user-a", "", VehicleInput{
		RegistrationNumber: "abc-123",
	}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, KindDuplicateRegistration, KindOf(err))

	// The same registration in a different tenant is fine.
	details, err := svc.Save(context.Background(), "user-b", "", VehicleInput{
		RegistrationNumber: "abc-123",
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, tenantB.ID, details.Vehicle.TenantID)
}

// A concurrent create can land between the registration pre-check and
// the insert. The unique index then rejects the insert, and the caller
// must still see a duplicate-registration failure, not an internal one.
func TestSave_RegistrationRaceSurfacesAsDuplicate(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Alpha Rentals", "user-a")

	raced := false
	err := db.Callback().Create().Before("gorm:create").Register("test_racing_insert", func(d *gorm.DB) {
		if d.Statement.Table != "vehicles" || raced {
			return
		}
		raced = true
		_, _ = d.Statement.ConnPool.ExecContext(d.Statement.Context,
			`INSERT INTO vehicles (id, tenant_id, created_by_user_id, registration_number,
				registration_normalized, status, created_at, updated_at)
			VALUES (?, ?, 'user-b', 'ABC-123', 'ABC-123', 'available', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
			uuid.NewString(), tenant.ID)
	})
	require.NoError(t, err)

	svc := newVehicleService(db)

	_, err = svc.Save(context.Background(), "user-a", "", VehicleInput{
		RegistrationNumber: "abc-123",
	}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, KindDuplicateRegistration, KindOf(err))
}

func TestSave_EmptyLocationSetsAreValid(t *testing.T) {
	db := setupTestDB(t)
	seedTenant(t, db, "Alpha Rentals", "user-a")

	svc := newVehicleService(db)

	details, err := svc.Save(context.Background(), "user-a", "", VehicleInput{
		RegistrationNumber: "ABC-123",
	}, []string{}, []string{})
	require.NoError(t, err)
	assert.Empty(t, details.PickupLocations)
	assert.Empty(t, details.DropoffLocations)
	assert.Empty(t, associationIDs(t, db, details.Vehicle.ID, model.RolePickup))
	assert.Empty(t, associationIDs(t, db, details.Vehicle.ID, model.RoleDropoff))
}

func TestSave_CrossTenantUpdateIsForbidden(t *testing.T) {
	db := setupTestDB(t)
	tenantA := seedTenant(t, db, "Alpha Rentals", "user-a")
	seedTenant(t, db, "Beta Rentals", "user-b")
	vehicle := seedVehicle(t, db, tenantA.ID, "ABC-123")

	svc := newVehicleService(db)

	_, err := svc.Save(context.Background(), "user-b", vehicle.ID, VehicleInput{
		RegistrationNumber: "XYZ-999",
	}, nil, nil)
	require.Error(t, err)
	// Forbidden, not NotFound: the vehicle exists but belongs elsewhere.
	assert.Equal(t, KindForbidden, KindOf(err))

	var unchanged model.Vehicle
	require.NoError(t, db.First(&unchanged, "id = ?", vehicle.ID).Error)
	assert.Equal(t, "ABC-123", unchanged.RegistrationNumber)
}

func TestSave_UpdateUnknownVehicleIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	seedTenant(t, db, "Alpha Rentals", "user-a")

	svc := newVehicleService(db)

	_, err := svc.Save(context.Background(), "user-a", "no-such-vehicle", VehicleInput{
		RegistrationNumber: "ABC-123",
	}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSave_UnonboardedPrincipal(t *testing.T) {
	db := setupTestDB(t)

	svc := newVehicleService(db)

	_, err := svc.Save(context.Background(), "stranger", "", VehicleInput{
		RegistrationNumber: "ABC-123",
	}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, KindTenantUnresolved, KindOf(err))
}

// Full walkthrough: H serves both roles, A is pickup only. The first
// save succeeds; a later save pointing dropoffs at A fails naming A and
// leaves the stored dropoff set untouched.
func TestSave_PickupOnlyLocationCannotBecomeDropoff(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Alpha Rentals", "user-a")
	h := seedLocation(t, db, tenant.ID, "Headquarters", true, true)
	a := seedLocation(t, db, tenant.ID, "Annex", true, false)

	svc := newVehicleService(db)

	details, err := svc.Save(context.Background(), "user-a", "", VehicleInput{
		RegistrationNumber: "ABC-123",
	}, []string{h.ID, a.ID}, []string{h.ID})
	require.NoError(t, err)
	vehicleID := details.Vehicle.ID
	assert.ElementsMatch(t, []string{h.ID, a.ID}, associationIDs(t, db, vehicleID, model.RolePickup))
	assert.Equal(t, []string{h.ID}, associationIDs(t, db, vehicleID, model.RoleDropoff))

	_, err = svc.Save(context.Background(), "user-a", vehicleID, VehicleInput{
		RegistrationNumber: "ABC-123",
	}, []string{h.ID, a.ID}, []string{a.ID})
	require.Error(t, err)
	assert.Equal(t, KindInvalidLocationReference, KindOf(err))

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, []string{a.ID}, svcErr.IDs)

	// Stored dropoff set must remain unchanged at {H}.
	assert.Equal(t, []string{h.ID}, associationIDs(t, db, vehicleID, model.RoleDropoff))
}

func TestGet_HydratesAssociations(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Alpha Rentals", "user-a")
	hub := seedLocation(t, db, tenant.ID, "Hub", true, true)

	svc := newVehicleService(db)

	created, err := svc.Save(context.Background(), "user-a", "", VehicleInput{
		RegistrationNumber: "ABC-123",
	}, []string{hub.ID}, []string{hub.ID})
	require.NoError(t, err)

	details, err := svc.Get(context.Background(), "user-a", created.Vehicle.ID)
	require.NoError(t, err)
	require.Len(t, details.PickupLocations, 1)
	require.Len(t, details.DropoffLocations, 1)
	assert.Equal(t, "Hub", details.PickupLocations[0].Name)
}

func TestDelete_RemovesVehicleAndAssociations(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Alpha Rentals", "user-a")
	hub := seedLocation(t, db, tenant.ID, "Hub", true, true)

	svc := newVehicleService(db)

	created, err := svc.Save(context.Background(), "user-a", "", VehicleInput{
		RegistrationNumber: "ABC-123",
	}, []string{hub.ID}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "user-a", created.Vehicle.ID))

	var vehicleCount, rowCount int64
	require.NoError(t, db.Model(&model.Vehicle{}).Count(&vehicleCount).Error)
	require.NoError(t, db.Model(&model.VehicleLocation{}).Count(&rowCount).Error)
	assert.Equal(t, int64(0), vehicleCount)
	assert.Equal(t, int64(0), rowCount)
}

func TestDelete_CrossTenantIsForbidden(t *testing.T) {
	db := setupTestDB(t)
	tenantA := seedTenant(t, db, "Alpha Rentals", "user-a")
	seedTenant(t, db, "Beta Rentals", "user-b")
	vehicle := seedVehicle(t, db, tenantA.ID, "ABC-123")

	svc := newVehicleService(db)

	err := svc.Delete(context.Background(), "user-b", vehicle.ID)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}
