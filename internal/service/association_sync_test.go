package service

import (
	"context"
	"testing"
	"time"

	"fleet-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSynchronizer(db *gorm.DB) *AssociationSynchronizer {
	return NewAssociationSynchronizer(db, NewLocationValidator(db, testTimeout), testTimeout)
}

func TestReplace_ReplacesNotMerges(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Alpha Rentals", "user-a")
	l1 := seedLocation(t, db, tenant.ID, "One", true, true)
	l2 := seedLocation(t, db, tenant.ID, "Two", true, true)
	l3 := seedLocation(t, db, tenant.ID, "Three", true, true)
	vehicle := seedVehicle(t, db, tenant.ID, "ABC-123")

	sync := newSynchronizer(db)

	_, err := sync.Replace(context.Background(), vehicle.ID, tenant.ID,
		[]string{l1.ID, l2.ID}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{l1.ID, l2.ID}, associationIDs(t, db, vehicle.ID, model.RolePickup))

	result, err := sync.Replace(context.Background(), vehicle.ID, tenant.ID,
		[]string{l3.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{l3.ID}, result.PickupIDs)

	// L1 and L2 are fully removed, not retained alongside L3.
	assert.Equal(t, []string{l3.ID}, associationIDs(t, db, vehicle.ID, model.RolePickup))
}

func TestReplace_EmptySetsClearAssociations(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Alpha Rentals", "user-a")
	loc := seedLocation(t, db, tenant.ID, "One", true, true)
	vehicle := seedVehicle(t, db, tenant.ID, "ABC-123")

	sync := newSynchronizer(db)

	_, err := sync.Replace(context.Background(), vehicle.ID, tenant.ID,
		[]string{loc.ID}, []string{loc.ID})
	require.NoError(t, err)

	result, err := sync.Replace(context.Background(), vehicle.ID, tenant.ID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result.PickupIDs)
	assert.Empty(t, result.DropoffIDs)
	assert.Empty(t, associationIDs(t, db, vehicle.ID, model.RolePickup))
	assert.Empty(t, associationIDs(t, db, vehicle.ID, model.RoleDropoff))
}

func TestReplace_RolesAreIndependent(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Alpha Rentals", "user-a")
	both := seedLocation(t, db, tenant.ID, "Hub", true, true)
	pickupOnly := seedLocation(t, db, tenant.ID, "Garage", true, false)
	vehicle := seedVehicle(t, db, tenant.ID, "ABC-123")

	sync := newSynchronizer(db)

	result, err := sync.Replace(context.Background(), vehicle.ID, tenant.ID,
		[]string{both.ID, pickupOnly.ID}, []string{both.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{both.ID, pickupOnly.ID}, result.PickupIDs)
	assert.Equal(t, []string{both.ID}, result.DropoffIDs)

	// The same location may legitimately serve both roles.
	assert.Contains(t, associationIDs(t, db, vehicle.ID, model.RolePickup), both.ID)
	assert.Contains(t, associationIDs(t, db, vehicle.ID, model.RoleDropoff), both.ID)
}

func TestReplace_ValidationFailureLeavesExistingSetUntouched(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Alpha Rentals", "user-a")
	loc := seedLocation(t, db, tenant.ID, "One", true, true)
	vehicle := seedVehicle(t, db, tenant.ID, "ABC-123")

	sync := newSynchronizer(db)

	_, err := sync.Replace(context.Background(), vehicle.ID, tenant.ID, []string{loc.ID}, nil)
	require.NoError(t, err)

	_, err = sync.Replace(context.Background(), vehicle.ID, tenant.ID, []string{"ghost"}, nil)
	require.Error(t, err)
	assert.Equal(t, KindInvalidLocationReference, KindOf(err))

	// Aborted before any mutation: the previous set survives intact.
	assert.Equal(t, []string{loc.ID}, associationIDs(t, db, vehicle.ID, model.RolePickup))
}

func TestReplace_ExpiredDeadlineIsTimeout(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Alpha Rentals", "user-a")
	vehicle := seedVehicle(t, db, tenant.ID, "ABC-123")

	sync := newSynchronizer(db)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Millisecond))
	defer cancel()

	_, err := sync.Replace(ctx, vehicle.ID, tenant.ID, nil, nil)
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestReplace_ReadBackMismatchFails(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Alpha Rentals", "user-a")
	kept := seedLocation(t, db, tenant.ID, "Kept", true, true)
	dropped := seedLocation(t, db, tenant.ID, "Dropped", true, true)
	vehicle := seedVehicle(t, db, tenant.ID, "ABC-123")

	// Simulate silent row loss: a callback inside the write transaction
	// removes one inserted row, so the commit succeeds but the persisted
	// set differs from intent.
	err := db.Callback().Create().After("gorm:create").Register("test_drop_row", func(d *gorm.DB) {
		if d.Statement.Table == "vehicle_locations" {
			_, _ = d.Statement.ConnPool.ExecContext(d.Statement.Context,
				"DELETE FROM vehicle_locations WHERE location_id = ?", dropped.ID)
		}
	})
	require.NoError(t, err)

	sync := newSynchronizer(db)

	_, err = sync.Replace(context.Background(), vehicle.ID, tenant.ID,
		[]string{kept.ID, dropped.ID}, nil)
	require.Error(t, err)
	assert.Equal(t, KindAssociationSyncFailed, KindOf(err))
}
