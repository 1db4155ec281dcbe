package service

import (
	"context"
	"time"

	"fleet-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncResult carries the verified association sets after a replace.
type SyncResult struct {
	PickupIDs  []string
	DropoffIDs []string
}

// AssociationSynchronizer atomically replaces a vehicle's full pickup
// and dropoff association sets. Semantics are replace, not merge: the
// previous set is gone entirely once the transaction commits.
type AssociationSynchronizer struct {
	db        *gorm.DB
	validator *LocationValidator
	timeout   time.Duration
}

func NewAssociationSynchronizer(db *gorm.DB, validator *LocationValidator, timeout time.Duration) *AssociationSynchronizer {
	return &AssociationSynchronizer{db: db, validator: validator, timeout: timeout}
}

// Replace validates both candidate lists against the tenant, then in a
// single transaction deletes every existing association row for the
// vehicle and inserts one row per validated identifier per role. After
// commit the rows are read back and diffed against the validated input;
// any difference fails with KindAssociationSyncFailed even though the
// write nominally succeeded. That read-back turns silent row loss into
// a loud, retryable failure.
func (s *AssociationSynchronizer) Replace(ctx context.Context, vehicleID, tenantID string, pickupIDs, dropoffIDs []string) (*SyncResult, error) {
	pickups, err := s.validator.Validate(ctx, tenantID, pickupIDs, model.RolePickup)
	if err != nil {
		return nil, err
	}
	dropoffs, err := s.validator.Validate(ctx, tenantID, dropoffIDs, model.RoleDropoff)
	if err != nil {
		return nil, err
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storeErr(tx.Error, "begin association sync")
	}

	if err := tx.Where("vehicle_id = ?", vehicleID).Delete(&model.VehicleLocation{}).Error; err != nil {
		tx.Rollback()
		return nil, storeErr(err, "clear vehicle locations")
	}

	rows := buildAssociationRows(vehicleID, pickups, dropoffs)
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			tx.Rollback()
			return nil, storeErr(err, "insert vehicle locations")
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storeErr(err, "commit association sync")
	}

	// Verify what actually landed.
	var persisted []model.VehicleLocation
	if err := s.db.WithContext(ctx).Where("vehicle_id = ?", vehicleID).Find(&persisted).Error; err != nil {
		return nil, storeErr(err, "read back vehicle locations")
	}

	gotPickups := make([]string, 0, len(persisted))
	gotDropoffs := make([]string, 0, len(persisted))
	for _, row := range persisted {
		switch row.Role {
		case model.RolePickup:
			gotPickups = append(gotPickups, row.LocationID)
		case model.RoleDropoff:
			gotDropoffs = append(gotDropoffs, row.LocationID)
		}
	}

	if !sameIDSet(pickups, gotPickups) || !sameIDSet(dropoffs, gotDropoffs) {
		return nil, newError(KindAssociationSyncFailed,
			"saved locations for vehicle %s do not match the request, please retry", vehicleID)
	}

	return &SyncResult{PickupIDs: pickups, DropoffIDs: dropoffs}, nil
}

func buildAssociationRows(vehicleID string, pickups, dropoffs []string) []model.VehicleLocation {
	rows := make([]model.VehicleLocation, 0, len(pickups)+len(dropoffs))
	for _, locationID := range pickups {
		rows = append(rows, model.VehicleLocation{
			ID:         uuid.NewString(),
			VehicleID:  vehicleID,
			LocationID: locationID,
			Role:       model.RolePickup,
		})
	}
	for _, locationID := range dropoffs {
		rows = append(rows, model.VehicleLocation{
			ID:         uuid.NewString(),
			VehicleID:  vehicleID,
			LocationID: locationID,
			Role:       model.RoleDropoff,
		})
	}
	return rows
}

// sameIDSet compares two identifier lists as sets, ignoring order.
func sameIDSet(want, got []string) bool {
	if len(want) != len(got) {
		return false
	}
	set := make(map[string]struct{}, len(want))
	for _, id := range want {
		set[id] = struct{}{}
	}
	for _, id := range got {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
