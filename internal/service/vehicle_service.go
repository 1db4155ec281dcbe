package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"fleet-service/internal/model"
	"fleet-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VehicleInput carries the scalar vehicle fields from the edge.
type VehicleInput struct {
	RegistrationNumber string
	Make               string
	Model              string
	Year               int
	Seats              int
	Transmission       string
	PricePerDay        float64
	Status             string
}

// VehicleDetails is a fully hydrated vehicle: scalar record plus the
// resolved, verified location lists.
type VehicleDetails struct {
	Vehicle          model.Vehicle    `json:"vehicle"`
	PickupLocations  []model.Location `json:"pickup_locations"`
	DropoffLocations []model.Location `json:"dropoff_locations"`
}

// VehicleService owns creation and update of vehicle records. It is the
// only entry point for "save vehicle": it resolves the tenant from the
// principal, enforces registration uniqueness, persists scalars, and
// hands the association sets to the synchronizer. The tenant passed
// down is always the resolved one, never a client-supplied value.
type VehicleService struct {
	db        *gorm.DB
	resolver  *TenantResolver
	validator *LocationValidator
	sync      *AssociationSynchronizer
	timeout   time.Duration
}

func NewVehicleService(db *gorm.DB, resolver *TenantResolver, validator *LocationValidator, sync *AssociationSynchronizer, timeout time.Duration) *VehicleService {
	return &VehicleService{
		db:        db,
		resolver:  resolver,
		validator: validator,
		sync:      sync,
		timeout:   timeout,
	}
}

// Save creates or updates a vehicle together with its association sets.
// An empty vehicleID means create. Location validation runs before any
// write so an invalid reference aborts with nothing to roll back.
func (s *VehicleService) Save(ctx context.Context, principalID, vehicleID string, in VehicleInput, pickupIDs, dropoffIDs []string) (*VehicleDetails, error) {
	log := logger.FromContext(ctx)

	tenantID, err := s.resolver.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}

	registration := strings.TrimSpace(in.RegistrationNumber)
	if registration == "" {
		return nil, newError(KindInvalidArgument, "registration number is required")
	}
	normalized := strings.ToUpper(registration)

	// Pre-flight validation of both lists: failures here must abort
	// before the scalar write, not after it.
	if _, err := s.validator.Validate(ctx, tenantID, pickupIDs, model.RolePickup); err != nil {
		return nil, err
	}
	if _, err := s.validator.Validate(ctx, tenantID, dropoffIDs, model.RoleDropoff); err != nil {
		return nil, err
	}

	ctx2, cancel := opContext(ctx, s.timeout)
	defer cancel()

	creating := vehicleID == ""
	var vehicle model.Vehicle
	if creating {
		if err := s.checkRegistration(ctx2, tenantID, normalized, ""); err != nil {
			return nil, err
		}
		vehicle = model.Vehicle{
			ID:              uuid.NewString(),
			TenantID:        tenantID,
			CreatedByUserID: principalID,
		}
	} else {
		if err := s.db.WithContext(ctx2).First(&vehicle, "id = ?", vehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newError(KindNotFound, "vehicle not found")
			}
			return nil, storeErr(err, "load vehicle")
		}
		// Ownership is re-checked against the resolved tenant before any
		// mutation. Forbidden, not NotFound: the caller gets an accurate
		// signal without this leaking other tenants' vehicle IDs, which
		// are opaque UUIDs.
		if vehicle.TenantID != tenantID {
			return nil, newError(KindForbidden, "vehicle belongs to a different company")
		}
		if err := s.checkRegistration(ctx2, tenantID, normalized, vehicle.ID); err != nil {
			return nil, err
		}
	}

	vehicle.RegistrationNumber = registration
	vehicle.RegistrationNormalized = normalized
	vehicle.Make = strings.TrimSpace(in.Make)
	vehicle.Model = strings.TrimSpace(in.Model)
	vehicle.Year = in.Year
	vehicle.Seats = in.Seats
	vehicle.Transmission = strings.TrimSpace(in.Transmission)
	vehicle.PricePerDay = in.PricePerDay
	vehicle.Status = in.Status
	if vehicle.Status == "" {
		vehicle.Status = model.VehicleStatusAvailable
	}

	if err := s.db.WithContext(ctx2).Save(&vehicle).Error; err != nil {
		// A concurrent save can slip past checkRegistration; the unique
		// index on (tenant_id, registration_normalized) is the arbiter.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &Error{
				Kind:    KindDuplicateRegistration,
				Message: "registration " + normalized + " is already in use by your company",
				IDs:     []string{normalized},
				Err:     err,
			}
		}
		return nil, storeErr(err, "save vehicle")
	}

	result, err := s.sync.Replace(ctx, vehicle.ID, tenantID, pickupIDs, dropoffIDs)
	if err != nil {
		return nil, err
	}

	log.Info("vehicle saved",
		zap.String("vehicle_id", vehicle.ID),
		zap.String("tenant_id", tenantID),
		zap.Bool("created", creating),
		zap.Int("pickup_locations", len(result.PickupIDs)),
		zap.Int("dropoff_locations", len(result.DropoffIDs)))

	return s.hydrate(ctx, vehicle.ID)
}

// Get returns a hydrated vehicle after checking it belongs to the
// principal's tenant.
func (s *VehicleService) Get(ctx context.Context, principalID, vehicleID string) (*VehicleDetails, error) {
	tenantID, err := s.resolver.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	var vehicle model.Vehicle
	if err := s.db.WithContext(ctx).First(&vehicle, "id = ?", vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "vehicle not found")
		}
		return nil, storeErr(err, "load vehicle")
	}
	if vehicle.TenantID != tenantID {
		return nil, newError(KindForbidden, "vehicle belongs to a different company")
	}

	return s.hydrate(ctx, vehicleID)
}

// List returns the tenant's vehicles, newest first.
func (s *VehicleService) List(ctx context.Context, principalID string) ([]model.Vehicle, error) {
	tenantID, err := s.resolver.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	var vehicles []model.Vehicle
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc").
		Find(&vehicles).Error; err != nil {
		return nil, storeErr(err, "list vehicles")
	}
	return vehicles, nil
}

// Delete removes a vehicle and its association rows in one transaction.
func (s *VehicleService) Delete(ctx context.Context, principalID, vehicleID string) error {
	log := logger.FromContext(ctx)

	tenantID, err := s.resolver.Resolve(ctx, principalID)
	if err != nil {
		return err
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	var vehicle model.Vehicle
	if err := s.db.WithContext(ctx).First(&vehicle, "id = ?", vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, "vehicle not found")
		}
		return storeErr(err, "load vehicle")
	}
	if vehicle.TenantID != tenantID {
		return newError(KindForbidden, "vehicle belongs to a different company")
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return storeErr(tx.Error, "begin vehicle delete")
	}
	if err := tx.Where("vehicle_id = ?", vehicleID).Delete(&model.VehicleLocation{}).Error; err != nil {
		tx.Rollback()
		return storeErr(err, "delete vehicle locations")
	}
	if err := tx.Delete(&model.Vehicle{}, "id = ?", vehicleID).Error; err != nil {
		tx.Rollback()
		return storeErr(err, "delete vehicle")
	}
	if err := tx.Commit().Error; err != nil {
		return storeErr(err, "commit vehicle delete")
	}

	log.Info("vehicle deleted",
		zap.String("vehicle_id", vehicleID),
		zap.String("tenant_id", tenantID))
	return nil
}

// checkRegistration enforces per-tenant, case-normalized uniqueness of
// the registration number. excludeID skips the vehicle being updated.
func (s *VehicleService) checkRegistration(ctx context.Context, tenantID, normalized, excludeID string) error {
	q := s.db.WithContext(ctx).Model(&model.Vehicle{}).
		Where("tenant_id = ? AND registration_normalized = ?", tenantID, normalized)
	if excludeID != "" {
		q = q.Where("id != ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return storeErr(err, "check registration")
	}
	if count > 0 {
		return &Error{
			Kind:    KindDuplicateRegistration,
			Message: "registration " + normalized + " is already in use by your company",
			IDs:     []string{normalized},
		}
	}
	return nil
}

// hydrate loads the vehicle plus its resolved location lists.
func (s *VehicleService) hydrate(ctx context.Context, vehicleID string) (*VehicleDetails, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	var vehicle model.Vehicle
	if err := s.db.WithContext(ctx).First(&vehicle, "id = ?", vehicleID).Error; err != nil {
		return nil, storeErr(err, "load vehicle")
	}

	var rows []model.VehicleLocation
	if err := s.db.WithContext(ctx).Where("vehicle_id = ?", vehicleID).Find(&rows).Error; err != nil {
		return nil, storeErr(err, "load vehicle locations")
	}

	details := &VehicleDetails{
		Vehicle:          vehicle,
		PickupLocations:  []model.Location{},
		DropoffLocations: []model.Location{},
	}
	if len(rows) == 0 {
		return details, nil
	}

	locationIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		locationIDs = append(locationIDs, row.LocationID)
	}
	var locations []model.Location
	if err := s.db.WithContext(ctx).Where("id IN ?", locationIDs).Find(&locations).Error; err != nil {
		return nil, storeErr(err, "load locations")
	}
	byID := make(map[string]model.Location, len(locations))
	for _, loc := range locations {
		byID[loc.ID] = loc
	}

	for _, row := range rows {
		loc, ok := byID[row.LocationID]
		if !ok {
			continue
		}
		switch row.Role {
		case model.RolePickup:
			details.PickupLocations = append(details.PickupLocations, loc)
		case model.RoleDropoff:
			details.DropoffLocations = append(details.DropoffLocations, loc)
		}
	}
	return details, nil
}
