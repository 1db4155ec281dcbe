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

// LocationInput carries location fields from the edge. The headquarters
// flag is owned by the provisioner and is not settable here.
type LocationInput struct {
	Name             string
	Address          string
	City             string
	IsPickupCapable  bool
	IsDropoffCapable bool
}

// LocationService owns tenant-operator CRUD of locations. Listing also
// triggers headquarters provisioning so every tenant sees a usable
// default location on first visit.
type LocationService struct {
	db       *gorm.DB
	resolver *TenantResolver
	hq       *HeadquartersProvisioner
	timeout  time.Duration
}

func NewLocationService(db *gorm.DB, resolver *TenantResolver, hq *HeadquartersProvisioner, timeout time.Duration) *LocationService {
	return &LocationService{db: db, resolver: resolver, hq: hq, timeout: timeout}
}

// List returns the tenant's active locations, headquarters first, then
// alphabetical.
func (s *LocationService) List(ctx context.Context, principalID string) ([]model.Location, error) {
	tenantID, err := s.resolver.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}

	s.hq.Ensure(ctx, tenantID)

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	var locations []model.Location
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active", tenantID).
		Order("is_headquarters desc, name asc").
		Find(&locations).Error; err != nil {
		return nil, storeErr(err, "list locations")
	}
	return locations, nil
}

// Create adds a location for the principal's tenant.
func (s *LocationService) Create(ctx context.Context, principalID string, in LocationInput) (*model.Location, error) {
	log := logger.FromContext(ctx)

	tenantID, err := s.resolver.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(KindInvalidArgument, "location name is required")
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	location := model.Location{
		ID:               uuid.NewString(),
		TenantID:         tenantID,
		Name:             name,
		Address:          strings.TrimSpace(in.Address),
		City:             strings.TrimSpace(in.City),
		IsPickupCapable:  in.IsPickupCapable,
		IsDropoffCapable: in.IsDropoffCapable,
		IsActive:         true,
	}
	if err := s.db.WithContext(ctx).Create(&location).Error; err != nil {
		return nil, storeErr(err, "create location")
	}

	log.Info("location created",
		zap.String("location_id", location.ID),
		zap.String("tenant_id", tenantID),
		zap.String("name", location.Name))
	return &location, nil
}

// Update changes a location's fields after an ownership check.
func (s *LocationService) Update(ctx context.Context, principalID, locationID string, in LocationInput) (*model.Location, error) {
	tenantID, err := s.resolver.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(KindInvalidArgument, "location name is required")
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	location, err := s.loadOwned(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}

	location.Name = name
	location.Address = strings.TrimSpace(in.Address)
	location.City = strings.TrimSpace(in.City)
	location.IsPickupCapable = in.IsPickupCapable
	location.IsDropoffCapable = in.IsDropoffCapable
	if err := s.db.WithContext(ctx).Save(location).Error; err != nil {
		return nil, storeErr(err, "update location")
	}
	return location, nil
}

// Deactivate soft-disables a location. The headquarters location may be
// deactivated too, but it is never hard-deleted, so the one-HQ-per-tenant
// guarantee holds.
func (s *LocationService) Deactivate(ctx context.Context, principalID, locationID string) error {
	log := logger.FromContext(ctx)

	tenantID, err := s.resolver.Resolve(ctx, principalID)
	if err != nil {
		return err
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	location, err := s.loadOwned(ctx, tenantID, locationID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(location).Update("is_active", false).Error; err != nil {
		return storeErr(err, "deactivate location")
	}

	log.Info("location deactivated",
		zap.String("location_id", locationID),
		zap.String("tenant_id", tenantID))
	return nil
}

func (s *LocationService) loadOwned(ctx context.Context, tenantID, locationID string) (*model.Location, error) {
	var location model.Location
	if err := s.db.WithContext(ctx).First(&location, "id = ?", locationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "location not found")
		}
		return nil, storeErr(err, "load location")
	}
	if location.TenantID != tenantID {
		return nil, newError(KindForbidden, "location belongs to a different company")
	}
	return &location, nil
}
