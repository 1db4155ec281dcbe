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

// TenantService handles company onboarding. Each principal owns at most
// one company.
type TenantService struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewTenantService(db *gorm.DB, timeout time.Duration) *TenantService {
	return &TenantService{db: db, timeout: timeout}
}

// Create registers a company owned by the principal.
func (s *TenantService) Create(ctx context.Context, principalID, name string) (*model.Tenant, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(KindInvalidArgument, "company name is required")
	}

	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	var existing model.Tenant
	err := s.db.WithContext(ctx).Where("owner_user_id = ?", principalID).First(&existing).Error
	if err == nil {
		return nil, newError(KindConflict, "a company is already registered for this account")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr(err, "check existing tenant")
	}

	tenant := model.Tenant{
		ID:          uuid.NewString(),
		Name:        name,
		OwnerUserID: principalID,
		Active:      true,
	}
	if err := s.db.WithContext(ctx).Create(&tenant).Error; err != nil {
		// Two onboarding requests can race past the check; the unique
		// index on owner_user_id decides, and the loser gets the same
		// conflict as the sequential case.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &Error{
				Kind:    KindConflict,
				Message: "a company is already registered for this account",
				Err:     err,
			}
		}
		return nil, storeErr(err, "create tenant")
	}

	log.Info("tenant created",
		zap.String("tenant_id", tenant.ID),
		zap.String("name", tenant.Name),
		zap.String("owner_user_id", principalID))
	return &tenant, nil
}

// GetByOwner returns the principal's company.
func (s *TenantService) GetByOwner(ctx context.Context, principalID string) (*model.Tenant, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	var tenant model.Tenant
	err := s.db.WithContext(ctx).Where("owner_user_id = ?", principalID).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindTenantUnresolved, "no company is registered for this account")
		}
		return nil, storeErr(err, "load tenant")
	}
	return &tenant, nil
}
