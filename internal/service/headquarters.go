package service

import (
	"context"
	"time"

	"fleet-service/internal/model"
	"fleet-service/pkg/logger"
	"fleet-service/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HeadquartersProvisioner guarantees each tenant has exactly one
// headquarters location, creating it on first access. The partial
// unique index on locations(tenant_id) where is_headquarters makes the
// store the arbiter when two callers race.
type HeadquartersProvisioner struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewHeadquartersProvisioner(db *gorm.DB, timeout time.Duration) *HeadquartersProvisioner {
	return &HeadquartersProvisioner{db: db, timeout: timeout}
}

// Ensure is idempotent and safe to call on every location list. The
// headquarters is a convenience default, not a correctness requirement,
// so a provisioning failure is logged and swallowed rather than failing
// the caller's broader operation.
func (p *HeadquartersProvisioner) Ensure(ctx context.Context, tenantID string) {
	log := logger.FromContext(ctx)

	ctx, cancel := opContext(ctx, p.timeout)
	defer cancel()

	var count int64
	if err := p.db.WithContext(ctx).Model(&model.Location{}).
		Where("tenant_id = ? AND is_headquarters", tenantID).
		Count(&count).Error; err != nil {
		log.Warn("headquarters check failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	var tenant model.Tenant
	if err := p.db.WithContext(ctx).First(&tenant, "id = ?", tenantID).Error; err != nil {
		log.Warn("headquarters provisioning skipped, tenant lookup failed",
			zap.String("tenant_id", tenantID), zap.Error(err))
		return
	}

	hq := model.Location{
		ID:               uuid.NewString(),
		TenantID:         tenantID,
		Name:             "HQ - " + tenant.Name,
		IsPickupCapable:  true,
		IsDropoffCapable: true,
		IsHeadquarters:   true,
		IsActive:         true,
	}
	if err := p.db.WithContext(ctx).Create(&hq).Error; err != nil {
		// A concurrent caller winning the unique-index race lands here.
		// That is the expected outcome, not an error.
		var recheck int64
		if p.db.WithContext(ctx).Model(&model.Location{}).
			Where("tenant_id = ? AND is_headquarters", tenantID).
			Count(&recheck).Error == nil && recheck > 0 {
			return
		}
		log.Warn("headquarters provisioning failed",
			zap.String("tenant_id", tenantID), zap.Error(err))
		return
	}

	prometheus.RecordHeadquartersProvisioned()
	log.Info("headquarters location provisioned",
		zap.String("tenant_id", tenantID),
		zap.String("location_id", hq.ID))
}
