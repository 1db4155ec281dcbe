package service

import (
	"context"
	"errors"
	"time"

	"fleet-service/internal/model"

	"gorm.io/gorm"
)

// TenantResolver determines which company an authenticated principal
// operates. Ownership is the primary path; if tenant provisioning and
// first-resource creation raced during onboarding, the resolver falls
// back to any vehicle the principal already created.
type TenantResolver struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewTenantResolver(db *gorm.DB, timeout time.Duration) *TenantResolver {
	return &TenantResolver{db: db, timeout: timeout}
}

// Resolve returns the tenant ID owned by principalID. A principal with
// no resolvable tenant gets KindTenantUnresolved, which callers must
// treat as "operator has not completed onboarding".
func (r *TenantResolver) Resolve(ctx context.Context, principalID string) (string, error) {
	if principalID == "" {
		return "", newError(KindInvalidArgument, "principal ID is required")
	}

	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	var tenant model.Tenant
	err := r.db.WithContext(ctx).Where("owner_user_id = ?", principalID).First(&tenant).Error
	if err == nil {
		return tenant.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", storeErr(err, "resolve tenant")
	}

	// Bootstrap fallback: infer the tenant from a vehicle this principal
	// already created.
	var vehicle model.Vehicle
	err = r.db.WithContext(ctx).Where("created_by_user_id = ?", principalID).First(&vehicle).Error
	if err == nil {
		return vehicle.TenantID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", storeErr(err, "resolve tenant")
	}

	return "", newError(KindTenantUnresolved, "no company is registered for this account")
}
