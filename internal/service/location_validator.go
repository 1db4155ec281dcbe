package service

import (
	"context"
	"strings"
	"time"

	"fleet-service/internal/model"

	"gorm.io/gorm"
)

// locationSentinels are UI-originated placeholder values meaning "the
// user wants to add a new location inline". They must never reach the
// store as if they were real identifiers.
var locationSentinels = map[string]struct{}{
	"":        {},
	"new":     {},
	"__new__": {},
}

// LocationValidator confirms that every candidate location identifier
// exists, belongs to the given tenant, is active, and carries the
// requested role flag. Validation is all-or-nothing: a single offending
// identifier fails the whole batch, with every offender named.
type LocationValidator struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewLocationValidator(db *gorm.DB, timeout time.Duration) *LocationValidator {
	return &LocationValidator{db: db, timeout: timeout}
}

// Validate returns the cleaned identifier list for the given role.
// Sentinels are stripped and duplicates collapsed before the batch
// fetch; an input reduced to nothing is a legitimate empty set.
func (v *LocationValidator) Validate(ctx context.Context, tenantID string, candidateIDs []string, role string) ([]string, error) {
	ids := cleanCandidateIDs(candidateIDs)
	if len(ids) == 0 {
		return []string{}, nil
	}

	ctx, cancel := opContext(ctx, v.timeout)
	defer cancel()

	// One round trip for the whole batch. Anything the store did not
	// return is treated as invalid, never silently accepted.
	var locations []model.Location
	if err := v.db.WithContext(ctx).Where("id IN ?", ids).Find(&locations).Error; err != nil {
		return nil, storeErr(err, "fetch locations")
	}

	byID := make(map[string]model.Location, len(locations))
	for _, loc := range locations {
		byID[loc.ID] = loc
	}

	var offenders []string
	for _, id := range ids {
		loc, ok := byID[id]
		switch {
		case !ok:
			offenders = append(offenders, id)
		case loc.TenantID != tenantID:
			// A foreign-tenant identifier is reported exactly like a
			// missing one so existence never leaks across tenants.
			offenders = append(offenders, id)
		case !loc.IsActive:
			offenders = append(offenders, id)
		case role == model.RolePickup && !loc.IsPickupCapable:
			offenders = append(offenders, id)
		case role == model.RoleDropoff && !loc.IsDropoffCapable:
			offenders = append(offenders, id)
		}
	}

	if len(offenders) > 0 {
		return nil, &Error{
			Kind:    KindInvalidLocationReference,
			Message: "locations " + joinIDs(offenders) + " are not valid " + role + " points for your company",
			IDs:     offenders,
		}
	}

	return ids, nil
}

func cleanCandidateIDs(candidateIDs []string) []string {
	ids := make([]string, 0, len(candidateIDs))
	seen := make(map[string]struct{}, len(candidateIDs))
	for _, raw := range candidateIDs {
		id := strings.TrimSpace(raw)
		if _, isSentinel := locationSentinels[strings.ToLower(id)]; isSentinel {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
