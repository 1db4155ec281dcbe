package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies a service failure so handlers can map it to a response
// without inspecting store error strings.
type Kind string

const (
	// KindTenantUnresolved means the principal has not finished onboarding
	// a company yet. User-actionable, not a bug.
	KindTenantUnresolved Kind = "tenant_unresolved"
	// KindForbidden means the resource belongs to a different tenant.
	KindForbidden Kind = "forbidden"
	KindNotFound  Kind = "not_found"
	// KindInvalidLocationReference means one or more supplied location IDs
	// do not exist, are inactive, belong to another tenant, or lack the
	// required role flag. Always reported as a batch.
	KindInvalidLocationReference Kind = "invalid_location_reference"
	KindDuplicateRegistration    Kind = "duplicate_registration"
	// KindAssociationSyncFailed means the post-write verification found a
	// persisted association set that differs from the validated input.
	// Safe to retry.
	KindAssociationSyncFailed Kind = "association_sync_failed"
	// KindTimeout means a store round trip exceeded its deadline before
	// any state could be committed. Safe to retry.
	KindTimeout Kind = "timeout"
	// KindConflict covers non-registration uniqueness conflicts, such as
	// onboarding a second company for one principal.
	KindConflict        Kind = "conflict"
	KindInvalidArgument Kind = "invalid_argument"
	KindInternal        Kind = "internal"
)

// Error is the service-layer error carrying a failure kind, a
// human-readable message, and the offending identifiers when applicable.
type Error struct {
	Kind    Kind
	Message string
	IDs     []string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the failure kind of err, or KindInternal for anything
// that is not a service error.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given failure kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// storeErr maps a raw store error into a service error. Internal store
// error text is kept on the wrapped error for logs, never in the message.
func storeErr(err error, operation string) *Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: operation + " timed out", Err: err}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Message: operation + ": record not found", Err: err}
	default:
		return &Error{Kind: KindInternal, Message: operation + " failed", Err: err}
	}
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ", ")
}
