// Package service implements the tenant-scoped consistency engine for
// vehicles and their permitted pickup/dropoff locations: tenant
// resolution, location validation, headquarters provisioning, atomic
// association replacement, and the vehicle record manager that
// orchestrates them.
//
// Every component takes the tenant identifier as an explicit parameter;
// none of them performs its own ambient authentication lookup.
package service

import (
	"context"
	"time"
)

// defaultOperationTimeout bounds a store round trip when the caller did
// not configure one.
const defaultOperationTimeout = 5 * time.Second

// opContext derives a context bounding a single store operation. Every
// read and write in this package goes through a context produced here so
// a hung store surfaces as KindTimeout instead of an indefinite stall.
func opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
