package leases

import (
	"context"
	"time"
)

// Repository holds per-resource scan leases shared by every client context
// that opens the same device database.
type Repository interface {
	// Acquire takes the lease for resourceID if it is free, expired, or
	// already held by token. It reports whether the caller now holds it.
	Acquire(ctx context.Context, resourceID, token string, now time.Time, ttl time.Duration) (bool, error)
	// Release drops the lease if it is held by token.
	Release(ctx context.Context, resourceID, token string) error
}
