package providers

import (
	"context"
	"time"
)

// LockProvider hands out short-lived exclusive leases shared across processes
type LockProvider interface {
	// TryAcquire attempts to take the lease on key for ttl. When acquired is
	// false another holder owns it and release is nil.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

// ReconciliationLockKey guards the booking lateness sweep
const ReconciliationLockKey = "reconcile:booking-lateness"
