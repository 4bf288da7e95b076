package repositories

import (
	"context"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
)

// StaffRepository reads and writes carer punctuality metrics
type StaffRepository interface {
	// GetMetrics retrieves the current counters for a staff member
	GetMetrics(ctx context.Context, staffID string) (*entities.StaffMetrics, error)

	// CompareAndSwapMetrics writes next only if the stored counters still
	// equal prev. It returns a CONFLICT error when another writer got there first.
	CompareAndSwapMetrics(ctx context.Context, prev, next entities.StaffMetrics) error
}
