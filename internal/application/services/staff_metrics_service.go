package services

import (
	"context"
	"time"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/observability"
	apperrors "github.com/rohanthuse/infinite-care-vue-sub018/pkg/errors"
	"github.com/rohanthuse/infinite-care-vue-sub018/pkg/retry"
)

// StaffMetricsUpdater maintains a carer's punctuality counters
type StaffMetricsUpdater struct {
	staffRepo   repositories.StaffRepository
	bookingRepo repositories.BookingRepository
	retryConfig retry.Config
}

// NewStaffMetricsUpdater creates a new staff metrics updater
func NewStaffMetricsUpdater(staffRepo repositories.StaffRepository, bookingRepo repositories.BookingRepository) *StaffMetricsUpdater {
	return &StaffMetricsUpdater{
		staffRepo:   staffRepo,
		bookingRepo: bookingRepo,
		retryConfig: retry.ConflictConfig(apperrors.IsConflict),
	}
}

// RecordMissedVisit increments the late-arrival and missed counters for
// staffID and rescores punctuality. Concurrent updates to the same carer are
// resolved by compare-and-swap; the read-compute-write cycle is retried on
// conflict so no increment is lost.
func (u *StaffMetricsUpdater) RecordMissedVisit(ctx context.Context, staffID string) (*entities.StaffMetrics, error) {
	logger := observability.LoggerFromContext(ctx)

	var updated entities.StaffMetrics
	err := retry.DoWithLog(ctx, u.retryConfig, "staff-metrics", func() error {
		current, err := u.staffRepo.GetMetrics(ctx, staffID)
		if err != nil {
			return err
		}

		total, err := u.bookingRepo.CountForPunctuality(ctx, staffID)
		if err != nil {
			return err
		}

		next := current.WithMissedVisit(total)
		if err := u.staffRepo.CompareAndSwapMetrics(ctx, *current, next); err != nil {
			return err
		}

		updated = next
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		logger.Debug().
			Err(err).
			Str("staff_id", staffID).
			Int("attempt", attempt).
			Dur("retry_in", nextDelay).
			Msg("staff metrics changed concurrently, retrying")
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}
