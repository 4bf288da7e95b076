package repositories

import (
	"context"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
)

// VisitRecordRepository reads carer check-in records
type VisitRecordRepository interface {
	// ListByBookingIDs returns the visit records that exist for the given
	// bookings. Bookings without a record are simply absent.
	ListByBookingIDs(ctx context.Context, bookingIDs []string) ([]*entities.VisitRecord, error)
}
