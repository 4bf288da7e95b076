package repositories

import (
	"context"
	"time"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
)

// BookingRepository defines the booking operations the reconciler needs
type BookingRepository interface {
	// ListReconciliationCandidates returns active, uncancelled bookings whose
	// scheduled start is before now, joined with client/staff/service summaries
	ListReconciliationCandidates(ctx context.Context, now time.Time) ([]*entities.BookingCandidate, error)

	// MarkLateStart sets the late-start flags if no late-start alert has been
	// recorded yet. It reports whether this call performed the transition.
	MarkLateStart(ctx context.Context, bookingID string, notifiedAt time.Time, minutesLate int) (bool, error)

	// MarkMissed moves an active booking to missed, sets the missed flags and
	// appends the marker to its notes, unless already done. It reports
	// whether this call performed the transition.
	MarkMissed(ctx context.Context, bookingID string, notifiedAt time.Time, noteMarker string) (bool, error)

	// CountForPunctuality counts the staff member's bookings in a
	// punctuality-relevant status
	CountForPunctuality(ctx context.Context, staffID string) (int, error)
}
