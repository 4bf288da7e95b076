package services

import (
	"time"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
)

// AlertDecision is what the policy asks the reconciler to do for one booking
type AlertDecision struct {
	State         entities.LatenessState
	MinutesLate   int
	PastEnd       bool
	FireLateStart bool
	FireMissed    bool
}

// IsNoop reports whether the decision requires no writes at all.
func (d AlertDecision) IsNoop() bool {
	return !d.FireLateStart && !d.FireMissed
}

// DeriveLatenessState infers where a booking sits in the lateness state
// machine from its notified timestamps and the elapsed time.
func DeriveLatenessState(b *entities.Booking, settings entities.AlertSettings, now time.Time) entities.LatenessState {
	switch {
	case b.MissedNotifiedAt != nil:
		return entities.LatenessMissedAlerted
	case b.LateStartNotifiedAt != nil:
		return entities.LatenessLateStartAlerted
	case b.MinutesLate(now) >= settings.FirstAlertDelayMinutes:
		return entities.LatenessLateStartPending
	}
	return entities.LatenessOnTime
}

// EvaluateAlertPolicy decides which alerts a not-yet-started booking should
// fire at now. The late-start and missed checks are independent; both can
// fire in the same run. A notified_at timestamp that is already set always
// suppresses the corresponding alert.
func EvaluateAlertPolicy(b *entities.Booking, settings entities.AlertSettings, now time.Time) AlertDecision {
	d := AlertDecision{
		State:       DeriveLatenessState(b, settings, now),
		MinutesLate: b.MinutesLate(now),
		PastEnd:     b.IsPastEnd(now),
	}

	d.FireLateStart = settings.EnableLateStartAlerts &&
		d.MinutesLate >= settings.FirstAlertDelayMinutes &&
		b.LateStartNotifiedAt == nil

	// Missed detection keys off the scheduled end time. The configured
	// missed_booking_threshold_minutes is deliberately not consulted.
	d.FireMissed = settings.EnableMissedBookingAlerts &&
		d.PastEnd &&
		b.MissedNotifiedAt == nil

	return d
}
