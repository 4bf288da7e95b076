package services

import (
	"context"
	"time"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
)

// StateMutator persists lateness transitions. Each method reports whether
// this caller won the transition; a false result means another run (or an
// earlier one) already recorded it and nothing else should happen.
type StateMutator struct {
	repo repositories.BookingRepository
}

// NewStateMutator creates a new state mutator
func NewStateMutator(repo repositories.BookingRepository) *StateMutator {
	return &StateMutator{repo: repo}
}

// MarkLateStart flags the booking as started late. Status is unchanged.
func (m *StateMutator) MarkLateStart(ctx context.Context, bookingID string, now time.Time, minutesLate int) (bool, error) {
	return m.repo.MarkLateStart(ctx, bookingID, now, minutesLate)
}

// MarkMissed moves the booking to missed and appends the audit marker to its notes.
func (m *StateMutator) MarkMissed(ctx context.Context, bookingID string, now time.Time) (bool, error) {
	return m.repo.MarkMissed(ctx, bookingID, now, entities.MissedNoteMarker)
}
