package entities

import (
	"time"

	"github.com/google/uuid"
)

// BookingEventType represents the type of booking lateness event
type BookingEventType string

const (
	BookingEventTypeLateStart BookingEventType = "late_start"
	BookingEventTypeMissed    BookingEventType = "missed"
)

// BookingEvent is published after a lateness transition has been claimed
type BookingEvent struct {
	ID          string           `json:"id"`
	BookingID   string           `json:"booking_id"`
	BranchID    string           `json:"branch_id"`
	StaffID     *string          `json:"staff_id,omitempty"`
	EventType   BookingEventType `json:"event_type"`
	MinutesLate int              `json:"minutes_late"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewBookingEvent creates a new booking event for the given candidate
func NewBookingEvent(c *BookingCandidate, eventType BookingEventType, minutesLate int, at time.Time) *BookingEvent {
	return &BookingEvent{
		ID:          uuid.NewString(),
		BookingID:   c.ID,
		BranchID:    c.BranchID,
		StaffID:     c.StaffID,
		EventType:   eventType,
		MinutesLate: minutesLate,
		Timestamp:   at.UTC(),
	}
}
