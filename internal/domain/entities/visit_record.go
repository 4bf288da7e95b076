package entities

import "time"

// VisitRecord is the carer's check-in evidence for a booking
type VisitRecord struct {
	ID             string     `json:"id" db:"id"`
	BookingID      string     `json:"booking_id" db:"booking_id"`
	VisitStartTime *time.Time `json:"visit_start_time,omitempty" db:"visit_start_time"`
}

// Started reports whether the carer checked in.
func (v *VisitRecord) Started() bool {
	return v != nil && v.VisitStartTime != nil
}
