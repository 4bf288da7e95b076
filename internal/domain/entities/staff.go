package entities

import "math"

// StaffMetrics holds a carer's cumulative punctuality counters
type StaffMetrics struct {
	StaffID            string `json:"staff_id" db:"id"`
	LateArrivalCount   int    `json:"late_arrival_count" db:"late_arrival_count"`
	MissedBookingCount int    `json:"missed_booking_count" db:"missed_booking_count"`
	PunctualityScore   int    `json:"punctuality_score" db:"punctuality_score"`
}

// WithMissedVisit returns the metrics after one more missed visit, scored
// against totalBookings.
func (m StaffMetrics) WithMissedVisit(totalBookings int) StaffMetrics {
	next := m
	next.LateArrivalCount++
	next.MissedBookingCount++
	next.PunctualityScore = PunctualityScore(totalBookings, next.LateArrivalCount)
	return next
}

// PunctualityScore is the rounded percentage of bookings that were not late,
// clamped to [0, 100]. A non-positive total is treated as one booking.
func PunctualityScore(totalBookings, lateArrivals int) int {
	if totalBookings <= 0 {
		totalBookings = 1
	}
	score := math.Round(float64(totalBookings-lateArrivals) / float64(totalBookings) * 100)
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return int(score)
}
