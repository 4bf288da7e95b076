package entities

import (
	"strings"
	"time"
)

// BookingStatus represents the lifecycle status of a care visit booking
type BookingStatus string

const (
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusAssigned   BookingStatus = "assigned"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusMissed     BookingStatus = "missed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// ActiveBookingStatuses are the statuses the reconciler scans and the only
// statuses a booking may move to missed from.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusConfirmed,
	BookingStatusAssigned,
}

// PunctualityBookingStatuses are the statuses counted towards a carer's
// booking total when computing the punctuality score.
var PunctualityBookingStatuses = []BookingStatus{
	BookingStatusCompleted,
	BookingStatusInProgress,
	BookingStatusConfirmed,
	BookingStatusAssigned,
	BookingStatusMissed,
}

// IsActive reports whether the status is still eligible for reconciliation.
func (s BookingStatus) IsActive() bool {
	for _, active := range ActiveBookingStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// RequestStatus is the state of a cancellation or reschedule request
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// MissedNoteMarker is appended to a booking's notes when it is auto-marked missed.
const MissedNoteMarker = "Auto – Visit not started"

// Booking represents a scheduled care visit
type Booking struct {
	ID                        string         `json:"id" db:"id"`
	OrganizationID            string         `json:"organization_id" db:"organization_id"`
	BranchID                  string         `json:"branch_id" db:"branch_id"`
	ClientID                  string         `json:"client_id" db:"client_id"`
	StaffID                   *string        `json:"staff_id,omitempty" db:"staff_id"`
	ServiceID                 *string        `json:"service_id,omitempty" db:"service_id"`
	StartTime                 time.Time      `json:"start_time" db:"start_time"`
	EndTime                   time.Time      `json:"end_time" db:"end_time"`
	Status                    BookingStatus  `json:"status" db:"status"`
	CancellationRequestStatus *RequestStatus `json:"cancellation_request_status,omitempty" db:"cancellation_request_status"`
	RescheduleRequestStatus   *RequestStatus `json:"reschedule_request_status,omitempty" db:"reschedule_request_status"`
	CancelledAt               *time.Time     `json:"cancelled_at,omitempty" db:"cancelled_at"`
	IsLateStart               bool           `json:"is_late_start" db:"is_late_start"`
	LateStartNotifiedAt       *time.Time     `json:"late_start_notified_at,omitempty" db:"late_start_notified_at"`
	LateStartMinutes          int            `json:"late_start_minutes" db:"late_start_minutes"`
	IsMissed                  bool           `json:"is_missed" db:"is_missed"`
	MissedNotifiedAt          *time.Time     `json:"missed_notified_at,omitempty" db:"missed_notified_at"`
	Notes                     string         `json:"notes" db:"notes"`
}

// IsReconcilable reports whether the booking would be returned by the
// candidate scan at the given instant.
func (b *Booking) IsReconcilable(now time.Time) bool {
	if !b.Status.IsActive() || !b.StartTime.Before(now) || b.CancelledAt != nil {
		return false
	}
	if b.CancellationRequestStatus != nil && *b.CancellationRequestStatus == RequestStatusApproved {
		return false
	}
	if b.RescheduleRequestStatus != nil && *b.RescheduleRequestStatus == RequestStatusApproved {
		return false
	}
	return true
}

// MinutesLate returns the whole minutes elapsed since the scheduled start.
func (b *Booking) MinutesLate(now time.Time) int {
	return int(now.Sub(b.StartTime) / time.Minute)
}

// IsPastEnd reports whether the scheduled window has closed.
func (b *Booking) IsPastEnd(now time.Time) bool {
	return now.After(b.EndTime)
}

// ClientSummary is the slice of the client record the reconciler renders
type ClientSummary struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
}

// FullName returns "First Last", trimming missing parts.
func (c ClientSummary) FullName() string {
	return joinName(c.FirstName, c.LastName, "Unknown client")
}

// StaffSummary is the slice of the carer record the reconciler needs
type StaffSummary struct {
	ID                 string  `json:"id"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	AuthUserID         *string `json:"auth_user_id,omitempty"`
	LateArrivalCount   int     `json:"late_arrival_count"`
	MissedBookingCount int     `json:"missed_booking_count"`
}

// FullName returns "First Last", trimming missing parts.
func (s StaffSummary) FullName() string {
	return joinName(s.FirstName, s.LastName, "Unknown carer")
}

// ServiceSummary is the slice of the service record shown in alerts
type ServiceSummary struct {
	Title string `json:"title"`
}

// BookingCandidate is a booking joined with the summaries needed downstream
type BookingCandidate struct {
	Booking
	Client  ClientSummary   `json:"client"`
	Staff   *StaffSummary   `json:"staff,omitempty"`
	Service *ServiceSummary `json:"service,omitempty"`
}

// CarerName returns the assigned carer's name or a placeholder.
func (c *BookingCandidate) CarerName() string {
	if c.Staff == nil {
		return "Unassigned carer"
	}
	return c.Staff.FullName()
}

// ServiceTitle returns the service title or an empty string.
func (c *BookingCandidate) ServiceTitle() string {
	if c.Service == nil {
		return ""
	}
	return c.Service.Title
}

func joinName(first, last, fallback string) string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		return fallback
	}
	return name
}
