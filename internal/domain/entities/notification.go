package entities

import "time"

// NotificationType tags what kind of booking event a notification reports
type NotificationType string

const (
	NotificationLateStart     NotificationType = "late_start"
	NotificationMissedBooking NotificationType = "missed_booking"
)

// NotificationPriority ranks how urgently a notification should be surfaced
type NotificationPriority string

const (
	PriorityHigh     NotificationPriority = "high"
	PriorityCritical NotificationPriority = "critical"
)

// NotificationCategoryBooking is the category of every reconciler notification
const NotificationCategoryBooking = "booking"

// Canonical status strings carried in NotificationData.Status
const (
	NotificationStatusNotStarted = "not_started"
	NotificationStatusMissed     = "missed"
)

// NotificationData is the structured payload consumers render from
type NotificationData struct {
	BookingID      string    `json:"booking_id"`
	ClientName     string    `json:"client_name"`
	StaffName      string    `json:"staff_name"`
	ServiceTitle   string    `json:"service_title,omitempty"`
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
	MinutesLate    *int      `json:"minutes_late,omitempty"`
	Status         string    `json:"status"`
}

// Notification is an addressed alert row for the in-app notification centre
type Notification struct {
	ID        string               `json:"id" db:"id"`
	UserID    string               `json:"user_id" db:"user_id"`
	BranchID  string               `json:"branch_id" db:"branch_id"`
	Title     string               `json:"title" db:"title"`
	Message   string               `json:"message" db:"message"`
	Type      NotificationType     `json:"type" db:"type"`
	Category  string               `json:"category" db:"category"`
	Priority  NotificationPriority `json:"priority" db:"priority"`
	Data      NotificationData     `json:"data" db:"data"`
	Read      bool                 `json:"read" db:"read"`
	CreatedAt time.Time            `json:"created_at" db:"created_at"`
}
