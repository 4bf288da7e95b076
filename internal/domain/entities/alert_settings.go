package entities

// Defaults applied when no alert_settings row exists
const (
	DefaultFirstAlertDelayMinutes        = 0
	DefaultMissedBookingThresholdMinutes = 3
)

// AlertSettings is the tenant's singleton lateness alert configuration.
//
// MissedBookingThresholdMinutes is stored for the admin screens but missed
// detection keys off the scheduled end time, not this value.
type AlertSettings struct {
	ID                            string `json:"id" db:"id"`
	FirstAlertDelayMinutes        int    `json:"first_alert_delay_minutes" db:"first_alert_delay_minutes"`
	MissedBookingThresholdMinutes int    `json:"missed_booking_threshold_minutes" db:"missed_booking_threshold_minutes"`
	EnableLateStartAlerts         bool   `json:"enable_late_start_alerts" db:"enable_late_start_alerts"`
	EnableMissedBookingAlerts     bool   `json:"enable_missed_booking_alerts" db:"enable_missed_booking_alerts"`
}

// DefaultAlertSettings returns the settings used when none are configured.
func DefaultAlertSettings() AlertSettings {
	return AlertSettings{
		FirstAlertDelayMinutes:        DefaultFirstAlertDelayMinutes,
		MissedBookingThresholdMinutes: DefaultMissedBookingThresholdMinutes,
		EnableLateStartAlerts:         true,
		EnableMissedBookingAlerts:     true,
	}
}
