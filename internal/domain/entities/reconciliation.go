package entities

import "time"

// LatenessState is derived from a booking's flags on every run; it is never
// stored as its own column.
type LatenessState int

const (
	LatenessOnTime LatenessState = iota
	LatenessLateStartPending
	LatenessLateStartAlerted
	LatenessMissedAlerted
)

func (s LatenessState) String() string {
	switch s {
	case LatenessOnTime:
		return "on_time"
	case LatenessLateStartPending:
		return "late_start_pending"
	case LatenessLateStartAlerted:
		return "late_start_alerted"
	case LatenessMissedAlerted:
		return "missed_alerted"
	}
	return "unknown"
}

// Failure stages recorded against a candidate
const (
	StageVisitLookup  = "visit_lookup"
	StageLateStart    = "late_start"
	StageMissed       = "missed"
	StageStaffMetrics = "staff_metrics"
	StageDeadline     = "deadline"
)

// CandidateFailure records why one booking could not be fully reconciled
type CandidateFailure struct {
	BookingID string `json:"booking_id"`
	Stage     string `json:"stage"`
	Error     string `json:"error"`
}

// RunSummary aggregates the outcome of one reconciliation invocation
type RunSummary struct {
	Processed           int                `json:"processed"`
	FirstAlertsCreated  int                `json:"firstAlertsCreated"`
	MissedAlertsCreated int                `json:"missedAlertsCreated"`
	StaffUpdated        int                `json:"staffUpdated"`
	Failures            []CandidateFailure `json:"errors,omitempty"`
	Skipped             bool               `json:"-"`
	Timestamp           time.Time          `json:"timestamp"`
}
