package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/observability"
)

// timestampLayout matches JavaScript's Date.toISOString, which the
// scheduler dashboards parse.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ReconciliationRunner defines the interface for running a reconciliation sweep
type ReconciliationRunner interface {
	Run(ctx context.Context, now time.Time) (*entities.RunSummary, error)
}

// ReconciliationHandler handles scheduler-triggered reconciliation runs
type ReconciliationHandler struct {
	runner ReconciliationRunner
	now    func() time.Time
}

// NewReconciliationHandler creates a new reconciliation handler
func NewReconciliationHandler(runner ReconciliationRunner) *ReconciliationHandler {
	return &ReconciliationHandler{
		runner: runner,
		now:    time.Now,
	}
}

// WithClock replaces the handler's time source
func (h *ReconciliationHandler) WithClock(now func() time.Time) *ReconciliationHandler {
	h.now = now
	return h
}

// RunResponse is the body returned for a completed run
type RunResponse struct {
	Success             bool                        `json:"success"`
	Processed           int                         `json:"processed"`
	FirstAlertsCreated  int                         `json:"firstAlertsCreated"`
	MissedAlertsCreated int                         `json:"missedAlertsCreated"`
	StaffUpdated        int                         `json:"staffUpdated"`
	Skipped             bool                        `json:"skipped,omitempty"`
	Errors              []entities.CandidateFailure `json:"errors,omitempty"`
	Timestamp           string                      `json:"timestamp"`
}

// RunBookingLateness handles POST /api/jobs/booking-lateness
func (h *ReconciliationHandler) RunBookingLateness(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())

	summary, err := h.runner.Run(r.Context(), h.now())
	if err != nil {
		logger.Error().Err(err).Msg("booking lateness run failed")
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, RunResponse{
		Success:             true,
		Processed:           summary.Processed,
		FirstAlertsCreated:  summary.FirstAlertsCreated,
		MissedAlertsCreated: summary.MissedAlertsCreated,
		StaffUpdated:        summary.StaffUpdated,
		Skipped:             summary.Skipped,
		Errors:              summary.Failures,
		Timestamp:           summary.Timestamp.UTC().Format(timestampLayout),
	})
}
