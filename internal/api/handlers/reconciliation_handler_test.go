package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/api/handlers"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
)

type MockReconciliationRunner struct {
	mock.Mock
}

func (m *MockReconciliationRunner) Run(ctx context.Context, now time.Time) (*entities.RunSummary, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RunSummary), args.Error(1)
}

func TestReconciliationHandler_RunBookingLateness(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 5, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("returns run totals", func(t *testing.T) {
		runner := new(MockReconciliationRunner)
		runner.On("Run", mock.Anything, now).Return(&entities.RunSummary{
			Processed:           4,
			FirstAlertsCreated:  2,
			MissedAlertsCreated: 1,
			StaffUpdated:        1,
			Timestamp:           now,
		}, nil)

		handler := handlers.NewReconciliationHandler(runner).WithClock(clock)
		req := httptest.NewRequest(http.MethodPost, "/api/jobs/booking-lateness", nil)
		w := httptest.NewRecorder()

		handler.RunBookingLateness(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		assert.EqualValues(t, 4, body["processed"])
		assert.EqualValues(t, 2, body["firstAlertsCreated"])
		assert.EqualValues(t, 1, body["missedAlertsCreated"])
		assert.EqualValues(t, 1, body["staffUpdated"])
		assert.Equal(t, "2026-03-02T10:05:00.000Z", body["timestamp"])
		assert.NotContains(t, body, "errors")
		assert.NotContains(t, body, "skipped")
		runner.AssertExpectations(t)
	})

	t.Run("includes per-booking failures", func(t *testing.T) {
		runner := new(MockReconciliationRunner)
		runner.On("Run", mock.Anything, now).Return(&entities.RunSummary{
			Processed: 2,
			Failures: []entities.CandidateFailure{
				{BookingID: "booking-2", Stage: entities.StageMissed, Error: "insert failed"},
			},
			Timestamp: now,
		}, nil)

		handler := handlers.NewReconciliationHandler(runner).WithClock(clock)
		w := httptest.NewRecorder()
		handler.RunBookingLateness(w, httptest.NewRequest(http.MethodPost, "/api/jobs/booking-lateness", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp handlers.RunResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "booking-2", resp.Errors[0].BookingID)
		assert.Equal(t, "missed", resp.Errors[0].Stage)
	})

	t.Run("candidate fetch failure returns 500", func(t *testing.T) {
		runner := new(MockReconciliationRunner)
		runner.On("Run", mock.Anything, now).Return(nil, errors.New("failed to fetch bookings: connection refused"))

		handler := handlers.NewReconciliationHandler(runner).WithClock(clock)
		w := httptest.NewRecorder()
		handler.RunBookingLateness(w, httptest.NewRequest(http.MethodPost, "/api/jobs/booking-lateness", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "failed to fetch bookings: connection refused", body["error"])
	})

	t.Run("skipped run is still a success", func(t *testing.T) {
		runner := new(MockReconciliationRunner)
		runner.On("Run", mock.Anything, now).Return(&entities.RunSummary{Skipped: true, Timestamp: now}, nil)

		handler := handlers.NewReconciliationHandler(runner).WithClock(clock)
		w := httptest.NewRecorder()
		handler.RunBookingLateness(w, httptest.NewRequest(http.MethodPost, "/api/jobs/booking-lateness", nil))

		var resp handlers.RunResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.True(t, resp.Skipped)
		assert.Equal(t, 0, resp.Processed)
	})
}
