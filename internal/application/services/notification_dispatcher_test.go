package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/application/services"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
)

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateBatch(ctx context.Context, notifications []*entities.Notification) error {
	args := m.Called(ctx, notifications)
	return args.Error(0)
}

type staticRecipients []string

func (r staticRecipients) AdminRecipients(ctx context.Context, branchID string) ([]string, error) {
	return r, nil
}

func TestNotificationDispatcher_BuildLateStart(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	// 09:00 UTC in June is 10:00 in London.
	c := newCandidate("booking-1", carer("staff-1"))
	c.StartTime = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	c.EndTime = c.StartTime.Add(time.Hour)

	d := services.NewNotificationDispatcher(nil, staticRecipients{}, london)
	now := c.StartTime.Add(7 * time.Minute)
	ns := d.BuildLateStart(c, []string{"admin-1", "admin-2"}, 7, now)

	require.Len(t, ns, 2)
	assert.NotEqual(t, ns[0].ID, ns[1].ID)
	for _, n := range ns {
		assert.Equal(t, "Booking Not Started On Time", n.Title)
		assert.Equal(t, entities.NotificationLateStart, n.Type)
		assert.Equal(t, entities.NotificationCategoryBooking, n.Category)
		assert.Equal(t, entities.PriorityHigh, n.Priority)
		assert.Equal(t, "branch-1", n.BranchID)
		assert.Equal(t, now, n.CreatedAt)
		assert.False(t, n.Read)
		assert.Contains(t, n.Message, "Sam Carer")
		assert.Contains(t, n.Message, "Mary Jones")
		assert.Contains(t, n.Message, "10:00")
		assert.Contains(t, n.Message, "7 minutes late")

		assert.Equal(t, "booking-1", n.Data.BookingID)
		assert.Equal(t, "Personal care", n.Data.ServiceTitle)
		assert.Equal(t, entities.NotificationStatusNotStarted, n.Data.Status)
		require.NotNil(t, n.Data.MinutesLate)
		assert.Equal(t, 7, *n.Data.MinutesLate)
	}
}

func TestNotificationDispatcher_BuildMissed(t *testing.T) {
	d := services.NewNotificationDispatcher(nil, staticRecipients{}, time.UTC)

	t.Run("admins and carer", func(t *testing.T) {
		c := newCandidate("booking-1", carer("staff-1"))
		ns := d.BuildMissed(c, []string{"admin-1"}, 65, at(10, 5))

		require.Len(t, ns, 2)
		admin, own := ns[0], ns[1]

		assert.Equal(t, "admin-1", admin.UserID)
		assert.Equal(t, "Missed Booking Alert", admin.Title)
		assert.Equal(t, entities.PriorityCritical, admin.Priority)
		assert.Contains(t, admin.Message, "09:00-10:00")
		assert.Contains(t, admin.Message, "Mary Jones")
		assert.Contains(t, admin.Message, "Sam Carer")
		require.NotNil(t, admin.Data.MinutesLate)

		assert.Equal(t, "user-staff-1", own.UserID)
		assert.Equal(t, "Booking Marked as Missed", own.Title)
		assert.Equal(t, entities.PriorityHigh, own.Priority)
		assert.Equal(t, entities.NotificationMissedBooking, own.Type)
		assert.Contains(t, own.Message, "09:00-10:00")
		assert.Nil(t, own.Data.MinutesLate)
		assert.Equal(t, entities.NotificationStatusMissed, own.Data.Status)
	})

	t.Run("carer without login gets nothing", func(t *testing.T) {
		staff := carer("staff-1")
		staff.AuthUserID = nil
		ns := d.BuildMissed(newCandidate("booking-1", staff), []string{"admin-1"}, 65, at(10, 5))
		require.Len(t, ns, 1)
		assert.Equal(t, "admin-1", ns[0].UserID)
	})

	t.Run("unassigned booking", func(t *testing.T) {
		ns := d.BuildMissed(newCandidate("booking-1", nil), nil, 65, at(10, 5))
		assert.Empty(t, ns)
	})
}

func TestNotificationDispatcher_Dispatch(t *testing.T) {
	t.Run("stores one batch", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		repo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(ns []*entities.Notification) bool {
			return len(ns) == 3
		})).Return(nil).Once()

		d := services.NewNotificationDispatcher(repo, staticRecipients{"admin-1", "admin-2"}, time.UTC)
		sent, err := d.DispatchMissed(context.Background(), newCandidate("booking-1", carer("staff-1")), 65, at(10, 5))
		require.NoError(t, err)
		assert.Equal(t, 3, sent)
		repo.AssertExpectations(t)
	})

	t.Run("no recipients writes nothing", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		d := services.NewNotificationDispatcher(repo, staticRecipients{}, time.UTC)

		sent, err := d.DispatchLateStart(context.Background(), newCandidate("booking-1", nil), 5, at(9, 5))
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
		repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("insert failure is returned", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		repo.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

		d := services.NewNotificationDispatcher(repo, staticRecipients{"admin-1"}, time.UTC)
		_, err := d.DispatchLateStart(context.Background(), newCandidate("booking-1", nil), 5, at(9, 5))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert failed")
	})
}
