package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/application/services"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
)

type MockVisitRecordRepository struct {
	mock.Mock
}

func (m *MockVisitRecordRepository) ListByBookingIDs(ctx context.Context, bookingIDs []string) ([]*entities.VisitRecord, error) {
	args := m.Called(ctx, bookingIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.VisitRecord), args.Error(1)
}

func TestVisitStatusResolver(t *testing.T) {
	t.Run("prefetch batches lookups", func(t *testing.T) {
		startedAt := at(9, 3)
		repo := new(MockVisitRecordRepository)
		repo.On("ListByBookingIDs", mock.Anything, mock.MatchedBy(func(ids []string) bool {
			return assert.ElementsMatch(t, []string{"b-1", "b-2", "b-3"}, ids)
		})).Return([]*entities.VisitRecord{
			{ID: "v-1", BookingID: "b-1", VisitStartTime: &startedAt},
			{ID: "v-2", BookingID: "b-2"},
		}, nil).Once()

		resolver := services.NewVisitStatusResolver(repo)
		ctx := context.Background()
		resolver.Prefetch(ctx, []string{"b-1", "b-2", "b-3"})

		started, err := resolver.Started(ctx, "b-1")
		require.NoError(t, err)
		assert.True(t, started)

		started, err = resolver.Started(ctx, "b-2")
		require.NoError(t, err)
		assert.False(t, started, "record without a start time")

		started, err = resolver.Started(ctx, "b-3")
		require.NoError(t, err)
		assert.False(t, started, "no record at all")

		repo.AssertNumberOfCalls(t, "ListByBookingIDs", 1)
	})

	t.Run("lookup failure surfaces per booking", func(t *testing.T) {
		repo := new(MockVisitRecordRepository)
		repo.On("ListByBookingIDs", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

		resolver := services.NewVisitStatusResolver(repo)
		_, err := resolver.Started(context.Background(), "b-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})
}
