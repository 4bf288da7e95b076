package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/application/services"
)

type MockRecipientRepository struct {
	mock.Mock
}

func (m *MockRecipientRepository) ListSuperAdminUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecipientRepository) ListBranchAdminUserIDs(ctx context.Context, branchID string) ([]string, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestMergeRecipients(t *testing.T) {
	tests := []struct {
		name   string
		groups [][]string
		want   []string
	}{
		{name: "no recipients", groups: nil, want: nil},
		{name: "super admins only", groups: [][]string{{"b", "a"}, nil}, want: []string{"a", "b"}},
		{name: "overlap is deduplicated", groups: [][]string{{"a", "c"}, {"c", "b", "a"}}, want: []string{"a", "b", "c"}},
		{name: "blank ids are dropped", groups: [][]string{{"", "a"}, {""}}, want: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.MergeRecipients(tt.groups...))
		})
	}
}

func TestRecipientResolver_AdminRecipients(t *testing.T) {
	t.Run("unions super and branch admins", func(t *testing.T) {
		repo := new(MockRecipientRepository)
		repo.On("ListSuperAdminUserIDs", mock.Anything).Return([]string{"super-1", "shared"}, nil)
		repo.On("ListBranchAdminUserIDs", mock.Anything, "branch-1").Return([]string{"shared", "branch-admin"}, nil)

		ids, err := services.NewRecipientResolver(repo).AdminRecipients(context.Background(), "branch-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"branch-admin", "shared", "super-1"}, ids)
		repo.AssertExpectations(t)
	})

	t.Run("no branch skips branch admins", func(t *testing.T) {
		repo := new(MockRecipientRepository)
		repo.On("ListSuperAdminUserIDs", mock.Anything).Return([]string{"super-1"}, nil)

		ids, err := services.NewRecipientResolver(repo).AdminRecipients(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"super-1"}, ids)
		repo.AssertNotCalled(t, "ListBranchAdminUserIDs", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure is returned", func(t *testing.T) {
		repo := new(MockRecipientRepository)
		repo.On("ListSuperAdminUserIDs", mock.Anything).Return([]string{"super-1"}, nil)
		repo.On("ListBranchAdminUserIDs", mock.Anything, "branch-1").Return(nil, errors.New("timeout"))

		_, err := services.NewRecipientResolver(repo).AdminRecipients(context.Background(), "branch-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "branch-1")
	})
}
