package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/application/services"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	apperrors "github.com/rohanthuse/infinite-care-vue-sub018/pkg/errors"
)

type MockAlertSettingsRepository struct {
	mock.Mock
}

func (m *MockAlertSettingsRepository) Get(ctx context.Context) (*entities.AlertSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AlertSettings), args.Error(1)
}

func TestSettingsProvider_Load(t *testing.T) {
	t.Run("returns stored settings", func(t *testing.T) {
		stored := &entities.AlertSettings{ID: "settings-1", FirstAlertDelayMinutes: 10, EnableLateStartAlerts: true}
		repo := new(MockAlertSettingsRepository)
		repo.On("Get", mock.Anything).Return(stored, nil)

		assert.Equal(t, *stored, services.NewSettingsProvider(repo).Load(context.Background()))
	})

	t.Run("missing row uses defaults", func(t *testing.T) {
		repo := new(MockAlertSettingsRepository)
		repo.On("Get", mock.Anything).Return(nil, apperrors.NewNotFoundError("alert settings not found"))

		assert.Equal(t, entities.DefaultAlertSettings(), services.NewSettingsProvider(repo).Load(context.Background()))
	})

	t.Run("read failure uses defaults", func(t *testing.T) {
		repo := new(MockAlertSettingsRepository)
		repo.On("Get", mock.Anything).Return(nil, errors.New("permission denied"))

		assert.Equal(t, entities.DefaultAlertSettings(), services.NewSettingsProvider(repo).Load(context.Background()))
	})
}
