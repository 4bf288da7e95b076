package repositories

import (
	"context"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
)

// AlertSettingsRepository loads the singleton alert configuration
type AlertSettingsRepository interface {
	// Get returns the settings row, or a NOT_FOUND error when none exists
	Get(ctx context.Context) (*entities.AlertSettings, error)
}
