package services

import (
	"context"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/observability"
	apperrors "github.com/rohanthuse/infinite-care-vue-sub018/pkg/errors"
)

// SettingsProvider supplies the alert settings for one run
type SettingsProvider struct {
	repo repositories.AlertSettingsRepository
}

// NewSettingsProvider creates a new settings provider
func NewSettingsProvider(repo repositories.AlertSettingsRepository) *SettingsProvider {
	return &SettingsProvider{repo: repo}
}

// Load returns the configured settings, or the defaults when the row is
// missing or unreadable. It never fails the run.
func (p *SettingsProvider) Load(ctx context.Context) entities.AlertSettings {
	logger := observability.LoggerFromContext(ctx)

	settings, err := p.repo.Get(ctx)
	switch {
	case apperrors.IsNotFound(err):
		logger.Debug().Msg("no alert settings configured, using defaults")
		return entities.DefaultAlertSettings()
	case err != nil:
		logger.Warn().Err(err).Msg("failed to load alert settings, using defaults")
		return entities.DefaultAlertSettings()
	case settings == nil:
		return entities.DefaultAlertSettings()
	}

	return *settings
}
