package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/clients/postgres"
	apperrors "github.com/rohanthuse/infinite-care-vue-sub018/pkg/errors"
)

// AlertSettingsAdapter implements the AlertSettingsRepository interface
type AlertSettingsAdapter struct {
	dbx *sqlx.DB
	db  *goqu.Database
}

// NewAlertSettingsAdapter creates a new alert settings adapter
func NewAlertSettingsAdapter(client *postgres.Client) repositories.AlertSettingsRepository {
	return &AlertSettingsAdapter{
		dbx: client.DBX(),
		db:  goqu.New("postgres", client.DB()),
	}
}

// Get retrieves the singleton settings row
func (a *AlertSettingsAdapter) Get(ctx context.Context) (*entities.AlertSettings, error) {
	defaults := entities.DefaultAlertSettings()

	query, args, err := a.db.From("alert_settings").
		Select(
			goqu.C("id"),
			goqu.COALESCE(goqu.C("first_alert_delay_minutes"), defaults.FirstAlertDelayMinutes).As("first_alert_delay_minutes"),
			goqu.COALESCE(goqu.C("missed_booking_threshold_minutes"), defaults.MissedBookingThresholdMinutes).As("missed_booking_threshold_minutes"),
			goqu.COALESCE(goqu.C("enable_late_start_alerts"), defaults.EnableLateStartAlerts).As("enable_late_start_alerts"),
			goqu.COALESCE(goqu.C("enable_missed_booking_alerts"), defaults.EnableMissedBookingAlerts).As("enable_missed_booking_alerts"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build alert settings query", err)
	}

	var settings entities.AlertSettings
	err = a.dbx.GetContext(ctx, &settings, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("alert settings not configured")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get alert settings", err)
	}

	return &settings, nil
}
