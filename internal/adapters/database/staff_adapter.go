package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/clients/postgres"
	apperrors "github.com/rohanthuse/infinite-care-vue-sub018/pkg/errors"
)

// StaffAdapter implements the StaffRepository interface
type StaffAdapter struct {
	client *postgres.Client
	dbx    *sqlx.DB
	db     *goqu.Database
}

// NewStaffAdapter creates a new staff adapter
func NewStaffAdapter(client *postgres.Client) repositories.StaffRepository {
	return &StaffAdapter{
		client: client,
		dbx:    client.DBX(),
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetMetrics retrieves a staff member's punctuality counters
func (a *StaffAdapter) GetMetrics(ctx context.Context, staffID string) (*entities.StaffMetrics, error) {
	query, args, err := a.db.From("staff").
		Select(
			goqu.C("id"),
			goqu.COALESCE(goqu.C("late_arrival_count"), 0).As("late_arrival_count"),
			goqu.COALESCE(goqu.C("missed_booking_count"), 0).As("missed_booking_count"),
			goqu.COALESCE(goqu.C("punctuality_score"), 100).As("punctuality_score"),
		).
		Where(goqu.Ex{"id": staffID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build staff metrics query", err)
	}

	var metrics entities.StaffMetrics
	err = a.dbx.GetContext(ctx, &metrics, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("staff with id %s not found", staffID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get staff metrics", err)
	}

	return &metrics, nil
}

// CompareAndSwapMetrics writes next only if the counters still match prev
func (a *StaffAdapter) CompareAndSwapMetrics(ctx context.Context, prev, next entities.StaffMetrics) error {
	query, args, err := a.db.Update("staff").
		Set(goqu.Record{
			"late_arrival_count":   next.LateArrivalCount,
			"missed_booking_count": next.MissedBookingCount,
			"punctuality_score":    next.PunctualityScore,
			"updated_at":           time.Now().UTC(),
		}).
		Where(
			goqu.C("id").Eq(prev.StaffID),
			goqu.COALESCE(goqu.C("late_arrival_count"), 0).Eq(prev.LateArrivalCount),
			goqu.COALESCE(goqu.C("missed_booking_count"), 0).Eq(prev.MissedBookingCount),
		).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build staff metrics update", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update staff metrics", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("staff %s metrics changed concurrently", prev.StaffID))
	}

	return nil
}
