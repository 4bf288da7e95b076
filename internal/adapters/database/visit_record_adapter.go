package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/clients/postgres"
	apperrors "github.com/rohanthuse/infinite-care-vue-sub018/pkg/errors"
)

// VisitRecordAdapter implements the VisitRecordRepository interface
type VisitRecordAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewVisitRecordAdapter creates a new visit record adapter
func NewVisitRecordAdapter(client *postgres.Client) repositories.VisitRecordRepository {
	return &VisitRecordAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListByBookingIDs retrieves the visit records for a batch of bookings
func (a *VisitRecordAdapter) ListByBookingIDs(ctx context.Context, bookingIDs []string) ([]*entities.VisitRecord, error) {
	if len(bookingIDs) == 0 {
		return nil, nil
	}

	query, args, err := a.db.From("visit_records").
		Select("id", "booking_id", "visit_start_time").
		Where(goqu.Ex{"booking_id": bookingIDs}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build visit record query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list visit records", err)
	}
	defer rows.Close()

	var records []*entities.VisitRecord
	for rows.Next() {
		record := &entities.VisitRecord{}
		var startedAt sql.NullTime
		if err := rows.Scan(&record.ID, &record.BookingID, &startedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan visit record", err)
		}
		record.VisitStartTime = nullTime(startedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate visit records", err)
	}

	return records, nil
}
