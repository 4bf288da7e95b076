package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/clients/postgres"
	apperrors "github.com/rohanthuse/infinite-care-vue-sub018/pkg/errors"
)

// BookingAdapter implements the BookingRepository interface
type BookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// visitNotStarted guards both transitions against a check-in that landed
// after the visit lookup.
var visitNotStarted = goqu.L(
	`NOT EXISTS (SELECT 1 FROM "visit_records" AS "vr" WHERE "vr"."booking_id" = "bookings"."id" AND "vr"."visit_start_time" IS NOT NULL)`,
)

// bookingStillOpen repeats the candidate filter inside each claim so a booking
// cancelled or rescheduled after the scan is left untouched.
func bookingStillOpen() goqu.Expression {
	approved := string(entities.RequestStatusApproved)
	return goqu.And(
		goqu.C("status").In(statusValues(entities.ActiveBookingStatuses)),
		goqu.C("cancelled_at").IsNull(),
		goqu.Or(
			goqu.C("cancellation_request_status").IsNull(),
			goqu.C("cancellation_request_status").Neq(approved),
		),
		goqu.Or(
			goqu.C("reschedule_request_status").IsNull(),
			goqu.C("reschedule_request_status").Neq(approved),
		),
	)
}

// ListReconciliationCandidates returns bookings whose start has passed without being closed out
func (a *BookingAdapter) ListReconciliationCandidates(ctx context.Context, now time.Time) ([]*entities.BookingCandidate, error) {
	approved := string(entities.RequestStatusApproved)

	query, args, err := a.db.From(goqu.T("bookings").As("b")).
		LeftJoin(goqu.T("clients").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("b.client_id")))).
		LeftJoin(goqu.T("staff").As("s"), goqu.On(goqu.I("s.id").Eq(goqu.I("b.staff_id")))).
		LeftJoin(goqu.T("services").As("sv"), goqu.On(goqu.I("sv.id").Eq(goqu.I("b.service_id")))).
		Select(
			goqu.I("b.id"), goqu.I("b.organization_id"), goqu.I("b.branch_id"), goqu.I("b.client_id"),
			goqu.I("b.staff_id"), goqu.I("b.service_id"), goqu.I("b.start_time"), goqu.I("b.end_time"),
			goqu.I("b.status"), goqu.I("b.cancellation_request_status"), goqu.I("b.reschedule_request_status"),
			goqu.I("b.cancelled_at"), goqu.I("b.is_late_start"), goqu.I("b.late_start_notified_at"),
			goqu.I("b.late_start_minutes"), goqu.I("b.is_missed"), goqu.I("b.missed_notified_at"), goqu.I("b.notes"),
			goqu.I("c.first_name"), goqu.I("c.last_name"), goqu.I("c.address"),
			goqu.I("s.first_name"), goqu.I("s.last_name"), goqu.I("s.auth_user_id"),
			goqu.I("s.late_arrival_count"), goqu.I("s.missed_booking_count"),
			goqu.I("sv.title"),
		).
		Where(
			goqu.I("b.status").In(statusValues(entities.ActiveBookingStatuses)),
			goqu.I("b.start_time").Lt(now),
			goqu.I("b.cancelled_at").IsNull(),
			goqu.Or(
				goqu.I("b.cancellation_request_status").IsNull(),
				goqu.I("b.cancellation_request_status").Neq(approved),
			),
			goqu.Or(
				goqu.I("b.reschedule_request_status").IsNull(),
				goqu.I("b.reschedule_request_status").Neq(approved),
			),
		).
		Order(goqu.I("b.start_time").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build candidate query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list reconciliation candidates", err)
	}
	defer rows.Close()

	var candidates []*entities.BookingCandidate
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan booking candidate", err)
		}
		candidates = append(candidates, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate booking candidates", err)
	}

	return candidates, nil
}

// MarkLateStart records the late-start alert exactly once
func (a *BookingAdapter) MarkLateStart(ctx context.Context, bookingID string, notifiedAt time.Time, minutesLate int) (bool, error) {
	query, args, err := a.db.Update("bookings").
		Set(goqu.Record{
			"is_late_start":          true,
			"late_start_notified_at": notifiedAt,
			"late_start_minutes":     minutesLate,
			"updated_at":             notifiedAt,
		}).
		Where(
			goqu.Ex{"id": bookingID, "late_start_notified_at": nil},
			bookingStillOpen(),
			visitNotStarted,
		).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build late start update", err)
	}

	return a.execClaim(ctx, query, args, "failed to mark booking late")
}

// MarkMissed moves an active booking to missed exactly once
func (a *BookingAdapter) MarkMissed(ctx context.Context, bookingID string, notifiedAt time.Time, noteMarker string) (bool, error) {
	query, args, err := a.db.Update("bookings").
		Set(goqu.Record{
			"status":             entities.BookingStatusMissed,
			"is_missed":          true,
			"missed_notified_at": notifiedAt,
			"notes": goqu.L(
				`CASE WHEN COALESCE(TRIM("notes"), '') = '' THEN ? ELSE "notes" || ? END`,
				noteMarker, "\n"+noteMarker,
			),
			"updated_at": notifiedAt,
		}).
		Where(
			goqu.Ex{"id": bookingID, "missed_notified_at": nil},
			bookingStillOpen(),
			visitNotStarted,
		).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build missed update", err)
	}

	return a.execClaim(ctx, query, args, "failed to mark booking missed")
}

// CountForPunctuality counts the staff member's non-cancelled bookings
func (a *BookingAdapter) CountForPunctuality(ctx context.Context, staffID string) (int, error) {
	query, args, err := a.db.From("bookings").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{
			"staff_id": staffID,
			"status":   statusValues(entities.PunctualityBookingStatuses),
		}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build booking count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, apperrors.NewInternalError("failed to count staff bookings", err)
	}
	return total, nil
}

func (a *BookingAdapter) execClaim(ctx context.Context, query string, args []interface{}, failMsg string) (bool, error) {
	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return false, apperrors.NewInternalError(failMsg, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.NewInternalError("failed to get rows affected", err)
	}

	return rowsAffected == 1, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCandidate(row rowScanner) (*entities.BookingCandidate, error) {
	c := &entities.BookingCandidate{}

	var (
		organizationID, staffID, serviceID, notes          sql.NullString
		cancellationStatus, rescheduleStatus               sql.NullString
		cancelledAt, lateStartNotifiedAt, missedNotifiedAt sql.NullTime
		isLateStart, isMissed                              sql.NullBool
		lateStartMinutes                                   sql.NullInt64
		clientFirst, clientLast, clientAddress             sql.NullString
		staffFirst, staffLast, staffAuthID                 sql.NullString
		staffLateCount, staffMissedCount                   sql.NullInt64
		serviceTitle                                       sql.NullString
	)

	err := row.Scan(
		&c.ID, &organizationID, &c.BranchID, &c.ClientID,
		&staffID, &serviceID, &c.StartTime, &c.EndTime,
		&c.Status, &cancellationStatus, &rescheduleStatus,
		&cancelledAt, &isLateStart, &lateStartNotifiedAt,
		&lateStartMinutes, &isMissed, &missedNotifiedAt, &notes,
		&clientFirst, &clientLast, &clientAddress,
		&staffFirst, &staffLast, &staffAuthID,
		&staffLateCount, &staffMissedCount,
		&serviceTitle,
	)
	if err != nil {
		return nil, err
	}

	c.OrganizationID = organizationID.String
	c.Notes = notes.String
	c.IsLateStart = isLateStart.Bool
	c.IsMissed = isMissed.Bool
	c.LateStartMinutes = int(lateStartMinutes.Int64)
	c.CancellationRequestStatus = nullRequestStatus(cancellationStatus)
	c.RescheduleRequestStatus = nullRequestStatus(rescheduleStatus)
	c.CancelledAt = nullTime(cancelledAt)
	c.LateStartNotifiedAt = nullTime(lateStartNotifiedAt)
	c.MissedNotifiedAt = nullTime(missedNotifiedAt)

	c.Client = entities.ClientSummary{
		FirstName: clientFirst.String,
		LastName:  clientLast.String,
		Address:   clientAddress.String,
	}

	if staffID.Valid {
		c.StaffID = &staffID.String
		c.Staff = &entities.StaffSummary{
			ID:                 staffID.String,
			FirstName:          staffFirst.String,
			LastName:           staffLast.String,
			AuthUserID:         nullString(staffAuthID),
			LateArrivalCount:   int(staffLateCount.Int64),
			MissedBookingCount: int(staffMissedCount.Int64),
		}
	}

	if serviceID.Valid {
		c.ServiceID = &serviceID.String
		c.Service = &entities.ServiceSummary{Title: serviceTitle.String}
	}

	return c, nil
}

func statusValues(statuses []entities.BookingStatus) []string {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return values
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullRequestStatus(ns sql.NullString) *entities.RequestStatus {
	if !ns.Valid {
		return nil
	}
	s := entities.RequestStatus(ns.String)
	return &s
}
