package services_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/application/services"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	apperrors "github.com/rohanthuse/infinite-care-vue-sub018/pkg/errors"
)

// memStore is an in-memory stand-in for every repository the reconciler
// uses. Its conditional writes mirror the SQL adapters so concurrent runs
// behave the way they would against Postgres.
type memStore struct {
	mu sync.Mutex

	bookings      map[string]*entities.BookingCandidate
	visits        map[string]*entities.VisitRecord
	staff         map[string]*entities.StaffMetrics
	settings      *entities.AlertSettings
	notifications []*entities.Notification
	superAdmins   []string
	branchAdmins  map[string][]string

	scanErr         error
	visitErr        error
	notificationErr error

	// afterScan runs under the lock once candidates have been copied out,
	// standing in for writes that land between the scan and the claims.
	afterScan func(bookings map[string]*entities.BookingCandidate)
}

func newMemStore() *memStore {
	return &memStore{
		bookings:     make(map[string]*entities.BookingCandidate),
		visits:       make(map[string]*entities.VisitRecord),
		staff:        make(map[string]*entities.StaffMetrics),
		branchAdmins: make(map[string][]string),
	}
}

func (s *memStore) repositories() services.ReconciliationRepositories {
	return services.ReconciliationRepositories{
		Bookings:      s,
		VisitRecords:  s,
		Staff:         s,
		AlertSettings: s,
		Notifications: s,
		Recipients:    s,
	}
}

func (s *memStore) addBooking(c *entities.BookingCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[c.ID] = c
}

func (s *memStore) addStaff(m entities.StaffMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff[m.StaffID] = &m
}

func (s *memStore) startVisit(bookingID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits[bookingID] = &entities.VisitRecord{ID: "visit-" + bookingID, BookingID: bookingID, VisitStartTime: &at}
}

func (s *memStore) booking(id string) entities.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id].Booking
}

func (s *memStore) staffMetrics(id string) entities.StaffMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.staff[id]
}

func (s *memStore) sentNotifications() []*entities.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entities.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func (s *memStore) notificationsOfType(t entities.NotificationType) []*entities.Notification {
	var out []*entities.Notification
	for _, n := range s.sentNotifications() {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func (s *memStore) visitStarted(bookingID string) bool {
	v, ok := s.visits[bookingID]
	return ok && v.Started()
}

// BookingRepository

func (s *memStore) ListReconciliationCandidates(ctx context.Context, now time.Time) ([]*entities.BookingCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanErr != nil {
		return nil, s.scanErr
	}

	var out []*entities.BookingCandidate
	for _, c := range s.bookings {
		if !c.IsReconcilable(now) {
			continue
		}
		cp := *c
		if c.Staff != nil {
			staff := *c.Staff
			cp.Staff = &staff
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if s.afterScan != nil {
		s.afterScan(s.bookings)
	}
	return out, nil
}

func (s *memStore) MarkLateStart(ctx context.Context, bookingID string, notifiedAt time.Time, minutesLate int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || !b.IsReconcilable(notifiedAt) || b.LateStartNotifiedAt != nil || s.visitStarted(bookingID) {
		return false, nil
	}
	at := notifiedAt
	b.IsLateStart = true
	b.LateStartNotifiedAt = &at
	b.LateStartMinutes = minutesLate
	return true, nil
}

func (s *memStore) MarkMissed(ctx context.Context, bookingID string, notifiedAt time.Time, noteMarker string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || !b.IsReconcilable(notifiedAt) || b.MissedNotifiedAt != nil || s.visitStarted(bookingID) {
		return false, nil
	}
	at := notifiedAt
	b.Status = entities.BookingStatusMissed
	b.IsMissed = true
	b.MissedNotifiedAt = &at
	b.Notes = appendNote(b.Notes, noteMarker)
	return true, nil
}

// appendNote matches the CASE expression BookingAdapter.MarkMissed runs in SQL.
func appendNote(existing, line string) string {
	if strings.TrimSpace(existing) == "" {
		return line
	}
	return existing + "\n" + line
}

func (s *memStore) CountForPunctuality(ctx context.Context, staffID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, b := range s.bookings {
		if b.StaffID == nil || *b.StaffID != staffID {
			continue
		}
		for _, st := range entities.PunctualityBookingStatuses {
			if b.Status == st {
				total++
				break
			}
		}
	}
	return total, nil
}

// VisitRecordRepository

func (s *memStore) ListByBookingIDs(ctx context.Context, bookingIDs []string) ([]*entities.VisitRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visitErr != nil {
		return nil, s.visitErr
	}
	var out []*entities.VisitRecord
	for _, id := range bookingIDs {
		if v, ok := s.visits[id]; ok {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

// StaffRepository

func (s *memStore) GetMetrics(ctx context.Context, staffID string) (*entities.StaffMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.staff[staffID]
	if !ok {
		return nil, apperrors.NewNotFoundError("staff not found")
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) CompareAndSwapMetrics(ctx context.Context, prev, next entities.StaffMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.staff[prev.StaffID]
	if !ok {
		return apperrors.NewNotFoundError("staff not found")
	}
	if m.LateArrivalCount != prev.LateArrivalCount || m.MissedBookingCount != prev.MissedBookingCount {
		return apperrors.NewConflictError("staff metrics changed concurrently")
	}
	*m = next
	return nil
}

// AlertSettingsRepository

func (s *memStore) Get(ctx context.Context) (*entities.AlertSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return nil, apperrors.NewNotFoundError("alert settings not found")
	}
	cp := *s.settings
	return &cp, nil
}

// NotificationRepository

func (s *memStore) CreateBatch(ctx context.Context, notifications []*entities.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notificationErr != nil {
		return s.notificationErr
	}
	s.notifications = append(s.notifications, notifications...)
	return nil
}

// RecipientRepository

func (s *memStore) ListSuperAdminUserIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.superAdmins...), nil
}

func (s *memStore) ListBranchAdminUserIDs(ctx context.Context, branchID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.branchAdmins[branchID]...), nil
}
