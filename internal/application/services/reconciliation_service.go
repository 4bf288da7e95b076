package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/providers"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/observability"
)

// ReconciliationOptions tunes a reconciliation run
type ReconciliationOptions struct {
	Workers    int
	RunTimeout time.Duration
	LockTTL    time.Duration
	Location   *time.Location
}

// ReconciliationRepositories groups the storage ports the reconciler reads and writes
type ReconciliationRepositories struct {
	Bookings      repositories.BookingRepository
	VisitRecords  repositories.VisitRecordRepository
	Staff         repositories.StaffRepository
	AlertSettings repositories.AlertSettingsRepository
	Notifications repositories.NotificationRepository
	Recipients    repositories.RecipientRepository
}

// ReconciliationService sweeps open bookings for late starts and missed visits
type ReconciliationService struct {
	settings   *SettingsProvider
	scanner    *BookingCandidateScanner
	visits     repositories.VisitRecordRepository
	mutator    *StateMutator
	staff      *StaffMetricsUpdater
	dispatcher *NotificationDispatcher
	lock       providers.LockProvider
	events     providers.EventBus
	metrics    *observability.Metrics
	opts       ReconciliationOptions
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(repos ReconciliationRepositories, opts ReconciliationOptions) *ReconciliationService {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &ReconciliationService{
		settings:   NewSettingsProvider(repos.AlertSettings),
		scanner:    NewBookingCandidateScanner(repos.Bookings),
		visits:     repos.VisitRecords,
		mutator:    NewStateMutator(repos.Bookings),
		staff:      NewStaffMetricsUpdater(repos.Staff, repos.Bookings),
		dispatcher: NewNotificationDispatcher(repos.Notifications, NewRecipientResolver(repos.Recipients), opts.Location),
		opts:       opts,
	}
}

// SetLock enables the cross-process run lock
func (s *ReconciliationService) SetLock(lock providers.LockProvider) {
	s.lock = lock
}

// SetEventBus publishes a booking event after each claimed transition
func (s *ReconciliationService) SetEventBus(bus providers.EventBus) {
	s.events = bus
}

// SetMetrics enables run metrics
func (s *ReconciliationService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// candidateOutcome is what reconciling one booking contributed to the run
type candidateOutcome struct {
	lateStart    bool
	missed       bool
	staffUpdated bool
	failures     []entities.CandidateFailure
}

// Run performs one sweep as of now. Only a failure to fetch candidates is
// returned as an error; anything that goes wrong for an individual booking
// is recorded in the summary and the sweep continues.
func (s *ReconciliationService) Run(ctx context.Context, now time.Time) (*entities.RunSummary, error) {
	started := time.Now()
	summary := &entities.RunSummary{Timestamp: now.UTC()}

	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	ctx, span := observability.StartSpan(ctx, "ReconciliationService.Run")
	defer span.End()
	logger := observability.LoggerFromContext(ctx)

	if s.lock != nil {
		release, acquired, err := s.lock.TryAcquire(ctx, providers.ReconciliationLockKey, s.opts.LockTTL)
		switch {
		case err != nil:
			// Exactly-once claims keep overlapping runs safe; the lock only saves work.
			logger.Warn().Err(err).Msg("run lock unavailable, continuing without it")
		case !acquired:
			logger.Info().Msg("another reconciliation run holds the lock, skipping")
			summary.Skipped = true
			observability.SetSpanAttributes(span, attribute.Bool("reconcile.skipped", true))
			return summary, nil
		default:
			defer func() {
				releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
				defer cancel()
				if err := release(releaseCtx); err != nil {
					logger.Warn().Err(err).Msg("failed to release run lock")
				}
			}()
		}
	}

	settings := s.settings.Load(ctx)

	candidates, err := s.scanner.Scan(ctx, now)
	if err != nil {
		observability.RecordError(span, err)
		logger.Error().Err(err).Msg("failed to scan booking candidates")
		return nil, err
	}
	summary.Processed = len(candidates)

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	resolver := NewVisitStatusResolver(s.visits)
	resolver.Prefetch(ctx, ids)

	var mu sync.Mutex
	record := func(out candidateOutcome) {
		mu.Lock()
		defer mu.Unlock()
		if out.lateStart {
			summary.FirstAlertsCreated++
		}
		if out.missed {
			summary.MissedAlertsCreated++
		}
		if out.staffUpdated {
			summary.StaffUpdated++
		}
		summary.Failures = append(summary.Failures, out.failures...)
	}

	g := &errgroup.Group{}
	g.SetLimit(s.opts.Workers)
	for _, c := range candidates {
		if ctx.Err() != nil {
			record(candidateOutcome{failures: []entities.CandidateFailure{deadlineFailure(c.ID, ctx.Err())}})
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				record(candidateOutcome{failures: []entities.CandidateFailure{deadlineFailure(c.ID, ctx.Err())}})
				return nil
			}
			record(s.reconcileCandidate(ctx, resolver, settings, c, now))
			return nil
		})
	}
	_ = g.Wait()

	observability.SetSpanAttributes(span,
		attribute.Int("reconcile.processed", summary.Processed),
		attribute.Int("reconcile.late_start_alerts", summary.FirstAlertsCreated),
		attribute.Int("reconcile.missed_alerts", summary.MissedAlertsCreated),
		attribute.Int("reconcile.staff_updated", summary.StaffUpdated),
		attribute.Int("reconcile.failures", len(summary.Failures)),
	)
	observability.RecordRunMetrics(ctx, s.metrics,
		summary.Processed, summary.FirstAlertsCreated, summary.MissedAlertsCreated,
		summary.StaffUpdated, len(summary.Failures), time.Since(started),
	)

	logger.Info().
		Int("processed", summary.Processed).
		Int("first_alerts_created", summary.FirstAlertsCreated).
		Int("missed_alerts_created", summary.MissedAlertsCreated).
		Int("staff_updated", summary.StaffUpdated).
		Int("failures", len(summary.Failures)).
		Dur("duration", time.Since(started)).
		Msg("booking reconciliation complete")

	return summary, nil
}

// reconcileCandidate applies the alert policy to one booking. A failed claim
// or dispatch ends processing for that booking; a failed staff update is
// recorded and the missed alert still goes out.
func (s *ReconciliationService) reconcileCandidate(
	ctx context.Context,
	resolver *VisitStatusResolver,
	settings entities.AlertSettings,
	c *entities.BookingCandidate,
	now time.Time,
) candidateOutcome {
	ctx, span := observability.StartSpan(ctx, "ReconciliationService.reconcileCandidate")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.String("booking.id", c.ID))

	logger := observability.LoggerFromContext(ctx).With().Str("booking_id", c.ID).Logger()

	var out candidateOutcome
	fail := func(stage string, err error) candidateOutcome {
		observability.RecordError(span, err)
		logger.Error().Err(err).Str("stage", stage).Msg("failed to reconcile booking")
		out.failures = append(out.failures, entities.CandidateFailure{BookingID: c.ID, Stage: stage, Error: err.Error()})
		return out
	}

	started, err := resolver.Started(ctx, c.ID)
	if err != nil {
		return fail(entities.StageVisitLookup, err)
	}
	if started {
		return out
	}

	decision := EvaluateAlertPolicy(&c.Booking, settings, now)
	observability.SetSpanAttributes(span, attribute.String("booking.lateness_state", decision.State.String()))
	if decision.IsNoop() {
		return out
	}

	if decision.FireLateStart {
		claimed, err := s.mutator.MarkLateStart(ctx, c.ID, now, decision.MinutesLate)
		if err != nil {
			return fail(entities.StageLateStart, err)
		}
		if claimed {
			sent, err := s.dispatcher.DispatchLateStart(ctx, c, decision.MinutesLate, now)
			if err != nil {
				return fail(entities.StageLateStart, err)
			}
			out.lateStart = true
			s.publish(ctx, entities.NewBookingEvent(c, entities.BookingEventTypeLateStart, decision.MinutesLate, now))
			logger.Info().
				Int("minutes_late", decision.MinutesLate).
				Int("notifications", sent).
				Msg("late start recorded")
		}
	}

	if decision.FireMissed {
		claimed, err := s.mutator.MarkMissed(ctx, c.ID, now)
		if err != nil {
			return fail(entities.StageMissed, err)
		}
		if !claimed {
			return out
		}

		// The booking leaves the candidate set once claimed, so counters are
		// updated before anything that could end processing early.
		if c.StaffID != nil && *c.StaffID != "" {
			metrics, err := s.staff.RecordMissedVisit(ctx, *c.StaffID)
			if err != nil {
				fail(entities.StageStaffMetrics, fmt.Errorf("staff %s: %w", *c.StaffID, err))
			} else {
				out.staffUpdated = true
				logger.Debug().
					Str("staff_id", metrics.StaffID).
					Int("late_arrival_count", metrics.LateArrivalCount).
					Int("missed_booking_count", metrics.MissedBookingCount).
					Int("punctuality_score", metrics.PunctualityScore).
					Msg("staff punctuality updated")
			}
		}

		sent, err := s.dispatcher.DispatchMissed(ctx, c, decision.MinutesLate, now)
		if err != nil {
			return fail(entities.StageMissed, err)
		}
		out.missed = true
		s.publish(ctx, entities.NewBookingEvent(c, entities.BookingEventTypeMissed, decision.MinutesLate, now))
		logger.Info().Int("notifications", sent).Msg("booking marked missed")
	}

	return out
}

// publish announces a claimed transition. Notifications are already stored by
// then, so a publish failure is logged and not counted against the booking.
func (s *ReconciliationService) publish(ctx context.Context, event *entities.BookingEvent) {
	if s.events == nil {
		return
	}
	for _, channel := range []string{providers.EventChannelBookingLateness, providers.GetBranchChannel(event.BranchID)} {
		if err := s.events.Publish(ctx, channel, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).
				Str("booking_id", event.BookingID).
				Str("channel", channel).
				Msg("failed to publish booking event")
		}
	}
}

func deadlineFailure(bookingID string, err error) entities.CandidateFailure {
	msg := "run budget exhausted before booking was reached"
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		msg = err.Error()
	}
	return entities.CandidateFailure{BookingID: bookingID, Stage: entities.StageDeadline, Error: msg}
}
