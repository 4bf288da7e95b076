package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
)

// BookingCandidateScanner finds bookings that may need a lateness decision
type BookingCandidateScanner struct {
	repo repositories.BookingRepository
}

// NewBookingCandidateScanner creates a new candidate scanner
func NewBookingCandidateScanner(repo repositories.BookingRepository) *BookingCandidateScanner {
	return &BookingCandidateScanner{repo: repo}
}

// Scan returns the open bookings whose start time is before now. Rows that
// do not satisfy the candidate filters, and duplicate ids, are dropped.
func (s *BookingCandidateScanner) Scan(ctx context.Context, now time.Time) ([]*entities.BookingCandidate, error) {
	rows, err := s.repo.ListReconciliationCandidates(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	seen := make(map[string]struct{}, len(rows))
	candidates := make([]*entities.BookingCandidate, 0, len(rows))
	for _, c := range rows {
		if c == nil || !c.IsReconcilable(now) {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		candidates = append(candidates, c)
	}

	return candidates, nil
}
