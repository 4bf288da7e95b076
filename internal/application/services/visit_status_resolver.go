package services

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
)

const visitLookupBatchCapacity = 500

// VisitStatusResolver answers "has this booking's visit started?" by batching
// lookups into visit_records. Create one per run; results are cached for the
// lifetime of the resolver.
type VisitStatusResolver struct {
	loader *dataloader.Loader[string, bool]
}

// NewVisitStatusResolver creates a resolver backed by repo
func NewVisitStatusResolver(repo repositories.VisitRecordRepository) *VisitStatusResolver {
	batchFn := func(ctx context.Context, keys []string) []*dataloader.Result[bool] {
		records, err := repo.ListByBookingIDs(ctx, keys)
		if err != nil {
			err = fmt.Errorf("failed to look up visit records: %w", err)
			results := make([]*dataloader.Result[bool], len(keys))
			for i := range keys {
				results[i] = &dataloader.Result[bool]{Error: err}
			}
			return results
		}

		started := make(map[string]bool, len(records))
		for _, r := range records {
			if r.Started() {
				started[r.BookingID] = true
			}
		}

		results := make([]*dataloader.Result[bool], len(keys))
		for i, key := range keys {
			// No record, or a record without a start time, means not started.
			results[i] = &dataloader.Result[bool]{Data: started[key]}
		}
		return results
	}

	return &VisitStatusResolver{
		loader: dataloader.NewBatchedLoader(
			batchFn,
			dataloader.WithWait[string, bool](2*time.Millisecond),
			dataloader.WithBatchCapacity[string, bool](visitLookupBatchCapacity),
		),
	}
}

// Prefetch loads the start status of every id up front so that later
// Started calls are served from cache. Lookup errors surface per booking
// through Started.
func (r *VisitStatusResolver) Prefetch(ctx context.Context, bookingIDs []string) {
	if len(bookingIDs) == 0 {
		return
	}
	r.loader.LoadMany(ctx, bookingIDs)()
}

// Started reports whether a visit record with a start time exists for bookingID.
func (r *VisitStatusResolver) Started(ctx context.Context, bookingID string) (bool, error) {
	return r.loader.Load(ctx, bookingID)()
}
