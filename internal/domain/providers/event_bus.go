package providers

import (
	"context"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
)

// EventBus publishes booking events for downstream consumers
type EventBus interface {
	// Publish publishes an event to all subscribers of channel
	Publish(ctx context.Context, channel string, event *entities.BookingEvent) error
}

// EventChannel constants for booking events
const (
	// EventChannelBookingLateness carries every late-start and missed transition
	EventChannelBookingLateness = "bookings:lateness"

	// EventChannelBranchPrefix is the prefix for branch-specific channels
	EventChannelBranchPrefix = "bookings:branch:"
)

// GetBranchChannel returns the channel name for a specific branch
func GetBranchChannel(branchID string) string {
	return EventChannelBranchPrefix + branchID
}
