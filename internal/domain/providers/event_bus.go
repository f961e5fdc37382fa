package providers

import (
	"context"

	"github.com/bookbridge/librental/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to catalog
// events. The write path publishes after every book-mutating transition; the
// read path subscribes to drop its cache instead of relying on a well-known
// callback.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.CatalogEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.CatalogEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelCatalogUpdates is the channel for all catalog mutations
const EventChannelCatalogUpdates = "catalog:updates"
