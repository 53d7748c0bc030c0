// Package messaging defines the broker-facing interfaces used by the event
// relay. Implementations live under internal/providers.
package messaging

import (
	"context"

	"github.com/lumenarts/mint-ledger/internal/domain"
)

// Publisher defines the interface for publishing ledger events to the message broker
type Publisher interface {
	// PublishEvent publishes one journal change to the broker
	PublishEvent(ctx context.Context, event *domain.LedgerEvent) error
	// Close closes the connection
	Close()
}
