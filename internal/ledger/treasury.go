package ledger

import (
	"context"

	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/store"
)

// Treasury settles mint proceeds to the configured payout address
type Treasury interface {
	// Settle transfers a coin to the recipient, tagged with the operation
	// that produced it
	Settle(ctx context.Context, recipient domain.Address, coin domain.Coin, reference string) error
}

// storeTreasury records settlements in the payout ledger; actual disbursement
// happens out of band against those rows
type storeTreasury struct {
	store store.Store
}

// NewStoreTreasury creates a treasury backed by the store's payout ledger
func NewStoreTreasury(s store.Store) Treasury {
	return &storeTreasury{store: s}
}

func (t *storeTreasury) Settle(ctx context.Context, recipient domain.Address, coin domain.Coin, reference string) error {
	return t.store.RecordPayout(ctx, recipient, coin, reference)
}
