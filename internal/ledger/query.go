package ledger

import (
	"context"

	"github.com/lumenarts/mint-ledger/internal/batch"
	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/store/schema"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// clampPageSize normalizes a caller-supplied page size
func clampPageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// GetState returns the collection configuration with its counters
func (l *Ledger) GetState(ctx context.Context) (*domain.CollectionState, error) {
	return l.store.GetState(ctx)
}

// GetItem returns one item or ErrTokenNotFound
func (l *Ledger) GetItem(ctx context.Context, tokenNumber string) (*domain.Item, error) {
	item, err := l.store.GetItem(ctx, tokenNumber)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrTokenNotFound
	}
	return item, nil
}

// GetItems resolves a bounded batch of ids, skipping unknown ones
func (l *Ledger) GetItems(ctx context.Context, tokenNumbers []string) ([]*domain.Item, error) {
	if err := batch.ValidateSize(len(tokenNumbers), batch.DefaultCeiling); err != nil {
		return nil, err
	}
	return l.store.GetItems(ctx, tokenNumbers)
}

// ListItemsByOwner pages a holder's items in token order
func (l *Ledger) ListItemsByOwner(ctx context.Context, owner domain.Address, limit, offset int) ([]*domain.Item, error) {
	if offset < 0 {
		offset = 0
	}
	return l.store.ListItemsByOwner(ctx, owner, clampPageSize(limit), offset)
}

// PledgedBy lists the ids an address has pledged, in pledge order
func (l *Ledger) PledgedBy(ctx context.Context, owner domain.Address) ([]string, error) {
	return l.store.PledgedBy(ctx, owner)
}

// IsPledged reports whether an item has been pledged
func (l *Ledger) IsPledged(ctx context.Context, tokenNumber string) (bool, error) {
	return l.store.IsPledged(ctx, tokenNumber)
}

// BurntAmount returns an address's burn counter
func (l *Ledger) BurntAmount(ctx context.Context, address domain.Address) (uint64, error) {
	return l.store.BurntAmount(ctx, address)
}

// BurntList returns the ids an address has burned, in burn order
func (l *Ledger) BurntList(ctx context.Context, address domain.Address) ([]string, error) {
	return l.store.BurntList(ctx, address)
}

// BurnedStatus resolves tombstone flags for a bounded batch of ids
func (l *Ledger) BurnedStatus(ctx context.Context, tokenNumbers []string) ([]domain.BurnedEntry, error) {
	if err := batch.ValidateSize(len(tokenNumbers), batch.DefaultCeiling); err != nil {
		return nil, err
	}
	return l.store.BurnedStatus(ctx, tokenNumbers)
}

// GetChanges pages the audit journal past a cursor
func (l *Ledger) GetChanges(ctx context.Context, cursor int64, limit int) ([]*schema.ChangesJournal, error) {
	return l.store.GetChangesAfter(ctx, cursor, clampPageSize(limit))
}
