package store

import (
	"context"
	"time"

	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/store/schema"
)

// Store defines the interface for ledger persistence. Every mutating method is
// one atomic unit: the multi-row operations (claim, burn, transfer, migrate)
// run inside a single database transaction so a failed item never leaves a
// half-applied mutation behind.
type Store interface {
	// CreateCollection installs the config singleton for a fresh deployment
	CreateCollection(ctx context.Context, state *domain.CollectionState) error
	// GetState loads the config singleton with its counters
	GetState(ctx context.Context) (*domain.CollectionState, error)
	// ReplaceConfig swaps the whole config record, keeping version and counters
	ReplaceConfig(ctx context.Context, cfg *domain.Config) error
	// SetFrozen persists the freeze switch, journaling the action. It never
	// touches the pause switch, so concurrent flag writers cannot undo each
	// other.
	SetFrozen(ctx context.Context, frozen bool, action domain.Action) error
	// SetPaused persists the pause switch, journaling the action
	SetPaused(ctx context.Context, paused bool, action domain.Action) error
	// Migrate installs a new version and config, optionally wiping all ledger state first
	Migrate(ctx context.Context, version string, cfg *domain.Config, clearState bool) error

	// StoreItems pre-allocates items owned by the creator, fail-fast in one
	// transaction, and returns the new inventory total
	StoreItems(ctx context.Context, creator domain.Address, items []*domain.Item) (uint64, error)
	// GetItem loads one item; (nil, nil) when absent
	GetItem(ctx context.Context, tokenNumber string) (*domain.Item, error)
	// GetItems loads a batch of items, silently skipping unknown ids
	GetItems(ctx context.Context, tokenNumbers []string) ([]*domain.Item, error)
	// ListItemsByOwner pages through a holder's items in token order
	ListItemsByOwner(ctx context.Context, owner domain.Address, limit, offset int) ([]*domain.Item, error)
	// ClaimItem reassigns a placeholder item from the creator to the buyer
	// and clears any approvals granted on the placeholder. Two claims racing
	// on the same id cannot both succeed.
	ClaimItem(ctx context.Context, tokenNumber string, creator, buyer domain.Address) error
	// TransferItem reassigns the owner and clears approvals
	TransferItem(ctx context.Context, tokenNumber string, recipient domain.Address) error
	// BurnItem removes the item, records the tombstone and burn accounting,
	// and decrements the mint counter
	BurnItem(ctx context.Context, tokenNumber string, caller domain.Address, role string) error

	// SetApproval grants a spender transfer rights over one item
	SetApproval(ctx context.Context, tokenNumber string, spender domain.Address, expires *time.Time) error
	// RemoveApproval revokes a spender's grant
	RemoveApproval(ctx context.Context, tokenNumber string, spender domain.Address) error
	// SetOperatorGrant delegates transfer rights over all of an owner's items
	SetOperatorGrant(ctx context.Context, owner, operator domain.Address, expires *time.Time) error
	// RemoveOperatorGrant revokes an operator delegation
	RemoveOperatorGrant(ctx context.Context, owner, operator domain.Address) error
	// GetOperatorGrants lists the delegations issued by an owner
	GetOperatorGrants(ctx context.Context, owner domain.Address) ([]domain.OperatorGrant, error)

	// PledgeItem marks an item burn-eligible; a second pledge fails
	PledgeItem(ctx context.Context, tokenNumber string, owner domain.Address) error
	// IsPledged reports whether a pledge entry exists for the id
	IsPledged(ctx context.Context, tokenNumber string) (bool, error)
	// PledgedBy lists the ids pledged by an address in pledge order
	PledgedBy(ctx context.Context, owner domain.Address) ([]string, error)

	// BurntAmount returns an address's burn counter
	BurntAmount(ctx context.Context, address domain.Address) (uint64, error)
	// BurntList returns the ids an address has burned, in burn order
	BurntList(ctx context.Context, address domain.Address) ([]string, error)
	// BurnedStatus resolves tombstone flags for a batch of ids
	BurnedStatus(ctx context.Context, tokenNumbers []string) ([]domain.BurnedEntry, error)

	// RecordPayout appends a settlement row for the payout address
	RecordPayout(ctx context.Context, recipient domain.Address, coin domain.Coin, reference string) error

	// GetChangesAfter pages the audit journal past a cursor
	GetChangesAfter(ctx context.Context, cursor int64, limit int) ([]*schema.ChangesJournal, error)
	// GetRelayCursor retrieves the last journal cursor published by the relay
	GetRelayCursor(ctx context.Context) (int64, error)
	// SetRelayCursor stores the last journal cursor published by the relay
	SetRelayCursor(ctx context.Context, cursor int64) error
}
