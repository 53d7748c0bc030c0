// Package ledger implements the collection engine: configuration lifecycle,
// inventory pre-allocation, mint admission and claiming, pledge-gated burning
// and item custody. All policy decisions are delegated to the pure admission
// and authz packages; this package sequences them against the store.
package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/lumenarts/mint-ledger/internal/adapter"
	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/logger"
	"github.com/lumenarts/mint-ledger/internal/store"
)

// Ledger is the collection engine bound to one deployment's store
type Ledger struct {
	store    store.Store
	treasury Treasury
	clock    adapter.Clock
}

// New creates a ledger engine
func New(s store.Store, treasury Treasury, clock adapter.Clock) *Ledger {
	return &Ledger{
		store:    s,
		treasury: treasury,
		clock:    clock,
	}
}

// validateConfig rejects configs that could never operate
func validateConfig(cfg *domain.Config) error {
	if !cfg.Creator.Valid() {
		return domain.ErrInvalidAddress
	}
	if !cfg.PayoutAddress.Valid() {
		return domain.ErrInvalidAddress
	}
	return nil
}

// Instantiate installs the collection for a fresh deployment
func (l *Ledger) Instantiate(ctx context.Context, cfg *domain.Config, version string) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	// A fresh collection starts with empty inventory and cleared switches
	cfg.InventoryTotal = 0
	cfg.Frozen = false
	cfg.Paused = false

	err := l.store.CreateCollection(ctx, &domain.CollectionState{
		Config:        *cfg,
		SchemaVersion: version,
	})
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "collection instantiated",
		zap.String("name", cfg.Name),
		zap.String("creator", cfg.Creator.String()),
		zap.String("version", version))
	return nil
}

// UpdateConfig replaces the collection configuration. Only the creator may
// call it and a frozen collection rejects it. Counters and switches are kept;
// they change only through their own operations.
func (l *Ledger) UpdateConfig(ctx context.Context, caller domain.Address, cfg *domain.Config) error {
	state, err := l.store.GetState(ctx)
	if err != nil {
		return err
	}
	if caller != state.Config.Creator {
		return domain.ErrUnauthorized
	}
	if state.Config.Frozen {
		return domain.ErrCollectionFrozen
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	cfg.InventoryTotal = state.Config.InventoryTotal
	cfg.Frozen = state.Config.Frozen
	cfg.Paused = state.Config.Paused

	if err := l.store.ReplaceConfig(ctx, cfg); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "collection config updated", zap.String("name", cfg.Name))
	return nil
}

// setFlag flips one kill switch on behalf of the creator. Each switch writes
// only its own column, so concurrent Freeze and Pause requests can never undo
// each other.
func (l *Ledger) setFlag(ctx context.Context, caller domain.Address, action domain.Action, write func(context.Context) error) error {
	state, err := l.store.GetState(ctx)
	if err != nil {
		return err
	}
	if caller != state.Config.Creator {
		return domain.ErrUnauthorized
	}

	if err := write(ctx); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "collection flag changed", zap.String("action", string(action)))
	return nil
}

// Freeze blocks config replacement and inventory pre-allocation
func (l *Ledger) Freeze(ctx context.Context, caller domain.Address) error {
	return l.setFlag(ctx, caller, domain.ActionFrozen, func(ctx context.Context) error {
		return l.store.SetFrozen(ctx, true, domain.ActionFrozen)
	})
}

// Unfreeze lifts the freeze switch
func (l *Ledger) Unfreeze(ctx context.Context, caller domain.Address) error {
	return l.setFlag(ctx, caller, domain.ActionUnfrozen, func(ctx context.Context) error {
		return l.store.SetFrozen(ctx, false, domain.ActionUnfrozen)
	})
}

// Pause blocks minting; the switch is orthogonal to Freeze
func (l *Ledger) Pause(ctx context.Context, caller domain.Address) error {
	return l.setFlag(ctx, caller, domain.ActionPaused, func(ctx context.Context) error {
		return l.store.SetPaused(ctx, true, domain.ActionPaused)
	})
}

// Unpause lifts the pause switch
func (l *Ledger) Unpause(ctx context.Context, caller domain.Address) error {
	return l.setFlag(ctx, caller, domain.ActionUnpaused, func(ctx context.Context) error {
		return l.store.SetPaused(ctx, false, domain.ActionUnpaused)
	})
}

// Migrate installs a new schema version, optionally replacing the config and
// wiping ledger state. Migrating to the installed version is rejected.
func (l *Ledger) Migrate(ctx context.Context, caller domain.Address, version string, cfg *domain.Config, clearState bool) error {
	state, err := l.store.GetState(ctx)
	if err != nil {
		return err
	}
	if caller != state.Config.Creator {
		return domain.ErrUnauthorized
	}
	if cfg != nil {
		if err := validateConfig(cfg); err != nil {
			return err
		}
	}

	if err := l.store.Migrate(ctx, version, cfg, clearState); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "collection migrated",
		zap.String("from", state.SchemaVersion),
		zap.String("to", version),
		zap.Bool("clear_state", clearState))
	return nil
}
