package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/lumenarts/mint-ledger/internal/authz"
	"github.com/lumenarts/mint-ledger/internal/batch"
	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/logger"
)

// Pledge marks the caller's items as burn-eligible. Pledging is one-way and
// required before any burn. The caller must hold each item or be the creator;
// a failed item never stops the rest.
func (l *Ledger) Pledge(ctx context.Context, caller domain.Address, tokenNumbers []string) (batch.Result, error) {
	if err := batch.ValidateSize(len(tokenNumbers), batch.DefaultCeiling); err != nil {
		return batch.Result{}, err
	}

	state, err := l.store.GetState(ctx)
	if err != nil {
		return batch.Result{}, err
	}
	creator := state.Config.Creator

	result := batch.Run(tokenNumbers, func(tokenNumber string) error {
		item, err := l.store.GetItem(ctx, tokenNumber)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrTokenNotFound
		}
		if caller != item.Owner && caller != creator {
			return domain.ErrUnauthorized
		}
		return l.store.PledgeItem(ctx, tokenNumber, caller)
	})

	logger.InfoCtx(ctx, "pledge batch processed",
		zap.String("caller", caller.String()),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// burnOne burns a single item for the caller: the item must exist and be
// pledged, then the burn policy matrix decides the authorizing role
func (l *Ledger) burnOne(ctx context.Context, cfg *domain.Config, caller domain.Address, tokenNumber string) error {
	item, err := l.store.GetItem(ctx, tokenNumber)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrTokenNotFound
	}

	// A pledge is required regardless of who burns
	pledged, err := l.store.IsPledged(ctx, tokenNumber)
	if err != nil {
		return err
	}
	if !pledged {
		return domain.ErrNotPledged
	}

	role, err := authz.AuthorizeBurn(cfg.Burn, cfg.Creator, item.Owner, caller)
	if err != nil {
		return err
	}

	return l.store.BurnItem(ctx, tokenNumber, caller, string(role))
}

// Burn burns one pledged item under the collection's burn policy
func (l *Ledger) Burn(ctx context.Context, caller domain.Address, tokenNumber string) error {
	state, err := l.store.GetState(ctx)
	if err != nil {
		return err
	}

	if err := l.burnOne(ctx, &state.Config, caller, tokenNumber); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "item burned",
		zap.String("token_number", tokenNumber),
		zap.String("caller", caller.String()))
	return nil
}

// BurnBatch burns pledged items in order, continuing past failures
func (l *Ledger) BurnBatch(ctx context.Context, caller domain.Address, tokenNumbers []string) (batch.Result, error) {
	if err := batch.ValidateSize(len(tokenNumbers), batch.DefaultCeiling); err != nil {
		return batch.Result{}, err
	}

	state, err := l.store.GetState(ctx)
	if err != nil {
		return batch.Result{}, err
	}

	result := batch.Run(tokenNumbers, func(tokenNumber string) error {
		return l.burnOne(ctx, &state.Config, caller, tokenNumber)
	})

	logger.InfoCtx(ctx, "burn batch processed",
		zap.String("caller", caller.String()),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// RemoteBurnBatch runs the regular burn batch with a named owner in the
// caller seat. Only the creator may invoke it; each item still needs a pledge
// and the policy matrix decides for the owner, not the creator.
func (l *Ledger) RemoteBurnBatch(ctx context.Context, caller, owner domain.Address, tokenNumbers []string) (batch.Result, error) {
	state, err := l.store.GetState(ctx)
	if err != nil {
		return batch.Result{}, err
	}
	if caller != state.Config.Creator {
		return batch.Result{}, domain.ErrUnauthorized
	}
	if !owner.Valid() {
		return batch.Result{}, domain.ErrInvalidAddress
	}

	return l.BurnBatch(ctx, owner, tokenNumbers)
}
