package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lumenarts/mint-ledger/internal/admission"
	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/logger"
)

// claimNext walks candidate ids from `candidate` upward until one claim
// succeeds. Already-claimed and burned ids are skipped; the claim itself is
// the atomic reservation, so concurrent minters racing on the same candidate
// simply advance past each other.
func (l *Ledger) claimNext(ctx context.Context, state *domain.CollectionState, candidate uint64, buyer domain.Address) (string, uint64, error) {
	creator := state.Config.Creator
	for candidate < state.Config.InventoryTotal {
		tokenNumber := domain.TokenNumber(candidate)
		err := l.store.ClaimItem(ctx, tokenNumber, creator, buyer)
		if errors.Is(err, domain.ErrClaimed) || errors.Is(err, domain.ErrTokenNotFound) {
			candidate++
			continue
		}
		if err != nil {
			return "", candidate, err
		}
		return tokenNumber, candidate + 1, nil
	}
	return "", candidate, domain.ErrInventoryExhausted
}

// Mint claims the next available item for the caller against exact payment
func (l *Ledger) Mint(ctx context.Context, caller domain.Address, funds domain.Funds) (string, error) {
	tokenNumbers, err := l.MintBatch(ctx, caller, 1, funds)
	if err != nil {
		return "", err
	}
	return tokenNumbers[0], nil
}

// MintBatch claims up to `amount` items for the caller. Payment must be exact
// for the requested amount; when inventory runs out mid-batch the caller keeps
// what was claimed and the payout covers only the claimed items. Overpayment
// for unclaimed items is not refunded.
func (l *Ledger) MintBatch(ctx context.Context, caller domain.Address, amount uint64, funds domain.Funds) ([]string, error) {
	state, err := l.store.GetState(ctx)
	if err != nil {
		return nil, err
	}
	cfg := &state.Config

	candidate, err := admission.EvaluateMint(state.MintedCount, l.clock.Now(), cfg, amount, caller)
	if err != nil {
		return nil, err
	}
	if _, err := admission.EvaluatePayment(cfg, funds, amount); err != nil {
		return nil, err
	}

	tokenNumbers := make([]string, 0, amount)
	minted := state.MintedCount
	for uint64(len(tokenNumbers)) < amount && minted < cfg.SupplyCap {
		var tokenNumber string
		tokenNumber, candidate, err = l.claimNext(ctx, state, candidate, caller)
		if errors.Is(err, domain.ErrInventoryExhausted) {
			break
		}
		if err != nil {
			return nil, err
		}
		tokenNumbers = append(tokenNumbers, tokenNumber)
		minted++
	}

	if len(tokenNumbers) == 0 {
		return nil, domain.ErrInventoryExhausted
	}

	proceeds := domain.Coin{
		Denom:  cfg.Payment.Denom,
		Amount: cfg.Payment.Amount * uint64(len(tokenNumbers)),
	}
	reference := fmt.Sprintf("mint:%s", strings.Join(tokenNumbers, ","))
	if err := l.treasury.Settle(ctx, cfg.PayoutAddress, proceeds, reference); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "items minted",
		zap.String("buyer", caller.String()),
		zap.Strings("token_numbers", tokenNumbers),
		zap.Uint64("proceeds", proceeds.Amount))
	return tokenNumbers, nil
}

// RemoteMintBatch runs the regular paid mint for a named owner. Only the
// creator may call it; the owner takes the buyer seat, so admission, window
// and payment checks all apply exactly as in a direct mint.
func (l *Ledger) RemoteMintBatch(ctx context.Context, caller, owner domain.Address, amount uint64, funds domain.Funds) ([]string, error) {
	state, err := l.store.GetState(ctx)
	if err != nil {
		return nil, err
	}
	if caller != state.Config.Creator {
		return nil, domain.ErrUnauthorized
	}
	if !owner.Valid() {
		return nil, domain.ErrInvalidAddress
	}

	tokenNumbers, err := l.MintBatch(ctx, owner, amount, funds)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "remote mint batch processed",
		zap.String("owner", owner.String()),
		zap.Strings("token_numbers", tokenNumbers))
	return tokenNumbers, nil
}
