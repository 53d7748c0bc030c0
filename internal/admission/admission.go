// Package admission holds the pure decision functions gating mint calls:
// whether a mint may proceed at all, and whether the attached payment is
// acceptable. Nothing here touches storage; callers load the collection state,
// evaluate, then mutate.
package admission

import (
	"math"
	"time"

	"github.com/lumenarts/mint-ledger/internal/domain"
)

// EvaluateMint decides whether a mint of `requested` items may proceed and
// returns the next candidate token id. The checks run in a fixed order and
// short-circuit on the first failure. The returned id is a candidate only;
// reservation happens atomically inside the claim.
func EvaluateMint(minted uint64, now time.Time, cfg *domain.Config, requested uint64, caller domain.Address) (uint64, error) {
	if cfg.Frozen {
		return 0, domain.ErrCollectionFrozen
	}

	if cfg.Paused {
		return 0, domain.ErrCollectionPaused
	}

	if cfg.InventoryTotal == 0 {
		return 0, domain.ErrNothingToMint
	}

	if requested == 0 {
		return 0, domain.ErrZeroAmount
	}

	if requested > cfg.MaxMintBatch() {
		return 0, domain.ErrBatchTooLarge
	}

	if cfg.MintWindow.Start != nil && now.Before(*cfg.MintWindow.Start) {
		return 0, domain.ErrMintNotStarted
	}

	if cfg.MintWindow.End != nil && now.After(*cfg.MintWindow.End) {
		return 0, domain.ErrMintEnded
	}

	if minted == cfg.SupplyCap {
		return 0, domain.ErrSupplyExhausted
	}

	if minted == cfg.InventoryTotal {
		return 0, domain.ErrInventoryExhausted
	}

	// The creator may never become an item owner through minting.
	if caller == cfg.Creator {
		return 0, domain.ErrUnauthorized
	}

	return minted, nil
}

// EvaluatePayment validates the funds attached to a mint of `unitAmount`
// items. Exactly one coin of the configured denom must be attached and its
// amount must equal unit price times unitAmount; overpayment is rejected, not
// refunded.
func EvaluatePayment(cfg *domain.Config, funds domain.Funds, unitAmount uint64) (domain.Coin, error) {
	if len(funds) == 0 {
		return domain.Coin{}, domain.ErrNoFundsSent
	}

	if len(funds) > 1 {
		return domain.Coin{}, domain.ErrTooManyDenominations
	}

	coin := funds[0]
	if coin.Denom != cfg.Payment.Denom {
		return domain.Coin{}, domain.ErrWrongDenom
	}

	// A wrapped total would let a tiny payment validate a huge batch
	if cfg.Payment.Amount != 0 && unitAmount > math.MaxUint64/cfg.Payment.Amount {
		return domain.Coin{}, domain.ErrIncorrectFunds
	}
	total := cfg.Payment.Amount * unitAmount
	if coin.Amount < total {
		return domain.Coin{}, domain.ErrInsufficientFunds
	}
	if coin.Amount > total {
		return domain.Coin{}, domain.ErrIncorrectFunds
	}

	return coin, nil
}
