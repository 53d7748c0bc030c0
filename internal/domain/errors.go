package domain

import "errors"

var (
	// ErrUnauthorized is returned when the caller lacks the required role
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCollectionFrozen is returned when a frozen collection rejects config or inventory changes
	ErrCollectionFrozen = errors.New("collection is frozen")

	// ErrCollectionPaused is returned when minting is attempted on a paused collection
	ErrCollectionPaused = errors.New("collection is paused")

	// ErrNothingToMint is returned when no inventory has been pre-allocated
	ErrNothingToMint = errors.New("nothing to mint")

	// ErrZeroAmount is returned when a mint requests zero items
	ErrZeroAmount = errors.New("mint amount is zero")

	// ErrBatchTooLarge is returned when a batch exceeds its ceiling
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrEmptyBatch is returned when a batch contains no items
	ErrEmptyBatch = errors.New("batch is empty")

	// ErrMintNotStarted is returned when minting is attempted before the window opens
	ErrMintNotStarted = errors.New("minting has not started yet")

	// ErrMintEnded is returned when minting is attempted after the window closes
	ErrMintEnded = errors.New("minting has ended")

	// ErrSupplyExhausted is returned when the supply cap has been reached
	ErrSupplyExhausted = errors.New("token supply exhausted")

	// ErrInventoryExhausted is returned when every pre-allocated item has been claimed
	ErrInventoryExhausted = errors.New("inventory exhausted")

	// ErrNoFundsSent is returned when a mint carries no payment
	ErrNoFundsSent = errors.New("no funds sent")

	// ErrTooManyDenominations is returned when more than one coin is attached
	ErrTooManyDenominations = errors.New("too many denominations")

	// ErrWrongDenom is returned when the attached coin has the wrong denom
	ErrWrongDenom = errors.New("wrong denom")

	// ErrInsufficientFunds is returned when the attached amount is below the price
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrIncorrectFunds is returned when the attached amount exceeds the exact price
	ErrIncorrectFunds = errors.New("incorrect funds")

	// ErrClaimed is returned when minting an item that has already been claimed
	ErrClaimed = errors.New("token already claimed")

	// ErrTokenNotFound is returned when an item does not exist in the ledger
	ErrTokenNotFound = errors.New("token not found")

	// ErrItemExists is returned when pre-allocating an id that is already stored
	ErrItemExists = errors.New("token already exists")

	// ErrAlreadyPledged is returned on a second pledge attempt for the same item
	ErrAlreadyPledged = errors.New("token already pledged")

	// ErrNotPledged is returned when burning an item with no pledge entry
	ErrNotPledged = errors.New("token not pledged")

	// ErrExpired is returned when setting an approval that is already expired
	ErrExpired = errors.New("approval is expired")

	// ErrSameVersion is returned when migrating to the currently stored version
	ErrSameVersion = errors.New("migration version matches stored version")

	// ErrNoConfiguration is returned when template pre-allocation has no template
	ErrNoConfiguration = errors.New("no configuration")

	// ErrInvalidAddress is returned for malformed account addresses
	ErrInvalidAddress = errors.New("invalid address")

	// ErrAttributeMismatch is returned when a template row does not match the attribute schema
	ErrAttributeMismatch = errors.New("attribute count mismatch")
)

// Code returns the stable machine-readable code for a ledger error. Batch
// responses key per-item failures by these codes.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrCollectionFrozen):
		return "frozen"
	case errors.Is(err, ErrCollectionPaused):
		return "paused"
	case errors.Is(err, ErrNothingToMint):
		return "nothing_to_mint"
	case errors.Is(err, ErrZeroAmount):
		return "zero_amount"
	case errors.Is(err, ErrBatchTooLarge):
		return "batch_too_large"
	case errors.Is(err, ErrEmptyBatch):
		return "empty_batch"
	case errors.Is(err, ErrMintNotStarted):
		return "mint_not_started"
	case errors.Is(err, ErrMintEnded):
		return "mint_ended"
	case errors.Is(err, ErrSupplyExhausted):
		return "supply_exhausted"
	case errors.Is(err, ErrInventoryExhausted):
		return "inventory_exhausted"
	case errors.Is(err, ErrNoFundsSent):
		return "no_funds_sent"
	case errors.Is(err, ErrTooManyDenominations):
		return "too_many_denominations"
	case errors.Is(err, ErrWrongDenom):
		return "wrong_denom"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrIncorrectFunds):
		return "incorrect_funds"
	case errors.Is(err, ErrClaimed):
		return "claimed"
	case errors.Is(err, ErrTokenNotFound):
		return "not_found"
	case errors.Is(err, ErrItemExists):
		return "exists"
	case errors.Is(err, ErrAlreadyPledged):
		return "already_pledged"
	case errors.Is(err, ErrNotPledged):
		return "not_pledged"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrSameVersion):
		return "same_version"
	case errors.Is(err, ErrNoConfiguration):
		return "no_configuration"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrAttributeMismatch):
		return "attribute_mismatch"
	default:
		return "internal"
	}
}
