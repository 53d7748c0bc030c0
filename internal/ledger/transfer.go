package ledger

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lumenarts/mint-ledger/internal/authz"
	"github.com/lumenarts/mint-ledger/internal/batch"
	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/logger"
)

// TransferInput names one item movement in a transfer batch
type TransferInput struct {
	TokenNumber string         `json:"token_number"`
	Recipient   domain.Address `json:"recipient"`
}

// transferOne moves one item to a recipient if the caller is the owner, an
// approved spender or an operator of the owner
func (l *Ledger) transferOne(ctx context.Context, caller domain.Address, tokenNumber string, recipient domain.Address) error {
	if !recipient.Valid() {
		return domain.ErrInvalidAddress
	}

	item, err := l.store.GetItem(ctx, tokenNumber)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrTokenNotFound
	}

	grants, err := l.store.GetOperatorGrants(ctx, item.Owner)
	if err != nil {
		return err
	}
	if err := authz.AuthorizeSend(l.clock.Now(), item, grants, caller); err != nil {
		return err
	}

	return l.store.TransferItem(ctx, tokenNumber, recipient)
}

// Transfer moves one item to a recipient
func (l *Ledger) Transfer(ctx context.Context, caller domain.Address, tokenNumber string, recipient domain.Address) error {
	if err := l.transferOne(ctx, caller, tokenNumber, recipient); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "item transferred",
		zap.String("token_number", tokenNumber),
		zap.String("recipient", recipient.String()))
	return nil
}

// TransferBatch moves items in order, continuing past failures
func (l *Ledger) TransferBatch(ctx context.Context, caller domain.Address, transfers []TransferInput) (batch.Result, error) {
	if err := batch.ValidateSize(len(transfers), batch.DefaultCeiling); err != nil {
		return batch.Result{}, err
	}

	recipients := make(map[string]domain.Address, len(transfers))
	tokenNumbers := make([]string, 0, len(transfers))
	for _, transfer := range transfers {
		recipients[transfer.TokenNumber] = transfer.Recipient
		tokenNumbers = append(tokenNumbers, transfer.TokenNumber)
	}

	result := batch.Run(tokenNumbers, func(tokenNumber string) error {
		return l.transferOne(ctx, caller, tokenNumber, recipients[tokenNumber])
	})

	logger.InfoCtx(ctx, "transfer batch processed",
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// canApprove checks that the caller controls the item's approvals: the owner
// always does, an unexpired operator of the owner does too. Approved spenders
// may not grant further approvals.
func (l *Ledger) canApprove(ctx context.Context, caller domain.Address, item *domain.Item) error {
	if caller == item.Owner {
		return nil
	}

	grants, err := l.store.GetOperatorGrants(ctx, item.Owner)
	if err != nil {
		return err
	}
	now := l.clock.Now()
	for _, grant := range grants {
		if grant.Operator == caller && !grant.Expired(now) {
			return nil
		}
	}
	return domain.ErrUnauthorized
}

// Approve grants a spender transfer rights over one item
func (l *Ledger) Approve(ctx context.Context, caller domain.Address, tokenNumber string, spender domain.Address, expires *time.Time) error {
	if !spender.Valid() {
		return domain.ErrInvalidAddress
	}
	if expires != nil && !expires.After(l.clock.Now()) {
		return domain.ErrExpired
	}

	item, err := l.store.GetItem(ctx, tokenNumber)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrTokenNotFound
	}
	if err := l.canApprove(ctx, caller, item); err != nil {
		return err
	}

	return l.store.SetApproval(ctx, tokenNumber, spender, expires)
}

// Revoke removes a spender's grant over one item
func (l *Ledger) Revoke(ctx context.Context, caller domain.Address, tokenNumber string, spender domain.Address) error {
	item, err := l.store.GetItem(ctx, tokenNumber)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrTokenNotFound
	}
	if err := l.canApprove(ctx, caller, item); err != nil {
		return err
	}

	return l.store.RemoveApproval(ctx, tokenNumber, spender)
}

// ApproveAll delegates transfer rights over all of the caller's items
func (l *Ledger) ApproveAll(ctx context.Context, caller, operator domain.Address, expires *time.Time) error {
	if !operator.Valid() {
		return domain.ErrInvalidAddress
	}
	if expires != nil && !expires.After(l.clock.Now()) {
		return domain.ErrExpired
	}
	return l.store.SetOperatorGrant(ctx, caller, operator, expires)
}

// RevokeAll removes an operator delegation issued by the caller
func (l *Ledger) RevokeAll(ctx context.Context, caller, operator domain.Address) error {
	return l.store.RemoveOperatorGrant(ctx, caller, operator)
}
