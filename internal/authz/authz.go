// Package authz holds the pure role/policy decision functions: who may burn an
// item under the collection's burn policy, and who may move an item given its
// approvals and the owner's operator grants.
package authz

import (
	"time"

	"github.com/lumenarts/mint-ledger/internal/domain"
)

// BurnRole names the policy path that authorized a burn
type BurnRole string

const (
	// BurnRoleOwner is a holder burning an item it owns
	BurnRoleOwner BurnRole = "owner_burn"
	// BurnRoleCreator is the creator burning an item held by someone else
	BurnRoleCreator BurnRole = "creator_burn"
)

// AuthorizeBurn decides whether caller may burn an item under the given
// policy. The owner path wins when both policy switches apply. The creator can
// never burn through the owner path, even for items it still holds as
// inventory placeholders.
func AuthorizeBurn(policy domain.BurnPolicy, creator, owner, caller domain.Address) (BurnRole, error) {
	if caller == owner {
		if owner == creator {
			return "", domain.ErrUnauthorized
		}
		if policy.OwnerCanBurn {
			return BurnRoleOwner, nil
		}
		return "", domain.ErrUnauthorized
	}

	if caller == creator && owner != creator && policy.CreatorCanBurnOwned {
		return BurnRoleCreator, nil
	}

	return "", domain.ErrUnauthorized
}

// AuthorizeSend decides whether caller may move the item: the owner always
// may, otherwise an unexpired per-item approval or an unexpired operator grant
// from the owner is required.
func AuthorizeSend(now time.Time, item *domain.Item, grants []domain.OperatorGrant, caller domain.Address) error {
	if caller == item.Owner {
		return nil
	}

	for _, approval := range item.Approvals {
		if approval.Spender == caller && !approval.Expired(now) {
			return nil
		}
	}

	for _, grant := range grants {
		if grant.Owner == item.Owner && grant.Operator == caller && !grant.Expired(now) {
			return nil
		}
	}

	return domain.ErrUnauthorized
}
