package authz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenarts/mint-ledger/internal/domain"
)

const (
	creator  = domain.Address("ledger1creator00000000")
	holder   = domain.Address("ledger1holder000000000")
	stranger = domain.Address("ledger1stranger0000000")
)

// TestAuthorizeBurnMatrix walks every combination of the two policy switches
// against every caller role.
func TestAuthorizeBurnMatrix(t *testing.T) {
	type call struct {
		owner  domain.Address
		caller domain.Address
	}

	ownerBurnsOwn := call{owner: holder, caller: holder}
	creatorBurnsOwn := call{owner: creator, caller: creator}
	creatorBurnsOther := call{owner: holder, caller: creator}
	strangerBurns := call{owner: holder, caller: stranger}

	tests := []struct {
		name     string
		policy   domain.BurnPolicy
		call     call
		wantRole BurnRole
		wantErr  bool
	}{
		// both switches off
		{name: "all off, owner", policy: domain.BurnPolicy{}, call: ownerBurnsOwn, wantErr: true},
		{name: "all off, creator self", policy: domain.BurnPolicy{}, call: creatorBurnsOwn, wantErr: true},
		{name: "all off, creator other", policy: domain.BurnPolicy{}, call: creatorBurnsOther, wantErr: true},
		{name: "all off, stranger", policy: domain.BurnPolicy{}, call: strangerBurns, wantErr: true},

		// owner burn only
		{name: "owner burn, owner", policy: domain.BurnPolicy{OwnerCanBurn: true}, call: ownerBurnsOwn, wantRole: BurnRoleOwner},
		{name: "owner burn, creator self", policy: domain.BurnPolicy{OwnerCanBurn: true}, call: creatorBurnsOwn, wantErr: true},
		{name: "owner burn, creator other", policy: domain.BurnPolicy{OwnerCanBurn: true}, call: creatorBurnsOther, wantErr: true},
		{name: "owner burn, stranger", policy: domain.BurnPolicy{OwnerCanBurn: true}, call: strangerBurns, wantErr: true},

		// creator burn only
		{name: "creator burn, owner", policy: domain.BurnPolicy{CreatorCanBurnOwned: true}, call: ownerBurnsOwn, wantErr: true},
		{name: "creator burn, creator self", policy: domain.BurnPolicy{CreatorCanBurnOwned: true}, call: creatorBurnsOwn, wantErr: true},
		{name: "creator burn, creator other", policy: domain.BurnPolicy{CreatorCanBurnOwned: true}, call: creatorBurnsOther, wantRole: BurnRoleCreator},
		{name: "creator burn, stranger", policy: domain.BurnPolicy{CreatorCanBurnOwned: true}, call: strangerBurns, wantErr: true},

		// both switches on: owner path wins for the owner
		{name: "both, owner", policy: domain.BurnPolicy{OwnerCanBurn: true, CreatorCanBurnOwned: true}, call: ownerBurnsOwn, wantRole: BurnRoleOwner},
		{name: "both, creator self", policy: domain.BurnPolicy{OwnerCanBurn: true, CreatorCanBurnOwned: true}, call: creatorBurnsOwn, wantErr: true},
		{name: "both, creator other", policy: domain.BurnPolicy{OwnerCanBurn: true, CreatorCanBurnOwned: true}, call: creatorBurnsOther, wantRole: BurnRoleCreator},
		{name: "both, stranger", policy: domain.BurnPolicy{OwnerCanBurn: true, CreatorCanBurnOwned: true}, call: strangerBurns, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := AuthorizeBurn(tt.policy, creator, tt.call.owner, tt.call.caller)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, role)
		})
	}
}

func TestAuthorizeSend(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	item := func(approvals ...domain.Approval) *domain.Item {
		return &domain.Item{TokenNumber: "7", Owner: holder, Approvals: approvals}
	}

	t.Run("owner may send", func(t *testing.T) {
		assert.NoError(t, AuthorizeSend(now, item(), nil, holder))
	})

	t.Run("stranger may not send", func(t *testing.T) {
		assert.ErrorIs(t, AuthorizeSend(now, item(), nil, stranger), domain.ErrUnauthorized)
	})

	t.Run("approved spender may send", func(t *testing.T) {
		it := item(domain.Approval{Spender: stranger, Expires: &future})
		assert.NoError(t, AuthorizeSend(now, it, nil, stranger))
	})

	t.Run("expired approval rejected", func(t *testing.T) {
		it := item(domain.Approval{Spender: stranger, Expires: &past})
		assert.ErrorIs(t, AuthorizeSend(now, it, nil, stranger), domain.ErrUnauthorized)
	})

	t.Run("unbounded approval never expires", func(t *testing.T) {
		it := item(domain.Approval{Spender: stranger})
		assert.NoError(t, AuthorizeSend(now, it, nil, stranger))
	})

	t.Run("operator grant from owner", func(t *testing.T) {
		grants := []domain.OperatorGrant{{Owner: holder, Operator: stranger, Expires: &future}}
		assert.NoError(t, AuthorizeSend(now, item(), grants, stranger))
	})

	t.Run("expired operator grant rejected", func(t *testing.T) {
		grants := []domain.OperatorGrant{{Owner: holder, Operator: stranger, Expires: &past}}
		assert.ErrorIs(t, AuthorizeSend(now, item(), grants, stranger), domain.ErrUnauthorized)
	})

	t.Run("grant from someone other than the owner is ignored", func(t *testing.T) {
		grants := []domain.OperatorGrant{{Owner: creator, Operator: stranger}}
		assert.ErrorIs(t, AuthorizeSend(now, item(), grants, stranger), domain.ErrUnauthorized)
	})
}
