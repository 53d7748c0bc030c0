package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/lumenarts/mint-ledger/internal/adapter"
	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/store"
	"github.com/lumenarts/mint-ledger/internal/store/schema"
)

// fakeClock is a settable clock for window tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.Now().Add(d)
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ adapter.Clock = (*fakeClock)(nil)

type burnEntry struct {
	tokenNumber string
	burnedBy    domain.Address
	role        string
}

type payoutEntry struct {
	recipient domain.Address
	coin      domain.Coin
	reference string
}

// memStore is an in-memory Store with the same per-call atomicity and error
// mapping as the PostgreSQL implementation
type memStore struct {
	mu          sync.Mutex
	state       *domain.CollectionState
	items       map[string]*domain.Item
	grants      map[domain.Address][]domain.OperatorGrant
	pledges     map[string]domain.Address
	pledgeOrder []string
	burns       []burnEntry
	payouts     []payoutEntry
	journal     []*schema.ChangesJournal
	relayCursor int64
}

func newMemStore() *memStore {
	return &memStore{
		items:   make(map[string]*domain.Item),
		grants:  make(map[domain.Address][]domain.OperatorGrant),
		pledges: make(map[string]domain.Address),
	}
}

var _ store.Store = (*memStore)(nil)

func (m *memStore) appendJournal(subjectType domain.SubjectType, subjectID string, action domain.Action) {
	m.journal = append(m.journal, &schema.ChangesJournal{
		Cursor:      int64(len(m.journal) + 1),
		SubjectType: string(subjectType),
		SubjectID:   subjectID,
		Action:      string(action),
		ChangedAt:   time.Now().UTC(),
	})
}

func copyItem(item *domain.Item) *domain.Item {
	clone := *item
	clone.Approvals = append([]domain.Approval(nil), item.Approvals...)
	return &clone
}

func (m *memStore) CreateCollection(_ context.Context, state *domain.CollectionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *state
	m.state = &clone
	m.appendJournal(domain.SubjectTypeCollection, "1", domain.ActionInstantiated)
	return nil
}

func (m *memStore) GetState(_ context.Context) (*domain.CollectionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, domain.ErrNoConfiguration
	}
	clone := *m.state
	return &clone, nil
}

func (m *memStore) ReplaceConfig(_ context.Context, cfg *domain.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return domain.ErrNoConfiguration
	}
	m.state.Config = *cfg
	m.appendJournal(domain.SubjectTypeCollection, "1", domain.ActionConfigUpdated)
	return nil
}

func (m *memStore) SetFrozen(_ context.Context, frozen bool, action domain.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return domain.ErrNoConfiguration
	}
	m.state.Config.Frozen = frozen
	m.appendJournal(domain.SubjectTypeCollection, "1", action)
	return nil
}

func (m *memStore) SetPaused(_ context.Context, paused bool, action domain.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return domain.ErrNoConfiguration
	}
	m.state.Config.Paused = paused
	m.appendJournal(domain.SubjectTypeCollection, "1", action)
	return nil
}

func (m *memStore) Migrate(_ context.Context, version string, cfg *domain.Config, clearState bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return domain.ErrNoConfiguration
	}
	if m.state.SchemaVersion == version {
		return domain.ErrSameVersion
	}
	if clearState {
		m.items = make(map[string]*domain.Item)
		m.grants = make(map[domain.Address][]domain.OperatorGrant)
		m.pledges = make(map[string]domain.Address)
		m.pledgeOrder = nil
		m.burns = nil
		m.state.Config.InventoryTotal = 0
		m.state.MintedCount = 0
	}
	if cfg != nil {
		m.state.Config = *cfg
	}
	m.state.SchemaVersion = version
	m.appendJournal(domain.SubjectTypeCollection, "1", domain.ActionMigrated)
	return nil
}

func (m *memStore) StoreItems(_ context.Context, creator domain.Address, items []*domain.Item) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return 0, domain.ErrNoConfiguration
	}
	if m.state.Config.InventoryTotal+uint64(len(items)) > m.state.Config.SupplyCap {
		return 0, domain.ErrSupplyExhausted
	}
	for _, item := range items {
		if _, ok := m.items[item.TokenNumber]; ok {
			return 0, domain.ErrItemExists
		}
	}
	for _, item := range items {
		clone := copyItem(item)
		clone.Owner = creator
		m.items[item.TokenNumber] = clone
		m.appendJournal(domain.SubjectTypeItem, item.TokenNumber, domain.ActionStored)
	}
	m.state.Config.InventoryTotal += uint64(len(items))
	return m.state.Config.InventoryTotal, nil
}

func (m *memStore) GetItem(_ context.Context, tokenNumber string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[tokenNumber]
	if !ok {
		return nil, nil
	}
	return copyItem(item), nil
}

func (m *memStore) GetItems(_ context.Context, tokenNumbers []string) ([]*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]*domain.Item, 0, len(tokenNumbers))
	for _, tokenNumber := range tokenNumbers {
		if item, ok := m.items[tokenNumber]; ok {
			items = append(items, copyItem(item))
		}
	}
	return items, nil
}

func (m *memStore) ListItemsByOwner(_ context.Context, owner domain.Address, limit, offset int) ([]*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var owned []*domain.Item
	for id := uint64(0); id < m.state.Config.InventoryTotal; id++ {
		item, ok := m.items[domain.TokenNumber(id)]
		if ok && item.Owner == owner {
			owned = append(owned, copyItem(item))
		}
	}
	if offset >= len(owned) {
		return nil, nil
	}
	owned = owned[offset:]
	if len(owned) > limit {
		owned = owned[:limit]
	}
	return owned, nil
}

func (m *memStore) ClaimItem(_ context.Context, tokenNumber string, creator, buyer domain.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[tokenNumber]
	if !ok {
		return domain.ErrTokenNotFound
	}
	if item.Owner != creator {
		return domain.ErrClaimed
	}
	item.Owner = buyer
	item.Approvals = nil
	m.state.MintedCount++
	m.appendJournal(domain.SubjectTypeItem, tokenNumber, domain.ActionMinted)
	return nil
}

func (m *memStore) TransferItem(_ context.Context, tokenNumber string, recipient domain.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[tokenNumber]
	if !ok {
		return domain.ErrTokenNotFound
	}
	item.Owner = recipient
	item.Approvals = nil
	m.appendJournal(domain.SubjectTypeItem, tokenNumber, domain.ActionTransferred)
	return nil
}

func (m *memStore) BurnItem(_ context.Context, tokenNumber string, caller domain.Address, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[tokenNumber]; !ok {
		return domain.ErrTokenNotFound
	}
	delete(m.items, tokenNumber)
	m.burns = append(m.burns, burnEntry{tokenNumber: tokenNumber, burnedBy: caller, role: role})
	m.state.MintedCount--
	m.appendJournal(domain.SubjectTypeBurn, tokenNumber, domain.ActionBurned)
	return nil
}

func (m *memStore) SetApproval(_ context.Context, tokenNumber string, spender domain.Address, expires *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[tokenNumber]
	if !ok {
		return domain.ErrTokenNotFound
	}
	for i := range item.Approvals {
		if item.Approvals[i].Spender == spender {
			item.Approvals[i].Expires = expires
			return nil
		}
	}
	item.Approvals = append(item.Approvals, domain.Approval{Spender: spender, Expires: expires})
	return nil
}

func (m *memStore) RemoveApproval(_ context.Context, tokenNumber string, spender domain.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[tokenNumber]
	if !ok {
		return domain.ErrTokenNotFound
	}
	kept := item.Approvals[:0]
	for _, approval := range item.Approvals {
		if approval.Spender != spender {
			kept = append(kept, approval)
		}
	}
	item.Approvals = kept
	return nil
}

func (m *memStore) SetOperatorGrant(_ context.Context, owner, operator domain.Address, expires *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	grants := m.grants[owner]
	for i := range grants {
		if grants[i].Operator == operator {
			grants[i].Expires = expires
			return nil
		}
	}
	m.grants[owner] = append(grants, domain.OperatorGrant{Owner: owner, Operator: operator, Expires: expires})
	return nil
}

func (m *memStore) RemoveOperatorGrant(_ context.Context, owner, operator domain.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	grants := m.grants[owner]
	kept := grants[:0]
	for _, grant := range grants {
		if grant.Operator != operator {
			kept = append(kept, grant)
		}
	}
	m.grants[owner] = kept
	return nil
}

func (m *memStore) GetOperatorGrants(_ context.Context, owner domain.Address) ([]domain.OperatorGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OperatorGrant(nil), m.grants[owner]...), nil
}

func (m *memStore) PledgeItem(_ context.Context, tokenNumber string, owner domain.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pledges[tokenNumber]; ok {
		return domain.ErrAlreadyPledged
	}
	m.pledges[tokenNumber] = owner
	m.pledgeOrder = append(m.pledgeOrder, tokenNumber)
	m.appendJournal(domain.SubjectTypePledge, tokenNumber, domain.ActionPledged)
	return nil
}

func (m *memStore) IsPledged(_ context.Context, tokenNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pledges[tokenNumber]
	return ok, nil
}

func (m *memStore) PledgedBy(_ context.Context, owner domain.Address) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tokenNumbers []string
	for _, tokenNumber := range m.pledgeOrder {
		if m.pledges[tokenNumber] == owner {
			tokenNumbers = append(tokenNumbers, tokenNumber)
		}
	}
	return tokenNumbers, nil
}

func (m *memStore) BurntAmount(_ context.Context, address domain.Address) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count uint64
	for _, burn := range m.burns {
		if burn.burnedBy == address {
			count++
		}
	}
	return count, nil
}

func (m *memStore) BurntList(_ context.Context, address domain.Address) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tokenNumbers []string
	for _, burn := range m.burns {
		if burn.burnedBy == address {
			tokenNumbers = append(tokenNumbers, burn.tokenNumber)
		}
	}
	return tokenNumbers, nil
}

func (m *memStore) BurnedStatus(_ context.Context, tokenNumbers []string) ([]domain.BurnedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	burned := make(map[string]struct{}, len(m.burns))
	for _, burn := range m.burns {
		burned[burn.tokenNumber] = struct{}{}
	}
	entries := make([]domain.BurnedEntry, 0, len(tokenNumbers))
	for _, tokenNumber := range tokenNumbers {
		_, ok := burned[tokenNumber]
		entries = append(entries, domain.BurnedEntry{TokenNumber: tokenNumber, Burned: ok})
	}
	return entries, nil
}

func (m *memStore) RecordPayout(_ context.Context, recipient domain.Address, coin domain.Coin, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payouts = append(m.payouts, payoutEntry{recipient: recipient, coin: coin, reference: reference})
	m.appendJournal(domain.SubjectTypePayout, recipient.String(), domain.ActionPaidOut)
	return nil
}

func (m *memStore) GetChangesAfter(_ context.Context, cursor int64, limit int) ([]*schema.ChangesJournal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var changes []*schema.ChangesJournal
	for _, change := range m.journal {
		if change.Cursor > cursor {
			changes = append(changes, change)
		}
		if len(changes) == limit {
			break
		}
	}
	return changes, nil
}

func (m *memStore) GetRelayCursor(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.relayCursor, nil
}

func (m *memStore) SetRelayCursor(_ context.Context, cursor int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relayCursor = cursor
	return nil
}
