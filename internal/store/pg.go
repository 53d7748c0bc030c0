package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/store/schema"
)

// relayCursorKey is the key_value_store key holding the last published journal cursor
const relayCursorKey = "relay_cursor"

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// appendJournal writes an audit entry inside the caller's transaction
func appendJournal(tx *gorm.DB, subjectType domain.SubjectType, subjectID string, action domain.Action, meta map[string]any) error {
	entry, err := journalEntry(subjectType, subjectID, action, meta)
	if err != nil {
		return err
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}

// lockCollection loads the config singleton FOR UPDATE so counter updates serialize
func lockCollection(tx *gorm.DB) (*schema.Collection, error) {
	var row schema.Collection
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", schema.CollectionID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoConfiguration
		}
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return &row, nil
}

// CreateCollection installs the config singleton for a fresh deployment
func (s *pgStore) CreateCollection(ctx context.Context, state *domain.CollectionState) error {
	row := schema.Collection{
		ID:            schema.CollectionID,
		SchemaVersion: state.SchemaVersion,
		MintedCount:   int64(state.MintedCount),
	}
	if err := applyConfig(&row, &state.Config); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return appendJournal(tx, domain.SubjectTypeCollection, strconv.Itoa(schema.CollectionID), domain.ActionInstantiated, map[string]any{
			"name":    state.Config.Name,
			"creator": state.Config.Creator,
			"version": state.SchemaVersion,
		})
	})
}

// GetState loads the config singleton with its counters
func (s *pgStore) GetState(ctx context.Context) (*domain.CollectionState, error) {
	var row schema.Collection
	err := s.db.WithContext(ctx).Where("id = ?", schema.CollectionID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoConfiguration
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return stateFromRow(&row)
}

// ReplaceConfig swaps the whole config record, keeping version and counters
func (s *pgStore) ReplaceConfig(ctx context.Context, cfg *domain.Config) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockCollection(tx)
		if err != nil {
			return err
		}
		if err := applyConfig(row, cfg); err != nil {
			return err
		}
		if err := tx.Save(row).Error; err != nil {
			return fmt.Errorf("failed to update collection: %w", err)
		}
		return appendJournal(tx, domain.SubjectTypeCollection, strconv.Itoa(schema.CollectionID), domain.ActionConfigUpdated, nil)
	})
}

// setFlag updates a single kill-switch column, journaling the action. Writing
// one column at a time keeps the switches independent under concurrent
// requests.
func (s *pgStore) setFlag(ctx context.Context, column string, value bool, action domain.Action) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&schema.Collection{}).
			Where("id = ?", schema.CollectionID).
			Update(column, value).Error
		if err != nil {
			return fmt.Errorf("failed to update collection %s flag: %w", column, err)
		}
		return appendJournal(tx, domain.SubjectTypeCollection, strconv.Itoa(schema.CollectionID), action, nil)
	})
}

// SetFrozen persists the freeze switch
func (s *pgStore) SetFrozen(ctx context.Context, frozen bool, action domain.Action) error {
	return s.setFlag(ctx, "frozen", frozen, action)
}

// SetPaused persists the pause switch
func (s *pgStore) SetPaused(ctx context.Context, paused bool, action domain.Action) error {
	return s.setFlag(ctx, "paused", paused, action)
}

// Migrate installs a new version and config, optionally wiping all ledger state first
func (s *pgStore) Migrate(ctx context.Context, version string, cfg *domain.Config, clearState bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockCollection(tx)
		if err != nil {
			return err
		}
		if row.SchemaVersion == version {
			return domain.ErrSameVersion
		}
		previous := row.SchemaVersion

		if clearState {
			for _, model := range []any{
				&schema.Approval{},
				&schema.OperatorGrant{},
				&schema.Item{},
				&schema.Pledge{},
				&schema.BurnRecord{},
			} {
				if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
					return fmt.Errorf("failed to clear ledger state: %w", err)
				}
			}
			row.InventoryTotal = 0
			row.MintedCount = 0
		}

		if cfg != nil {
			if err := applyConfig(row, cfg); err != nil {
				return err
			}
		}
		row.SchemaVersion = version

		if err := tx.Save(row).Error; err != nil {
			return fmt.Errorf("failed to update collection: %w", err)
		}
		return appendJournal(tx, domain.SubjectTypeCollection, strconv.Itoa(schema.CollectionID), domain.ActionMigrated, map[string]any{
			"from":        previous,
			"to":          version,
			"clear_state": clearState,
		})
	})
}

// StoreItems pre-allocates items owned by the creator, fail-fast in one
// transaction, and returns the new inventory total
func (s *pgStore) StoreItems(ctx context.Context, creator domain.Address, items []*domain.Item) (uint64, error) {
	var total uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockCollection(tx)
		if err != nil {
			return err
		}
		// Checked under the collection lock so concurrent pre-allocations
		// cannot overshoot the cap together
		if row.InventoryTotal+int64(len(items)) > row.SupplyCap {
			return domain.ErrSupplyExhausted
		}

		tokenNumbers := make([]string, 0, len(items))
		for _, item := range items {
			tokenNumbers = append(tokenNumbers, item.TokenNumber)
		}

		var existing int64
		err = tx.Model(&schema.Item{}).
			Where("token_number IN ?", tokenNumbers).
			Count(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to check existing items: %w", err)
		}
		if existing > 0 {
			return domain.ErrItemExists
		}

		rows := make([]*schema.Item, 0, len(items))
		for _, item := range items {
			itemRow, err := itemToRow(item)
			if err != nil {
				return err
			}
			itemRow.OwnerAddress = creator.String()
			rows = append(rows, itemRow)
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to create items: %w", err)
		}

		row.InventoryTotal += int64(len(rows))
		if err := tx.Model(&schema.Collection{}).
			Where("id = ?", schema.CollectionID).
			Update("inventory_total", row.InventoryTotal).Error; err != nil {
			return fmt.Errorf("failed to update inventory total: %w", err)
		}

		for _, itemRow := range rows {
			if err := appendJournal(tx, domain.SubjectTypeItem, itemRow.TokenNumber, domain.ActionStored, nil); err != nil {
				return err
			}
		}

		total = uint64(row.InventoryTotal)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// GetItem loads one item; (nil, nil) when absent
func (s *pgStore) GetItem(ctx context.Context, tokenNumber string) (*domain.Item, error) {
	var row schema.Item
	err := s.db.WithContext(ctx).
		Preload("Approvals").
		Where("token_number = ?", tokenNumber).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return itemFromRow(&row)
}

// GetItems loads a batch of items in request order, silently skipping unknown ids
func (s *pgStore) GetItems(ctx context.Context, tokenNumbers []string) ([]*domain.Item, error) {
	var rows []schema.Item
	err := s.db.WithContext(ctx).
		Preload("Approvals").
		Where("token_number IN ?", tokenNumbers).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}

	byToken := make(map[string]*schema.Item, len(rows))
	for i := range rows {
		byToken[rows[i].TokenNumber] = &rows[i]
	}

	items := make([]*domain.Item, 0, len(rows))
	for _, tokenNumber := range tokenNumbers {
		row, ok := byToken[tokenNumber]
		if !ok {
			continue
		}
		item, err := itemFromRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		delete(byToken, tokenNumber)
	}
	return items, nil
}

// ListItemsByOwner pages through a holder's items in token order
func (s *pgStore) ListItemsByOwner(ctx context.Context, owner domain.Address, limit, offset int) ([]*domain.Item, error) {
	var rows []schema.Item
	err := s.db.WithContext(ctx).
		Preload("Approvals").
		Where("owner_address = ?", owner.String()).
		// ids are dense decimal strings, so length-then-lexicographic is numeric order
		Order("length(token_number), token_number").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list items by owner: %w", err)
	}

	items := make([]*domain.Item, 0, len(rows))
	for i := range rows {
		item, err := itemFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ClaimItem reassigns a placeholder item from the creator to the buyer and
// clears any approvals granted on the placeholder. The row is locked for the
// duration, so concurrent claims on the same id serialize and the loser sees
// the buyer as owner.
func (s *pgStore) ClaimItem(ctx context.Context, tokenNumber string, creator, buyer domain.Address) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row schema.Item
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_number = ?", tokenNumber).
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTokenNotFound
			}
			return fmt.Errorf("failed to load item: %w", err)
		}
		if row.OwnerAddress != creator.String() {
			return domain.ErrClaimed
		}

		err = tx.Model(&schema.Item{}).
			Where("id = ?", row.ID).
			Update("owner_address", buyer.String()).Error
		if err != nil {
			return fmt.Errorf("failed to claim item: %w", err)
		}

		if err := tx.Where("item_id = ?", row.ID).Delete(&schema.Approval{}).Error; err != nil {
			return fmt.Errorf("failed to clear approvals: %w", err)
		}

		err = tx.Model(&schema.Collection{}).
			Where("id = ?", schema.CollectionID).
			Update("minted_count", gorm.Expr("minted_count + 1")).Error
		if err != nil {
			return fmt.Errorf("failed to update minted count: %w", err)
		}

		return appendJournal(tx, domain.SubjectTypeItem, tokenNumber, domain.ActionMinted, map[string]any{
			"owner": buyer,
		})
	})
}

// TransferItem reassigns the owner and clears approvals
func (s *pgStore) TransferItem(ctx context.Context, tokenNumber string, recipient domain.Address) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row schema.Item
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_number = ?", tokenNumber).
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTokenNotFound
			}
			return fmt.Errorf("failed to load item: %w", err)
		}
		previous := row.OwnerAddress

		err = tx.Model(&schema.Item{}).
			Where("id = ?", row.ID).
			Update("owner_address", recipient.String()).Error
		if err != nil {
			return fmt.Errorf("failed to transfer item: %w", err)
		}

		if err := tx.Where("item_id = ?", row.ID).Delete(&schema.Approval{}).Error; err != nil {
			return fmt.Errorf("failed to clear approvals: %w", err)
		}

		return appendJournal(tx, domain.SubjectTypeItem, tokenNumber, domain.ActionTransferred, map[string]any{
			"from": previous,
			"to":   recipient,
		})
	})
}

// BurnItem removes the item, records the tombstone and burn accounting, and
// decrements the mint counter
func (s *pgStore) BurnItem(ctx context.Context, tokenNumber string, caller domain.Address, role string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row schema.Item
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_number = ?", tokenNumber).
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTokenNotFound
			}
			return fmt.Errorf("failed to load item: %w", err)
		}

		if err := tx.Where("item_id = ?", row.ID).Delete(&schema.Approval{}).Error; err != nil {
			return fmt.Errorf("failed to clear approvals: %w", err)
		}
		if err := tx.Delete(&row).Error; err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}

		record := schema.BurnRecord{
			TokenNumber: tokenNumber,
			BurnedBy:    caller.String(),
			Role:        role,
			BurnedAt:    time.Now().UTC(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create burn record: %w", err)
		}

		err = tx.Model(&schema.Collection{}).
			Where("id = ?", schema.CollectionID).
			Update("minted_count", gorm.Expr("minted_count - 1")).Error
		if err != nil {
			return fmt.Errorf("failed to update minted count: %w", err)
		}

		return appendJournal(tx, domain.SubjectTypeBurn, tokenNumber, domain.ActionBurned, map[string]any{
			"burned_by": caller,
			"role":      role,
		})
	})
}

// SetApproval grants a spender transfer rights over one item
func (s *pgStore) SetApproval(ctx context.Context, tokenNumber string, spender domain.Address, expires *time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row schema.Item
		err := tx.Where("token_number = ?", tokenNumber).First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTokenNotFound
			}
			return fmt.Errorf("failed to load item: %w", err)
		}

		approval := schema.Approval{
			ItemID:    row.ID,
			Spender:   spender.String(),
			ExpiresAt: expires,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "spender"}},
			DoUpdates: clause.AssignmentColumns([]string{"expires_at"}),
		}).Create(&approval).Error
		if err != nil {
			return fmt.Errorf("failed to set approval: %w", err)
		}
		return nil
	})
}

// RemoveApproval revokes a spender's grant; revoking an absent grant is a no-op
func (s *pgStore) RemoveApproval(ctx context.Context, tokenNumber string, spender domain.Address) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row schema.Item
		err := tx.Where("token_number = ?", tokenNumber).First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTokenNotFound
			}
			return fmt.Errorf("failed to load item: %w", err)
		}

		err = tx.Where("item_id = ? AND spender = ?", row.ID, spender.String()).
			Delete(&schema.Approval{}).Error
		if err != nil {
			return fmt.Errorf("failed to remove approval: %w", err)
		}
		return nil
	})
}

// SetOperatorGrant delegates transfer rights over all of an owner's items
func (s *pgStore) SetOperatorGrant(ctx context.Context, owner, operator domain.Address, expires *time.Time) error {
	grant := schema.OperatorGrant{
		OwnerAddress: owner.String(),
		Operator:     operator.String(),
		ExpiresAt:    expires,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_address"}, {Name: "operator"}},
		DoUpdates: clause.AssignmentColumns([]string{"expires_at"}),
	}).Create(&grant).Error
	if err != nil {
		return fmt.Errorf("failed to set operator grant: %w", err)
	}
	return nil
}

// RemoveOperatorGrant revokes an operator delegation
func (s *pgStore) RemoveOperatorGrant(ctx context.Context, owner, operator domain.Address) error {
	err := s.db.WithContext(ctx).
		Where("owner_address = ? AND operator = ?", owner.String(), operator.String()).
		Delete(&schema.OperatorGrant{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove operator grant: %w", err)
	}
	return nil
}

// GetOperatorGrants lists the delegations issued by an owner
func (s *pgStore) GetOperatorGrants(ctx context.Context, owner domain.Address) ([]domain.OperatorGrant, error) {
	var rows []schema.OperatorGrant
	err := s.db.WithContext(ctx).
		Where("owner_address = ?", owner.String()).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get operator grants: %w", err)
	}

	grants := make([]domain.OperatorGrant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, domain.OperatorGrant{
			Owner:    domain.Address(row.OwnerAddress),
			Operator: domain.Address(row.Operator),
			Expires:  row.ExpiresAt,
		})
	}
	return grants, nil
}

// PledgeItem marks an item burn-eligible; a second pledge fails
func (s *pgStore) PledgeItem(ctx context.Context, tokenNumber string, owner domain.Address) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pledge := schema.Pledge{
			TokenNumber:  tokenNumber,
			OwnerAddress: owner.String(),
		}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_number"}},
			DoNothing: true,
		}).Create(&pledge)
		if result.Error != nil {
			return fmt.Errorf("failed to create pledge: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrAlreadyPledged
		}

		return appendJournal(tx, domain.SubjectTypePledge, tokenNumber, domain.ActionPledged, map[string]any{
			"owner": owner,
		})
	})
}

// IsPledged reports whether a pledge entry exists for the id
func (s *pgStore) IsPledged(ctx context.Context, tokenNumber string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&schema.Pledge{}).
		Where("token_number = ?", tokenNumber).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check pledge: %w", err)
	}
	return count > 0, nil
}

// PledgedBy lists the ids pledged by an address in pledge order
func (s *pgStore) PledgedBy(ctx context.Context, owner domain.Address) ([]string, error) {
	var tokenNumbers []string
	err := s.db.WithContext(ctx).Model(&schema.Pledge{}).
		Where("owner_address = ?", owner.String()).
		Order("id").
		Pluck("token_number", &tokenNumbers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pledges: %w", err)
	}
	return tokenNumbers, nil
}

// BurntAmount returns an address's burn counter
func (s *pgStore) BurntAmount(ctx context.Context, address domain.Address) (uint64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&schema.BurnRecord{}).
		Where("burned_by = ?", address.String()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count burns: %w", err)
	}
	return uint64(count), nil
}

// BurntList returns the ids an address has burned, in burn order
func (s *pgStore) BurntList(ctx context.Context, address domain.Address) ([]string, error) {
	var tokenNumbers []string
	err := s.db.WithContext(ctx).Model(&schema.BurnRecord{}).
		Where("burned_by = ?", address.String()).
		Order("id").
		Pluck("token_number", &tokenNumbers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list burns: %w", err)
	}
	return tokenNumbers, nil
}

// BurnedStatus resolves tombstone flags for a batch of ids in request order
func (s *pgStore) BurnedStatus(ctx context.Context, tokenNumbers []string) ([]domain.BurnedEntry, error) {
	var burned []string
	err := s.db.WithContext(ctx).Model(&schema.BurnRecord{}).
		Where("token_number IN ?", tokenNumbers).
		Pluck("token_number", &burned).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve burned status: %w", err)
	}

	burnedSet := make(map[string]struct{}, len(burned))
	for _, tokenNumber := range burned {
		burnedSet[tokenNumber] = struct{}{}
	}

	entries := make([]domain.BurnedEntry, 0, len(tokenNumbers))
	for _, tokenNumber := range tokenNumbers {
		_, ok := burnedSet[tokenNumber]
		entries = append(entries, domain.BurnedEntry{
			TokenNumber: tokenNumber,
			Burned:      ok,
		})
	}
	return entries, nil
}

// RecordPayout appends a settlement row for the payout address
func (s *pgStore) RecordPayout(ctx context.Context, recipient domain.Address, coin domain.Coin, reference string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payout := schema.Payout{
			Recipient: recipient.String(),
			Denom:     coin.Denom,
			Amount:    int64(coin.Amount),
			Reference: reference,
		}
		if err := tx.Create(&payout).Error; err != nil {
			return fmt.Errorf("failed to create payout: %w", err)
		}

		return appendJournal(tx, domain.SubjectTypePayout, recipient.String(), domain.ActionPaidOut, map[string]any{
			"denom":     coin.Denom,
			"amount":    coin.Amount,
			"reference": reference,
		})
	})
}

// GetChangesAfter pages the audit journal past a cursor
func (s *pgStore) GetChangesAfter(ctx context.Context, cursor int64, limit int) ([]*schema.ChangesJournal, error) {
	var rows []*schema.ChangesJournal
	err := s.db.WithContext(ctx).
		Where(`"cursor" > ?`, cursor).
		Order(`"cursor"`).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get changes: %w", err)
	}
	return rows, nil
}

// GetRelayCursor retrieves the last journal cursor published by the relay
func (s *pgStore) GetRelayCursor(ctx context.Context) (int64, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", relayCursorKey).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil // No cursor yet, start from the beginning
		}
		return 0, fmt.Errorf("failed to get relay cursor: %w", err)
	}

	cursor, err := strconv.ParseInt(kv.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse relay cursor: %w", err)
	}
	return cursor, nil
}

// SetRelayCursor stores the last journal cursor published by the relay
func (s *pgStore) SetRelayCursor(ctx context.Context, cursor int64) error {
	kv := schema.KeyValueStore{
		Key:   relayCursorKey,
		Value: strconv.FormatInt(cursor, 10),
	}
	if err := s.db.WithContext(ctx).Save(&kv).Error; err != nil {
		return fmt.Errorf("failed to set relay cursor: %w", err)
	}
	return nil
}
