package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/store/schema"
)

// stateFromRow converts the collections row into the domain state
func stateFromRow(row *schema.Collection) (*domain.CollectionState, error) {
	cfg := domain.Config{
		Creator:        domain.Address(row.Creator),
		Name:           row.Name,
		SupplyCap:      uint64(row.SupplyCap),
		InventoryTotal: uint64(row.InventoryTotal),
		MintWindow:     domain.MintWindow{Start: row.MintStart, End: row.MintEnd},
		Payment: domain.PaymentTerms{
			Denom:  row.PaymentDenom,
			Amount: uint64(row.PaymentAmount),
		},
		Burn: domain.BurnPolicy{
			OwnerCanBurn:        row.OwnerCanBurn,
			CreatorCanBurnOwned: row.CreatorCanBurnOwned,
		},
		PayoutAddress: domain.Address(row.PayoutAddress),
		Frozen:        row.Frozen,
		Paused:        row.Paused,
	}

	if row.MaxBatchSize != nil {
		size := uint64(*row.MaxBatchSize)
		cfg.MaxBatchSize = &size
	}

	if len(row.Template) > 0 {
		var template domain.MetadataTemplate
		if err := json.Unmarshal(row.Template, &template); err != nil {
			return nil, fmt.Errorf("failed to decode metadata template: %w", err)
		}
		cfg.Template = &template
	}

	return &domain.CollectionState{
		Config:        cfg,
		SchemaVersion: row.SchemaVersion,
		MintedCount:   uint64(row.MintedCount),
	}, nil
}

// applyConfig writes the config fields of the domain value onto the row,
// leaving version and counters untouched
func applyConfig(row *schema.Collection, cfg *domain.Config) error {
	row.Name = cfg.Name
	row.Creator = cfg.Creator.String()
	row.SupplyCap = int64(cfg.SupplyCap)
	row.InventoryTotal = int64(cfg.InventoryTotal)
	row.MintStart = cfg.MintWindow.Start
	row.MintEnd = cfg.MintWindow.End
	row.PaymentDenom = cfg.Payment.Denom
	row.PaymentAmount = int64(cfg.Payment.Amount)
	row.OwnerCanBurn = cfg.Burn.OwnerCanBurn
	row.CreatorCanBurnOwned = cfg.Burn.CreatorCanBurnOwned
	row.PayoutAddress = cfg.PayoutAddress.String()
	row.Frozen = cfg.Frozen
	row.Paused = cfg.Paused

	row.MaxBatchSize = nil
	if cfg.MaxBatchSize != nil {
		size := int64(*cfg.MaxBatchSize)
		row.MaxBatchSize = &size
	}

	row.Template = nil
	if cfg.Template != nil {
		raw, err := json.Marshal(cfg.Template)
		if err != nil {
			return fmt.Errorf("failed to encode metadata template: %w", err)
		}
		row.Template = datatypes.JSON(raw)
	}

	return nil
}

// itemFromRow converts an items row (with preloaded approvals) into the domain item
func itemFromRow(row *schema.Item) (*domain.Item, error) {
	item := &domain.Item{
		TokenNumber: row.TokenNumber,
		Owner:       domain.Address(row.OwnerAddress),
	}

	if len(row.Metadata) > 0 {
		var metadata domain.Metadata
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to decode item metadata: %w", err)
		}
		item.Metadata = &metadata
	}

	for _, approval := range row.Approvals {
		item.Approvals = append(item.Approvals, domain.Approval{
			Spender: domain.Address(approval.Spender),
			Expires: approval.ExpiresAt,
		})
	}

	return item, nil
}

// itemToRow converts a domain item into a fresh items row
func itemToRow(item *domain.Item) (*schema.Item, error) {
	row := &schema.Item{
		TokenNumber:  item.TokenNumber,
		OwnerAddress: item.Owner.String(),
	}

	if item.Metadata != nil {
		raw, err := json.Marshal(item.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode item metadata: %w", err)
		}
		row.Metadata = datatypes.JSON(raw)
	}

	return row, nil
}

// journalEntry builds a changes_journal row for a mutation
func journalEntry(subjectType domain.SubjectType, subjectID string, action domain.Action, meta map[string]any) (*schema.ChangesJournal, error) {
	entry := &schema.ChangesJournal{
		SubjectType: string(subjectType),
		SubjectID:   subjectID,
		Action:      string(action),
		ChangedAt:   time.Now().UTC(),
	}

	if meta != nil {
		raw, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("failed to encode journal meta: %w", err)
		}
		entry.Meta = datatypes.JSON(raw)
	}

	return entry, nil
}
