package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lumenarts/mint-ledger/internal/batch"
	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/logger"
)

// inventoryState loads the collection and gates inventory changes: only the
// creator may pre-allocate, a frozen collection rejects it, and the inventory
// may never grow past the supply cap
func (l *Ledger) inventoryState(ctx context.Context, caller domain.Address, count int) (*domain.CollectionState, error) {
	state, err := l.store.GetState(ctx)
	if err != nil {
		return nil, err
	}
	if caller != state.Config.Creator {
		return nil, domain.ErrUnauthorized
	}
	if state.Config.Frozen {
		return nil, domain.ErrCollectionFrozen
	}
	if state.Config.InventoryTotal+uint64(count) > state.Config.SupplyCap {
		return nil, domain.ErrSupplyExhausted
	}
	return state, nil
}

// storeItems assigns dense ids starting at the inventory total and
// pre-allocates the items as creator-owned placeholders, fail-fast
func (l *Ledger) storeItems(ctx context.Context, state *domain.CollectionState, metadatas []*domain.Metadata) ([]string, error) {
	creator := state.Config.Creator
	next := state.Config.InventoryTotal

	tokenNumbers := make([]string, 0, len(metadatas))
	items := make([]*domain.Item, 0, len(metadatas))
	for i, metadata := range metadatas {
		tokenNumber := domain.TokenNumber(next + uint64(i))
		tokenNumbers = append(tokenNumbers, tokenNumber)
		items = append(items, &domain.Item{
			TokenNumber: tokenNumber,
			Owner:       creator,
			Metadata:    metadata,
		})
	}

	total, err := l.store.StoreItems(ctx, creator, items)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "inventory pre-allocated",
		zap.Int("count", len(items)),
		zap.Uint64("inventory_total", total))
	return tokenNumbers, nil
}

// StoreOne pre-allocates a single item and returns its assigned id
func (l *Ledger) StoreOne(ctx context.Context, caller domain.Address, metadata *domain.Metadata) (string, error) {
	state, err := l.inventoryState(ctx, caller, 1)
	if err != nil {
		return "", err
	}

	tokenNumbers, err := l.storeItems(ctx, state, []*domain.Metadata{metadata})
	if err != nil {
		return "", err
	}
	return tokenNumbers[0], nil
}

// StoreBatch pre-allocates a batch of items with explicit metadata. The batch
// is bounds-checked and fails as a whole: either every item is stored or none.
func (l *Ledger) StoreBatch(ctx context.Context, caller domain.Address, metadatas []*domain.Metadata) ([]string, error) {
	if err := batch.ValidateSize(len(metadatas), batch.DefaultCeiling); err != nil {
		return nil, err
	}

	state, err := l.inventoryState(ctx, caller, len(metadatas))
	if err != nil {
		return nil, err
	}
	return l.storeItems(ctx, state, metadatas)
}

// StoreFromTemplate pre-allocates items derived from the configured metadata
// template: one item per attribute row, named "<Name> #<id>" with the image
// at "<ImageBaseURI>/<id>.png" and one trait per schema entry.
func (l *Ledger) StoreFromTemplate(ctx context.Context, caller domain.Address, rows [][]string) ([]string, error) {
	if err := batch.ValidateSize(len(rows), batch.DefaultCeiling); err != nil {
		return nil, err
	}

	state, err := l.inventoryState(ctx, caller, len(rows))
	if err != nil {
		return nil, err
	}
	template := state.Config.Template
	if template == nil {
		return nil, domain.ErrNoConfiguration
	}

	next := state.Config.InventoryTotal
	metadatas := make([]*domain.Metadata, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(template.AttributeSchema) {
			return nil, domain.ErrAttributeMismatch
		}

		traits := make([]domain.Trait, 0, len(row))
		for j, value := range row {
			traits = append(traits, domain.Trait{
				TraitType: template.AttributeSchema[j],
				Value:     value,
			})
		}

		tokenNumber := domain.TokenNumber(next + uint64(i))
		metadatas = append(metadatas, &domain.Metadata{
			Name:        fmt.Sprintf("%s #%s", template.Name, tokenNumber),
			Description: template.Description,
			Image:       fmt.Sprintf("%s/%s.png", template.ImageBaseURI, tokenNumber),
			Attributes:  traits,
		})
	}

	return l.storeItems(ctx, state, metadatas)
}
