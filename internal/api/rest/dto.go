package rest

import (
	"encoding/json"
	"time"

	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/store/schema"
)

// instantiateRequest seeds a fresh collection
type instantiateRequest struct {
	Config        domain.Config `json:"config" binding:"required"`
	SchemaVersion string        `json:"schema_version" binding:"required"`
}

// updateConfigRequest replaces the collection configuration
type updateConfigRequest struct {
	Caller string        `json:"caller"`
	Config domain.Config `json:"config" binding:"required"`
}

// flagRequest carries the caller for freeze/unfreeze/pause/unpause
type flagRequest struct {
	Caller string `json:"caller"`
}

// migrateRequest bumps the stored schema version
type migrateRequest struct {
	Caller     string         `json:"caller"`
	Version    string         `json:"version" binding:"required"`
	Config     *domain.Config `json:"config,omitempty"`
	ClearState bool           `json:"clear_state"`
}

// storeItemsRequest pre-allocates inventory with explicit metadata
type storeItemsRequest struct {
	Caller string             `json:"caller"`
	Items  []*domain.Metadata `json:"items" binding:"required"`
}

// storeTemplateRequest pre-allocates inventory from the configured template,
// one attribute-value row per item
type storeTemplateRequest struct {
	Caller string     `json:"caller"`
	Rows   [][]string `json:"rows" binding:"required"`
}

// mintRequest claims items for the caller against attached funds
type mintRequest struct {
	Caller string       `json:"caller"`
	Amount uint64       `json:"amount"`
	Funds  domain.Funds `json:"funds" binding:"required"`
}

// remoteMintRequest runs the paid mint flow on behalf of a named owner,
// creator only
type remoteMintRequest struct {
	Caller string       `json:"caller"`
	Owner  string       `json:"owner" binding:"required"`
	Amount uint64       `json:"amount"`
	Funds  domain.Funds `json:"funds" binding:"required"`
}

// remoteBurnRequest burns a named owner's pledged items, creator only
type remoteBurnRequest struct {
	Caller       string   `json:"caller"`
	Owner        string   `json:"owner" binding:"required"`
	TokenNumbers []string `json:"token_numbers" binding:"required"`
}

// tokenBatchRequest carries the caller and a list of item ids (pledge, burn)
type tokenBatchRequest struct {
	Caller       string   `json:"caller"`
	TokenNumbers []string `json:"token_numbers" binding:"required"`
}

// transferEntry moves one item to a recipient
type transferEntry struct {
	TokenNumber string `json:"token_number" binding:"required"`
	Recipient   string `json:"recipient" binding:"required"`
}

// transferRequest moves a batch of items
type transferRequest struct {
	Caller    string          `json:"caller"`
	Transfers []transferEntry `json:"transfers" binding:"required"`
}

// approveRequest grants a spender transfer rights over one item
type approveRequest struct {
	Caller  string     `json:"caller"`
	Spender string     `json:"spender" binding:"required"`
	Expires *time.Time `json:"expires,omitempty"`
}

// revokeRequest removes a spender's approval
type revokeRequest struct {
	Caller  string `json:"caller"`
	Spender string `json:"spender" binding:"required"`
}

// operatorRequest grants or revokes operator rights over all the caller's items
type operatorRequest struct {
	Caller   string     `json:"caller"`
	Operator string     `json:"operator" binding:"required"`
	Expires  *time.Time `json:"expires,omitempty"`
}

// storedResponse reports the ids assigned by a pre-allocation call
type storedResponse struct {
	TokenNumbers []string `json:"token_numbers"`
}

// mintResponse reports the ids claimed by a mint call
type mintResponse struct {
	TokenNumbers []string `json:"token_numbers"`
}

// itemsResponse wraps a list of items
type itemsResponse struct {
	Items []*domain.Item `json:"items"`
}

// pledgeStatusResponse reports whether one item is pledged
type pledgeStatusResponse struct {
	TokenNumber string `json:"token_number"`
	Pledged     bool   `json:"pledged"`
}

// pledgedListResponse lists the items pledged by one address
type pledgedListResponse struct {
	Address      string   `json:"address"`
	TokenNumbers []string `json:"token_numbers"`
}

// burnsResponse reports the burn tally of one address
type burnsResponse struct {
	Address      string   `json:"address"`
	Amount       uint64   `json:"amount"`
	TokenNumbers []string `json:"token_numbers"`
}

// burnedStatusResponse reports tombstone flags in request order
type burnedStatusResponse struct {
	Statuses []domain.BurnedEntry `json:"statuses"`
}

// changeDTO is one journal row in API form
type changeDTO struct {
	Cursor      int64           `json:"cursor"`
	SubjectType string          `json:"subject_type"`
	SubjectID   string          `json:"subject_id"`
	Action      string          `json:"action"`
	ChangedAt   time.Time       `json:"changed_at"`
	Meta        json.RawMessage `json:"meta,omitempty"`
}

// changesResponse pages through the changes journal
type changesResponse struct {
	Changes []changeDTO `json:"changes"`
}

func changesFromRows(rows []*schema.ChangesJournal) []changeDTO {
	changes := make([]changeDTO, 0, len(rows))
	for _, row := range rows {
		changes = append(changes, changeDTO{
			Cursor:      row.Cursor,
			SubjectType: row.SubjectType,
			SubjectID:   row.SubjectID,
			Action:      row.Action,
			ChangedAt:   row.ChangedAt,
			Meta:        json.RawMessage(row.Meta),
		})
	}
	return changes
}
