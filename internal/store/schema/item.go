package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Item represents the items table - one row per live token. Pre-allocated
// items carry the creator as placeholder owner until claimed; burned items are
// deleted and leave only a BurnRecord tombstone.
type Item struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TokenNumber is the dense decimal item id ("0", "1", ...)
	TokenNumber string `gorm:"column:token_number;not null;uniqueIndex;type:text"`
	// OwnerAddress is the current holder (the creator until minted)
	OwnerAddress string `gorm:"column:owner_address;not null;type:text;index"`
	// Metadata holds the item's structured traits as JSON
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Approvals []Approval `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Item model
func (Item) TableName() string {
	return "items"
}

// Approval represents the approvals table - per-item spender grants with
// optional expiry, cleared whenever the item changes hands
type Approval struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ItemID references the item the grant applies to
	ItemID int64 `gorm:"column:item_id;not null;uniqueIndex:idx_approvals_item_spender,priority:1"`
	// Spender may transfer the item until ExpiresAt
	Spender string `gorm:"column:spender;not null;type:text;uniqueIndex:idx_approvals_item_spender,priority:2"`
	// ExpiresAt bounds the grant (nil = never expires)
	ExpiresAt *time.Time `gorm:"column:expires_at;type:timestamptz"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Approval model
func (Approval) TableName() string {
	return "approvals"
}

// OperatorGrant represents the operator_grants table - blanket transfer
// delegation from an owner to an operator with optional expiry
type OperatorGrant struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// OwnerAddress is the delegating holder
	OwnerAddress string `gorm:"column:owner_address;not null;type:text;uniqueIndex:idx_operator_grants_owner_operator,priority:1"`
	// Operator may transfer any of the owner's items until ExpiresAt
	Operator string `gorm:"column:operator;not null;type:text;uniqueIndex:idx_operator_grants_owner_operator,priority:2"`
	// ExpiresAt bounds the grant (nil = never expires)
	ExpiresAt *time.Time `gorm:"column:expires_at;type:timestamptz"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the OperatorGrant model
func (OperatorGrant) TableName() string {
	return "operator_grants"
}
