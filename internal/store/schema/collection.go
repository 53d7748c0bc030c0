package schema

import (
	"time"

	"gorm.io/datatypes"
)

// CollectionID is the fixed primary key of the config singleton row
const CollectionID = 1

// Collection represents the collections table - the versioned configuration
// singleton plus the counters read-modify-written alongside it
type Collection struct {
	// ID is always CollectionID; one collection per deployment
	ID int64 `gorm:"column:id;primaryKey"`
	// SchemaVersion is the installed config version checked by migrations
	SchemaVersion string `gorm:"column:schema_version;not null;type:text"`
	// Name is the display name of the collection
	Name string `gorm:"column:name;not null;type:text"`
	// Creator is the privileged administrative address
	Creator string `gorm:"column:creator;not null;type:text"`
	// SupplyCap is the hard ceiling on concurrently minted items
	SupplyCap int64 `gorm:"column:supply_cap;not null"`
	// InventoryTotal counts pre-allocated items; also the next id to assign
	InventoryTotal int64 `gorm:"column:inventory_total;not null;default:0"`
	// MintedCount is incremented on claim and decremented on burn
	MintedCount int64 `gorm:"column:minted_count;not null;default:0"`
	// MintStart opens the mint window (nil = open-ended)
	MintStart *time.Time `gorm:"column:mint_start;type:timestamptz"`
	// MintEnd closes the mint window (nil = open-ended)
	MintEnd *time.Time `gorm:"column:mint_end;type:timestamptz"`
	// PaymentDenom is the only accepted payment denomination
	PaymentDenom string `gorm:"column:payment_denom;not null;type:text"`
	// PaymentAmount is the unit price of one mint
	PaymentAmount int64 `gorm:"column:payment_amount;not null"`
	// MaxBatchSize caps one mint-batch request (nil = default of 10)
	MaxBatchSize *int64 `gorm:"column:max_batch_size"`
	// OwnerCanBurn allows holders to burn items they own
	OwnerCanBurn bool `gorm:"column:owner_can_burn;not null;default:false"`
	// CreatorCanBurnOwned allows the creator to burn items held by others
	CreatorCanBurnOwned bool `gorm:"column:creator_can_burn_owned;not null;default:false"`
	// PayoutAddress receives mint proceeds
	PayoutAddress string `gorm:"column:payout_address;not null;type:text"`
	// Template holds the optional metadata template as JSON
	Template datatypes.JSON `gorm:"column:template;type:jsonb"`
	// Frozen blocks config replacement and inventory pre-allocation
	Frozen bool `gorm:"column:frozen;not null;default:false"`
	// Paused blocks minting only; orthogonal to Frozen
	Paused bool `gorm:"column:paused;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Collection model
func (Collection) TableName() string {
	return "collections"
}
