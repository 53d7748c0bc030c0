package schema

import "time"

// Pledge represents the pledges table - the one-way pre-commitment marking an
// item eligible for burning. Rows are append-only: an item pledged once stays
// pledged, and the unique index makes a second pledge attempt fail. A pledge
// row may outlive its item (weak reference by id).
type Pledge struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TokenNumber is the pledged item id
	TokenNumber string `gorm:"column:token_number;not null;uniqueIndex;type:text"`
	// OwnerAddress is the address that pledged; the per-address reverse list
	// is this column's index
	OwnerAddress string `gorm:"column:owner_address;not null;type:text;index"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Pledge model
func (Pledge) TableName() string {
	return "pledges"
}
