package schema

import "time"

// BurnRecord represents the burn_records table - the tombstone left when an
// item is removed from the ledger, plus the per-address burn accounting used
// for reporting. Never read by authorization logic.
type BurnRecord struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TokenNumber is the burned item id; the unique index keeps repeat burns
	// and existence queries deterministic
	TokenNumber string `gorm:"column:token_number;not null;uniqueIndex;type:text"`
	// BurnedBy is the caller whose burn counter this row feeds
	BurnedBy string `gorm:"column:burned_by;not null;type:text;index"`
	// Role is the policy path that authorized the burn (owner_burn, creator_burn)
	Role string `gorm:"column:role;not null;type:text"`

	BurnedAt time.Time `gorm:"column:burned_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the BurnRecord model
func (BurnRecord) TableName() string {
	return "burn_records"
}
