package schema

import "time"

// Payout represents the payouts table - the settlement ledger of one-way value
// transfers to the configured payout address
type Payout struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Recipient is the payout address at the time of settlement
	Recipient string `gorm:"column:recipient;not null;type:text;index"`
	// Denom is the settled denomination
	Denom string `gorm:"column:denom;not null;type:text"`
	// Amount is the settled amount
	Amount int64 `gorm:"column:amount;not null"`
	// Reference links the payout to the operation that produced it
	Reference string `gorm:"column:reference;not null;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Payout model
func (Payout) TableName() string {
	return "payouts"
}
