package schema

import (
	"time"

	"gorm.io/datatypes"
)

// ChangesJournal represents the changes_journal table - the append-only audit
// log of every ledger mutation. It doubles as the outbox consumed by the event
// relay: rows past the relay cursor are published to JetStream in Cursor order.
type ChangesJournal struct {
	// Cursor is an auto-incrementing sequence number for ordering and pagination
	Cursor int64 `gorm:"column:\"cursor\";primaryKey;autoIncrement"`
	// SubjectType identifies what kind of entity changed (collection, item, pledge, burn, payout)
	SubjectType string `gorm:"column:subject_type;not null;type:text"`
	// SubjectID is the identifier of the changed entity (a token number or the collection id)
	SubjectID string `gorm:"column:subject_id;not null;type:text;index"`
	// Action is the mutation recorded (minted, burned, pledged, ...)
	Action string `gorm:"column:action;not null;type:text"`
	// ChangedAt is the timestamp when the change occurred
	ChangedAt time.Time `gorm:"column:changed_at;not null;default:now();type:timestamptz"`
	// Meta contains additional context about the change as JSON
	Meta datatypes.JSON `gorm:"column:meta;type:jsonb"`
}

// TableName specifies the table name for the ChangesJournal model
func (ChangesJournal) TableName() string {
	return "changes_journal"
}
