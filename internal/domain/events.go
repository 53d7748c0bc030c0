package domain

import "time"

// SubjectType identifies what kind of entity a journal entry refers to
type SubjectType string

const (
	SubjectTypeCollection SubjectType = "collection"
	SubjectTypeItem       SubjectType = "item"
	SubjectTypePledge     SubjectType = "pledge"
	SubjectTypeBurn       SubjectType = "burn"
	SubjectTypePayout     SubjectType = "payout"
)

// Action identifies the ledger mutation recorded in a journal entry
type Action string

const (
	ActionInstantiated  Action = "instantiated"
	ActionConfigUpdated Action = "config_updated"
	ActionFrozen        Action = "frozen"
	ActionUnfrozen      Action = "unfrozen"
	ActionPaused        Action = "paused"
	ActionUnpaused      Action = "unpaused"
	ActionMigrated      Action = "migrated"
	ActionStored        Action = "stored"
	ActionMinted        Action = "minted"
	ActionPledged       Action = "pledged"
	ActionBurned        Action = "burned"
	ActionTransferred   Action = "transferred"
	ActionPaidOut       Action = "paid_out"
)

// LedgerEvent is the normalized change notification published to JetStream by
// the event relay. Cursor is the journal sequence number; consumers deduplicate
// by it.
type LedgerEvent struct {
	Cursor      int64          `json:"cursor"`
	SubjectType SubjectType    `json:"subject_type"`
	SubjectID   string         `json:"subject_id"`
	Action      Action         `json:"action"`
	ChangedAt   time.Time      `json:"changed_at"`
	Meta        map[string]any `json:"meta,omitempty"`
}
