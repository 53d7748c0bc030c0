package domain

import (
	"regexp"
	"strconv"
	"time"
)

// Address is a bech32-style account address (lowercase prefix, "1" separator,
// lowercase alphanumeric data part).
type Address string

var addressPattern = regexp.MustCompile(`^[a-z]{2,16}1[a-z0-9]{8,80}$`)

// Valid reports whether the address is well formed
func (a Address) Valid() bool {
	return addressPattern.MatchString(string(a))
}

// String returns the string representation of the address
func (a Address) String() string {
	return string(a)
}

// TokenNumber renders a dense item id as its canonical decimal string
func TokenNumber(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// ParseTokenNumber parses a canonical decimal item id
func ParseTokenNumber(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// Coin is one fungible-asset entry attached to a call as payment
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// Funds is the full payment attached to a call, in attachment order
type Funds []Coin

// MintWindow bounds the minting phase. A nil bound imposes no constraint on
// that side.
type MintWindow struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// PaymentTerms is the accepted denom and unit price of one mint
type PaymentTerms struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// BurnPolicy holds the two orthogonal burn switches
type BurnPolicy struct {
	// OwnerCanBurn allows holders to burn items they own
	OwnerCanBurn bool `json:"owner_can_burn"`
	// CreatorCanBurnOwned allows the creator to burn items held by others
	CreatorCanBurnOwned bool `json:"creator_can_burn_owned"`
}

// MetadataTemplate drives template-based inventory pre-allocation: each stored
// item gets "<Name> #<id>" as its name, "<ImageBaseURI>/<id>.png" as its image
// and one trait per AttributeSchema entry.
type MetadataTemplate struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	ImageBaseURI    string   `json:"image_base_uri"`
	AttributeSchema []string `json:"attribute_schema"`
}

// DefaultMaxMintBatch caps a single mint-batch request when the collection
// config leaves MaxBatchSize unset.
const DefaultMaxMintBatch = 10

// Config is the collection configuration singleton
type Config struct {
	Creator        Address           `json:"creator"`
	Name           string            `json:"name"`
	SupplyCap      uint64            `json:"supply_cap"`
	InventoryTotal uint64            `json:"inventory_total"`
	MintWindow     MintWindow        `json:"mint_window"`
	Payment        PaymentTerms      `json:"payment"`
	MaxBatchSize   *uint64           `json:"max_batch_size,omitempty"`
	Burn           BurnPolicy        `json:"burn"`
	PayoutAddress  Address           `json:"payout_address"`
	Template       *MetadataTemplate `json:"template,omitempty"`
	Frozen         bool              `json:"frozen"`
	Paused         bool              `json:"paused"`
}

// MaxMintBatch returns the effective mint-batch ceiling
func (c *Config) MaxMintBatch() uint64 {
	if c.MaxBatchSize == nil {
		return DefaultMaxMintBatch
	}
	return *c.MaxBatchSize
}

// CollectionState is the config singleton together with the counters that are
// read-modify-written alongside it.
type CollectionState struct {
	Config        Config `json:"config"`
	SchemaVersion string `json:"schema_version"`
	// MintedCount is the monotonically consistent mint counter: incremented on
	// every successful claim, decremented on burn.
	MintedCount uint64 `json:"minted_count"`
}

// Trait is one display attribute of an item
type Trait struct {
	DisplayType string `json:"display_type,omitempty"`
	TraitType   string `json:"trait_type"`
	Value       string `json:"value"`
}

// Metadata holds the structured traits of an item
type Metadata struct {
	Name            string  `json:"name,omitempty"`
	Description     string  `json:"description,omitempty"`
	Image           string  `json:"image,omitempty"`
	ImageData       string  `json:"image_data,omitempty"`
	ExternalURL     string  `json:"external_url,omitempty"`
	AnimationURL    string  `json:"animation_url,omitempty"`
	BackgroundColor string  `json:"background_color,omitempty"`
	YoutubeURL      string  `json:"youtube_url,omitempty"`
	Attributes      []Trait `json:"attributes,omitempty"`
}

// Approval grants a spender transfer rights over one item until Expires
// (nil = never expires).
type Approval struct {
	Spender Address    `json:"spender"`
	Expires *time.Time `json:"expires,omitempty"`
}

// Expired reports whether the approval has lapsed at the given instant
func (a Approval) Expired(now time.Time) bool {
	return a.Expires != nil && now.After(*a.Expires)
}

// OperatorGrant delegates transfer rights over all of an owner's items
type OperatorGrant struct {
	Owner    Address    `json:"owner"`
	Operator Address    `json:"operator"`
	Expires  *time.Time `json:"expires,omitempty"`
}

// Expired reports whether the grant has lapsed at the given instant
func (g OperatorGrant) Expired(now time.Time) bool {
	return g.Expires != nil && now.After(*g.Expires)
}

// Item is one uniquely numbered entry in the collection
type Item struct {
	TokenNumber string    `json:"token_number"`
	Owner       Address   `json:"owner"`
	Approvals   []Approval `json:"approvals,omitempty"`
	Metadata    *Metadata  `json:"metadata,omitempty"`
}

// BurnedEntry pairs an item id with its tombstone flag
type BurnedEntry struct {
	TokenNumber string `json:"token_number"`
	Burned      bool   `json:"burned"`
}
