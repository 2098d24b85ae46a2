package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetKind identifies the growth and waterfall behavior of an account.
type AssetKind string

const (
	AssetKindProperty   AssetKind = "property"
	AssetKindInherited  AssetKind = "inherited"
	AssetKindRetirement AssetKind = "retirement"
	AssetKindJoint      AssetKind = "joint"
	AssetKindCash       AssetKind = "cash"
	AssetKindOther      AssetKind = "other"
)

// GrowthType selects the rate source for simple-growth projections.
type GrowthType string

const (
	// GrowthTypeMarket compounds at the global market.initial assumption.
	GrowthTypeMarket GrowthType = "market"
	// GrowthTypeFixed compounds at the asset's own fixed rate.
	GrowthTypeFixed GrowthType = "fixed"
)

// AssetAccount represents one account in a scenario. Balance is the current
// market value for property assets. The per-kind input blocks are nil for
// kinds they do not apply to, mirroring how optional scenario blocks are
// modeled elsewhere.
type AssetAccount struct {
	ID      string          `yaml:"id" json:"id"`
	Name    string          `yaml:"name" json:"name"`
	Kind    AssetKind       `yaml:"kind" json:"kind"`
	Balance decimal.Decimal `yaml:"balance" json:"balance"`
	Owner   string          `yaml:"owner,omitempty" json:"owner,omitempty"`

	GrowthType GrowthType      `yaml:"growth_type,omitempty" json:"growth_type,omitempty"`
	FixedRate  decimal.Decimal `yaml:"fixed_rate,omitempty" json:"fixed_rate,omitempty"`

	Property  *PropertyInputs  `yaml:"property,omitempty" json:"property,omitempty"`
	Inherited *InheritedInputs `yaml:"inherited,omitempty" json:"inherited,omitempty"`
}

// PropertyInputs carries property-specific projection inputs.
type PropertyInputs struct {
	BuildYear      int             `yaml:"build_year" json:"build_year"`
	LocationFactor decimal.Decimal `yaml:"location_factor,omitempty" json:"location_factor,omitempty"`
	LinkedLoanIDs  []string        `yaml:"linked_loan_ids,omitempty" json:"linked_loan_ids,omitempty"`
	SellDate       *time.Time      `yaml:"sell_date,omitempty" json:"sell_date,omitempty"`
}

// InheritedInputs anchors an inherited IRA's mandatory 10-year depletion
// window. WithdrawalSchedule maps calendar year to a withdrawal fraction
// (0.20 = 20%) overriding the default.
type InheritedInputs struct {
	StartDate          *time.Time              `yaml:"start_date,omitempty" json:"start_date,omitempty"`
	WithdrawalSchedule map[int]decimal.Decimal `yaml:"withdrawal_schedule,omitempty" json:"withdrawal_schedule,omitempty"`
}

// ProjectionBucket labels the state of a projected asset year.
type ProjectionBucket string

const (
	BucketActive ProjectionBucket = "active"
	BucketSold   ProjectionBucket = "sold"
)

// AssetProjectionPoint is one year of an asset growth projection. Debt,
// Equity, Withdrawal and Tax are populated only where the asset kind
// produces them.
type AssetProjectionPoint struct {
	Year       int              `json:"year"`
	Value      decimal.Decimal  `json:"value"`
	Debt       decimal.Decimal  `json:"debt"`
	Equity     decimal.Decimal  `json:"equity"`
	Withdrawal decimal.Decimal  `json:"withdrawal"`
	Tax        decimal.Decimal  `json:"tax"`
	Bucket     ProjectionBucket `json:"bucket"`
}
