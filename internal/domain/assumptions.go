package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Timing anchors a simulation run to a calendar start month.
type Timing struct {
	StartYear  int `yaml:"start_year" json:"start_year"`
	StartMonth int `yaml:"start_month" json:"start_month"` // 1-12
}

// StartDate returns the first simulation month as a date (first of month, UTC).
func (t Timing) StartDate() time.Time {
	return time.Date(t.StartYear, time.Month(t.StartMonth), 1, 0, 0, 0, 0, time.UTC)
}

// InflationAssumptions holds per-category annual inflation rates in decimal
// form (0.03 = 3%).
type InflationAssumptions struct {
	General     decimal.Decimal `yaml:"general" json:"general"`
	Medical     decimal.Decimal `yaml:"medical" json:"medical"`
	PropertyTax decimal.Decimal `yaml:"property_tax" json:"property_tax"`
}

// MarketAssumptions describes the investment return glide path: Initial
// tapering toward Terminal by TaperEndAge. The monthly engine applies the
// flat Initial rate; the taper applies to projector-level visualization.
type MarketAssumptions struct {
	Initial     decimal.Decimal `yaml:"initial" json:"initial"`
	Terminal    decimal.Decimal `yaml:"terminal" json:"terminal"`
	TaperEndAge int             `yaml:"taper_end_age,omitempty" json:"taper_end_age,omitempty"`
}

// PropertyAssumptions parameterize age-banded home appreciation. A home
// aged at most NewHomeYears earns NewHomeAddon over the baseline, one aged
// at most NewHomeYears+MidHomeYears earns MidHomeAddon, anything older
// earns MatureHomeAddon. The combined rate is clamped to [0, MaxGrowth].
type PropertyAssumptions struct {
	BaselineGrowth  decimal.Decimal `yaml:"baseline_growth" json:"baseline_growth"`
	NewHomeYears    int             `yaml:"new_home_years" json:"new_home_years"`
	MidHomeYears    int             `yaml:"mid_home_years" json:"mid_home_years"`
	NewHomeAddon    decimal.Decimal `yaml:"new_home_addon" json:"new_home_addon"`
	MidHomeAddon    decimal.Decimal `yaml:"mid_home_addon" json:"mid_home_addon"`
	MatureHomeAddon decimal.Decimal `yaml:"mature_home_addon" json:"mature_home_addon"`
	MaxGrowth       decimal.Decimal `yaml:"max_growth" json:"max_growth"`
}

// GlobalAssumptions is the read-only assumption set for one scenario.
type GlobalAssumptions struct {
	Timing       Timing               `yaml:"timing" json:"timing"`
	Inflation    InflationAssumptions `yaml:"inflation" json:"inflation"`
	Market       MarketAssumptions    `yaml:"market" json:"market"`
	Property     PropertyAssumptions  `yaml:"property" json:"property"`
	HorizonYears int                  `yaml:"horizon_years" json:"horizon_years"`
}

// GenerateAssumptions returns human-readable assumption lines for reports.
func (ga *GlobalAssumptions) GenerateAssumptions() []string {
	pct := func(d decimal.Decimal) string {
		return d.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
	}
	return []string{
		fmt.Sprintf("Simulation start: %04d-%02d, horizon %d years", ga.Timing.StartYear, ga.Timing.StartMonth, ga.HorizonYears),
		fmt.Sprintf("General inflation %s, medical %s, property tax %s", pct(ga.Inflation.General), pct(ga.Inflation.Medical), pct(ga.Inflation.PropertyTax)),
		fmt.Sprintf("Market return %s initial, %s terminal by age %d", pct(ga.Market.Initial), pct(ga.Market.Terminal), ga.Market.TaperEndAge),
		fmt.Sprintf("Property baseline growth %s, capped at %s", pct(ga.Property.BaselineGrowth), pct(ga.Property.MaxGrowth)),
	}
}
