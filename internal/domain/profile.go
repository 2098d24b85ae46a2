package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfileKind distinguishes income bundles from expense bundles.
type ProfileKind string

const (
	ProfileKindIncome  ProfileKind = "income"
	ProfileKindExpense ProfileKind = "expense"
)

// Profile is a named, reusable bundle of income or expense configuration.
// Exactly one of Income/Expenses is set, matching Kind.
type Profile struct {
	ID       string         `yaml:"id" json:"id"`
	Name     string         `yaml:"name" json:"name"`
	Kind     ProfileKind    `yaml:"kind" json:"kind"`
	Income   *IncomeConfig  `yaml:"income,omitempty" json:"income,omitempty"`
	Expenses *ExpenseConfig `yaml:"expenses,omitempty" json:"expenses,omitempty"`
}

// ProfileRef is one entry of a scenario's profile sequence. The effective
// profile at a simulation date is the active entry with the latest start
// date not after that date.
type ProfileRef struct {
	ProfileID string    `yaml:"profile_id" json:"profile_id"`
	StartDate time.Time `yaml:"start_date" json:"start_date"`
	IsActive  bool      `yaml:"is_active" json:"is_active"`
}

// Bonus is a lump payment made in a specific month each year.
type Bonus struct {
	Month  int             `yaml:"month" json:"month"` // 1-12
	Amount decimal.Decimal `yaml:"amount" json:"amount"`
}

// Earner is one household income source. WorkStatus maps calendar year to
// an FTE-style fraction (0.0-1.0); missing years default to full time.
type Earner struct {
	Name         string                  `yaml:"name" json:"name"`
	AnnualSalary decimal.Decimal         `yaml:"annual_salary" json:"annual_salary"`
	WorkStatus   map[int]decimal.Decimal `yaml:"work_status,omitempty" json:"work_status,omitempty"`
	Bonuses      []Bonus                 `yaml:"bonuses,omitempty" json:"bonuses,omitempty"`
}

// WorkFraction returns the earner's FTE fraction for a calendar year.
func (e *Earner) WorkFraction(year int) decimal.Decimal {
	if e.WorkStatus != nil {
		if f, ok := e.WorkStatus[year]; ok {
			return f
		}
	}
	return decimal.NewFromInt(1)
}

// IncomeConfig is a bundle of household income sources.
type IncomeConfig struct {
	Earners []Earner `yaml:"earners,omitempty" json:"earners,omitempty"`
}

// ExpenseConfig is a bundle of recurring monthly expense categories plus
// sparse one-off expenses keyed by month-key. Bills, Home and Living
// inflate at the general rate, Medical at the medical rate and Impounds at
// the property-tax rate.
type ExpenseConfig struct {
	Bills    decimal.Decimal `yaml:"bills,omitempty" json:"bills,omitempty"`
	Home     decimal.Decimal `yaml:"home,omitempty" json:"home,omitempty"`
	Living   decimal.Decimal `yaml:"living,omitempty" json:"living,omitempty"`
	Medical  decimal.Decimal `yaml:"medical,omitempty" json:"medical,omitempty"`
	Impounds decimal.Decimal `yaml:"impounds,omitempty" json:"impounds,omitempty"`

	OneOffs map[string]decimal.Decimal `yaml:"one_offs,omitempty" json:"one_offs,omitempty"`
}
