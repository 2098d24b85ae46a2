package domain

// Scenario is a fully resolved simulation input: assumptions, inline
// income/expense fallbacks, profile sequences, and the asset/loan
// registries, with all upstream references already flattened. The engine
// treats a scenario as read-only for the duration of a run.
type Scenario struct {
	Name        string            `yaml:"name" json:"name"`
	Assumptions GlobalAssumptions `yaml:"assumptions" json:"assumptions"`

	// Inline fallbacks used when no profile in the sequence is effective.
	Income   IncomeConfig  `yaml:"income,omitempty" json:"income,omitempty"`
	Expenses ExpenseConfig `yaml:"expenses,omitempty" json:"expenses,omitempty"`

	IncomeSequence  []ProfileRef `yaml:"income_sequence,omitempty" json:"income_sequence,omitempty"`
	ExpenseSequence []ProfileRef `yaml:"expense_sequence,omitempty" json:"expense_sequence,omitempty"`

	Assets map[string]AssetAccount `yaml:"assets,omitempty" json:"assets,omitempty"`
	Loans  map[string]Loan         `yaml:"loans,omitempty" json:"loans,omitempty"`
}

// Configuration is the top-level input document: a profile catalog shared
// by one or more scenarios.
type Configuration struct {
	Profiles  map[string]Profile `yaml:"profiles,omitempty" json:"profiles,omitempty"`
	Scenarios []Scenario         `yaml:"scenarios" json:"scenarios"`
}
