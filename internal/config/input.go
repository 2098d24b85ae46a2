package config

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/hhplan/household-planner/internal/domain"
)

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a configuration document from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ValidateConfiguration validates the loaded configuration. Structural
// problems (missing timing, dangling references, malformed sequences) are
// hard failures; plausibility of amounts is deliberately not checked.
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if len(config.Scenarios) == 0 {
		return fmt.Errorf("no scenarios provided")
	}

	for id, profile := range config.Profiles {
		if err := ip.validateProfile(id, &profile); err != nil {
			return fmt.Errorf("profile %s validation failed: %w", id, err)
		}
	}

	for i := range config.Scenarios {
		if err := ip.validateScenario(&config.Scenarios[i], config.Profiles); err != nil {
			return fmt.Errorf("scenario %d validation failed: %w", i, err)
		}
	}

	return nil
}

func (ip *InputParser) validateProfile(id string, profile *domain.Profile) error {
	switch profile.Kind {
	case domain.ProfileKindIncome:
		if profile.Income == nil {
			return fmt.Errorf("income profile has no income bundle")
		}
	case domain.ProfileKindExpense:
		if profile.Expenses == nil {
			return fmt.Errorf("expense profile has no expense bundle")
		}
	default:
		return fmt.Errorf("profile kind must be 'income' or 'expense', got %q", profile.Kind)
	}
	if profile.ID != "" && profile.ID != id {
		return fmt.Errorf("profile id %q does not match catalog key %q", profile.ID, id)
	}
	return nil
}

func (ip *InputParser) validateScenario(scenario *domain.Scenario, profiles map[string]domain.Profile) error {
	if scenario.Name == "" {
		return fmt.Errorf("scenario name is required")
	}

	if err := ip.validateAssumptions(&scenario.Assumptions); err != nil {
		return fmt.Errorf("assumptions: %w", err)
	}

	for _, ref := range scenario.IncomeSequence {
		if err := validateProfileRef(&ref, profiles, domain.ProfileKindIncome); err != nil {
			return fmt.Errorf("income sequence: %w", err)
		}
	}
	for _, ref := range scenario.ExpenseSequence {
		if err := validateProfileRef(&ref, profiles, domain.ProfileKindExpense); err != nil {
			return fmt.Errorf("expense sequence: %w", err)
		}
	}

	for id, loan := range scenario.Loans {
		if err := ip.validateLoan(&loan); err != nil {
			return fmt.Errorf("loan %s: %w", id, err)
		}
	}

	for id, asset := range scenario.Assets {
		if err := ip.validateAsset(&asset, scenario.Loans); err != nil {
			return fmt.Errorf("asset %s: %w", id, err)
		}
	}

	return nil
}

func (ip *InputParser) validateAssumptions(assumptions *domain.GlobalAssumptions) error {
	if assumptions.Timing.StartYear < 1900 || assumptions.Timing.StartYear > 3000 {
		return fmt.Errorf("timing.start_year must be between 1900 and 3000, got %d", assumptions.Timing.StartYear)
	}
	if assumptions.Timing.StartMonth < 1 || assumptions.Timing.StartMonth > 12 {
		return fmt.Errorf("timing.start_month must be between 1 and 12, got %d", assumptions.Timing.StartMonth)
	}
	if assumptions.HorizonYears <= 0 || assumptions.HorizonYears > 100 {
		return fmt.Errorf("horizon_years must be between 1 and 100, got %d", assumptions.HorizonYears)
	}
	if assumptions.Inflation.General.LessThan(decimal.NewFromFloat(-0.10)) {
		return fmt.Errorf("general inflation cannot be less than -10%%")
	}
	if assumptions.Market.Initial.LessThan(decimal.NewFromFloat(-1.0)) {
		return fmt.Errorf("market initial return cannot be less than -100%%")
	}
	if assumptions.Property.MaxGrowth.IsNegative() {
		return fmt.Errorf("property max growth cannot be negative")
	}
	return nil
}

func (ip *InputParser) validateLoan(loan *domain.Loan) error {
	if loan.Kind != domain.LoanKindFixed && loan.Kind != domain.LoanKindRevolving {
		return fmt.Errorf("kind must be 'fixed' or 'revolving', got %q", loan.Kind)
	}
	// Reproducibility requires an explicit start date; there is no
	// "defaults to now" path.
	if loan.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if loan.AnnualRate.LessThan(decimal.Zero) {
		return fmt.Errorf("annual rate cannot be negative")
	}
	if loan.ScheduledPayment.IsNegative() {
		return fmt.Errorf("scheduled payment cannot be negative")
	}
	if loan.ActiveStrategyID != "" && loan.ActiveStrategy() == nil {
		return fmt.Errorf("active strategy %q not found", loan.ActiveStrategyID)
	}
	for _, strategy := range loan.Strategies {
		for key := range strategy.ExtraPayments {
			if _, err := time.Parse("2006-01", key); err != nil {
				return fmt.Errorf("strategy %s: malformed month key %q", strategy.ID, key)
			}
		}
	}
	return nil
}

func (ip *InputParser) validateAsset(asset *domain.AssetAccount, loans map[string]domain.Loan) error {
	switch asset.Kind {
	case domain.AssetKindProperty, domain.AssetKindInherited, domain.AssetKindRetirement,
		domain.AssetKindJoint, domain.AssetKindCash, domain.AssetKindOther:
	default:
		return fmt.Errorf("unknown asset kind %q", asset.Kind)
	}
	if asset.Kind == domain.AssetKindProperty && asset.Property != nil {
		for _, id := range asset.Property.LinkedLoanIDs {
			if _, ok := loans[id]; !ok {
				return fmt.Errorf("linked loan %q not found", id)
			}
		}
	}
	if asset.GrowthType != "" && asset.GrowthType != domain.GrowthTypeFixed && asset.GrowthType != domain.GrowthTypeMarket {
		return fmt.Errorf("growth type must be 'fixed' or 'market', got %q", asset.GrowthType)
	}
	return nil
}

func validateProfileRef(ref *domain.ProfileRef, profiles map[string]domain.Profile, kind domain.ProfileKind) error {
	profile, ok := profiles[ref.ProfileID]
	if !ok {
		return fmt.Errorf("profile %q not found in catalog", ref.ProfileID)
	}
	if profile.Kind != kind {
		return fmt.Errorf("profile %q is %s, expected %s", ref.ProfileID, profile.Kind, kind)
	}
	if ref.StartDate.IsZero() {
		return fmt.Errorf("profile ref %q has no start date", ref.ProfileID)
	}
	return nil
}

// SaveConfiguration writes a configuration document to a YAML file.
func SaveConfiguration(config *domain.Configuration, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// CreateExampleConfiguration creates a runnable example document: one
// scenario with a mortgage, a HELOC, a home, an inherited IRA and cash
// buckets, plus a retirement expense profile taking over mid-horizon.
func (ip *InputParser) CreateExampleConfiguration() *domain.Configuration {
	mortgageID := uuid.NewString()
	helocID := uuid.NewString()
	mortgageStart, _ := time.Parse("2006-01-02", "2020-06-01")
	helocStart, _ := time.Parse("2006-01-02", "2024-01-01")
	iraStart, _ := time.Parse("2006-01-02", "2026-01-01")
	retirementStart, _ := time.Parse("2006-01-02", "2031-01-01")

	return &domain.Configuration{
		Profiles: map[string]domain.Profile{
			"retired-expenses": {
				ID:   "retired-expenses",
				Name: "Retired Household",
				Kind: domain.ProfileKindExpense,
				Expenses: &domain.ExpenseConfig{
					Bills:    decimal.NewFromInt(900),
					Home:     decimal.NewFromInt(1200),
					Living:   decimal.NewFromInt(2500),
					Medical:  decimal.NewFromInt(1100),
					Impounds: decimal.NewFromInt(650),
				},
			},
		},
		Scenarios: []domain.Scenario{
			{
				Name: "Baseline",
				Assumptions: domain.GlobalAssumptions{
					Timing: domain.Timing{StartYear: 2026, StartMonth: 1},
					Inflation: domain.InflationAssumptions{
						General:     decimal.NewFromFloat(0.03),
						Medical:     decimal.NewFromFloat(0.055),
						PropertyTax: decimal.NewFromFloat(0.02),
					},
					Market: domain.MarketAssumptions{
						Initial:     decimal.NewFromFloat(0.06),
						Terminal:    decimal.NewFromFloat(0.04),
						TaperEndAge: 75,
					},
					Property: domain.PropertyAssumptions{
						BaselineGrowth:  decimal.NewFromFloat(0.03),
						NewHomeYears:    10,
						MidHomeYears:    20,
						NewHomeAddon:    decimal.NewFromFloat(0.01),
						MidHomeAddon:    decimal.NewFromFloat(0.005),
						MatureHomeAddon: decimal.Zero,
						MaxGrowth:       decimal.NewFromFloat(0.06),
					},
					HorizonYears: 30,
				},
				Income: domain.IncomeConfig{
					Earners: []domain.Earner{
						{
							Name:         "Alex",
							AnnualSalary: decimal.NewFromInt(140000),
							WorkStatus: map[int]decimal.Decimal{
								2031: decimal.NewFromFloat(0.5),
								2032: decimal.Zero,
							},
							Bonuses: []domain.Bonus{
								{Month: 3, Amount: decimal.NewFromInt(10000)},
							},
						},
						{
							Name:         "Jordan",
							AnnualSalary: decimal.NewFromInt(95000),
						},
					},
				},
				Expenses: domain.ExpenseConfig{
					Bills:    decimal.NewFromInt(1100),
					Home:     decimal.NewFromInt(1500),
					Living:   decimal.NewFromInt(3200),
					Medical:  decimal.NewFromInt(600),
					Impounds: decimal.NewFromInt(650),
					OneOffs: map[string]decimal.Decimal{
						"2027-08": decimal.NewFromInt(25000),
					},
				},
				ExpenseSequence: []domain.ProfileRef{
					{ProfileID: "retired-expenses", StartDate: retirementStart, IsActive: true},
				},
				Assets: map[string]domain.AssetAccount{
					"home": {
						ID:      "home",
						Name:    "Primary Residence",
						Kind:    domain.AssetKindProperty,
						Balance: decimal.NewFromInt(850000),
						Property: &domain.PropertyInputs{
							BuildYear:      2005,
							LocationFactor: decimal.NewFromFloat(0.005),
							LinkedLoanIDs:  []string{mortgageID, helocID},
						},
					},
					"inherited-ira": {
						ID:        "inherited-ira",
						Name:      "Inherited IRA",
						Kind:      domain.AssetKindInherited,
						Balance:   decimal.NewFromInt(400000),
						Inherited: &domain.InheritedInputs{StartDate: &iraStart},
					},
					"401k": {
						ID:      "401k",
						Name:    "Retirement Savings",
						Kind:    domain.AssetKindRetirement,
						Balance: decimal.NewFromInt(750000),
					},
					"joint-checking": {
						ID:      "joint-checking",
						Name:    "Joint Checking",
						Kind:    domain.AssetKindJoint,
						Balance: decimal.NewFromInt(60000),
					},
				},
				Loans: map[string]domain.Loan{
					mortgageID: {
						ID:               mortgageID,
						Name:             "Mortgage",
						Kind:             domain.LoanKindFixed,
						Principal:        decimal.NewFromInt(420000),
						AnnualRate:       decimal.NewFromFloat(0.0425),
						ScheduledPayment: decimal.NewFromInt(2460),
						StartDate:        mortgageStart,
						TermMonths:       360,
						Strategies: []domain.PaymentStrategy{
							{
								ID:   "baseline",
								Name: "No extra payments",
							},
							{
								ID:   "accelerated",
								Name: "Annual bonus to principal",
								ExtraPayments: map[string]decimal.Decimal{
									"2027-03": decimal.NewFromInt(10000),
									"2028-03": decimal.NewFromInt(10000),
								},
							},
						},
						ActiveStrategyID: "accelerated",
					},
					helocID: {
						ID:               helocID,
						Name:             "HELOC",
						Kind:             domain.LoanKindRevolving,
						Principal:        decimal.NewFromInt(40000),
						AnnualRate:       decimal.NewFromFloat(0.082),
						ScheduledPayment: decimal.NewFromInt(450),
						StartDate:        helocStart,
					},
				},
			},
		},
	}
}
