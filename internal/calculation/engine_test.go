package calculation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hhplan/household-planner/internal/domain"
)

// testScenario is a minimal valid scenario: one-year horizon starting
// January 2026, zero market growth, zero inflation. Tests override what
// they exercise.
func testScenario() *domain.Scenario {
	return &domain.Scenario{
		Name: "test",
		Assumptions: domain.GlobalAssumptions{
			Timing:       domain.Timing{StartYear: 2026, StartMonth: 1},
			HorizonYears: 1,
		},
		Assets: map[string]domain.AssetAccount{},
		Loans:  map[string]domain.Loan{},
	}
}

func eventTexts(result *domain.SimulationResult) []string {
	texts := make([]string, 0, len(result.Events))
	for _, ev := range result.Events {
		texts = append(texts, ev.Text)
	}
	return texts
}

func countEvent(result *domain.SimulationResult, text string) int {
	n := 0
	for _, ev := range result.Events {
		if ev.Text == text {
			n++
		}
	}
	return n
}

func TestEngineTwelveMonthBaseline(t *testing.T) {
	scenario := testScenario()
	scenario.Assumptions.Market.Initial = decimal.NewFromFloat(0.06)
	scenario.Expenses = domain.ExpenseConfig{Bills: decimal.NewFromInt(100)}
	scenario.Assets["cash"] = domain.AssetAccount{
		ID:      "cash",
		Kind:    domain.AssetKindCash,
		Balance: decimal.NewFromInt(1000),
	}

	result, err := NewEngine().Run(context.Background(), scenario, nil)
	require.NoError(t, err)
	require.Len(t, result.Timeline, 12)

	first := result.Timeline[0]
	assert.Equal(t, "2026-01", first.MonthKey)
	assert.True(t, first.Income.IsZero())
	assert.True(t, first.Expenses.Equal(decimal.NewFromInt(100)))
	assert.True(t, first.NetCashFlow.Equal(decimal.NewFromInt(-100)))
	assert.True(t, first.HasDeficit())

	// Cash flow applies before the monthly growth step:
	// (1000 - 100) * (1 + 0.06/12) = 904.5.
	assert.True(t, first.LiquidCash.Equal(decimal.NewFromFloat(904.5)),
		"got %s", first.LiquidCash)
	assert.True(t, first.NetWorth.Equal(decimal.NewFromFloat(904.5)))
	assert.False(t, first.ReverseMortgageActive)

	// The cash runs out in month 10; the same month activates the
	// reverse mortgage because no other bucket exists.
	require.Len(t, result.Events, 2)
	assert.Equal(t, "Liquid Cash Depleted", result.Events[0].Text)
	assert.Equal(t, "Reverse Mortgage Activated", result.Events[1].Text)
	assert.Equal(t, result.Timeline[10].Date, result.Events[0].Date)

	for i, row := range result.Timeline {
		if i < 10 {
			assert.False(t, row.ReverseMortgageActive, "month %d", i)
			assert.True(t, row.LiquidCash.IsPositive(), "month %d", i)
		} else {
			assert.True(t, row.ReverseMortgageActive, "month %d", i)
			assert.True(t, row.ReverseMortgageBalance.IsPositive(), "month %d", i)
		}
	}
}

func TestEngineWaterfallOrdering(t *testing.T) {
	scenario := testScenario()
	scenario.Expenses = domain.ExpenseConfig{Bills: decimal.NewFromInt(100)}
	scenario.Assets["cash"] = domain.AssetAccount{
		ID: "cash", Kind: domain.AssetKindCash, Balance: decimal.NewFromInt(50),
	}
	scenario.Assets["ira"] = domain.AssetAccount{
		ID: "ira", Kind: domain.AssetKindInherited, Balance: decimal.NewFromInt(1000),
	}
	scenario.Assets["401k"] = domain.AssetAccount{
		ID: "401k", Kind: domain.AssetKindRetirement, Balance: decimal.NewFromInt(1000),
	}

	result, err := NewEngine().Run(context.Background(), scenario, nil)
	require.NoError(t, err)
	require.Len(t, result.Timeline, 12)

	// Month 1: liquid absorbs its 50, the inherited bucket covers the rest.
	first := result.Timeline[0]
	assert.True(t, first.LiquidCash.IsZero())
	assert.True(t, first.InheritedBalance.Equal(decimal.NewFromInt(950)))
	assert.True(t, first.RetirementBalance.Equal(decimal.NewFromInt(1000)),
		"retirement must not be touched while inherited funds remain")
	assert.False(t, first.ReverseMortgageActive)

	// Retirement stays whole until the inherited bucket drains in month 11.
	assert.True(t, result.Timeline[9].InheritedBalance.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.Timeline[9].RetirementBalance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, result.Timeline[10].InheritedBalance.IsZero())
	assert.True(t, result.Timeline[10].RetirementBalance.Equal(decimal.NewFromInt(950)))

	final := result.FinalSnapshot()
	require.NotNil(t, final)
	assert.True(t, final.RetirementBalance.Equal(decimal.NewFromInt(850)))
	assert.False(t, final.ReverseMortgageActive)

	assert.Equal(t, []string{"Liquid Cash Depleted", "Inherited IRA Depleted"}, eventTexts(result))
	assert.Equal(t, result.Timeline[0].Date, result.Events[0].Date)
	assert.Equal(t, result.Timeline[10].Date, result.Events[1].Date)
}

func TestEngineReverseMortgageActivation(t *testing.T) {
	scenario := testScenario()
	scenario.Expenses = domain.ExpenseConfig{Bills: decimal.NewFromInt(100)}

	result, err := NewEngine().Run(context.Background(), scenario, nil)
	require.NoError(t, err)
	require.Len(t, result.Timeline, 12)

	// With no buckets at all, month 1 activates the reverse mortgage and
	// the liability accrues at its fixed 6% annual rate:
	// 100 * (1 + 0.06/12) = 100.5.
	first := result.Timeline[0]
	assert.True(t, first.ReverseMortgageActive)
	assert.True(t, first.ReverseMortgageBalance.Equal(decimal.NewFromFloat(100.5)),
		"got %s", first.ReverseMortgageBalance)
	assert.True(t, first.NetWorth.Equal(decimal.NewFromFloat(-100.5)))

	// Activation fires exactly once; empty buckets never emit depletion
	// events.
	assert.Equal(t, 1, countEvent(result, "Reverse Mortgage Activated"))
	require.Len(t, result.Events, 1)

	// The liability only grows.
	prev := decimal.Zero
	for i, row := range result.Timeline {
		assert.True(t, row.ReverseMortgageBalance.GreaterThan(prev), "month %d", i)
		prev = row.ReverseMortgageBalance
	}
}

func TestEngineLoanPayoffEvent(t *testing.T) {
	scenario := testScenario()
	scenario.Assets["cash"] = domain.AssetAccount{
		ID: "cash", Kind: domain.AssetKindCash, Balance: decimal.NewFromInt(1000),
	}
	scenario.Loans["car"] = domain.Loan{
		ID:               "car",
		Name:             "Car Loan",
		Kind:             domain.LoanKindFixed,
		Principal:        decimal.NewFromInt(300),
		AnnualRate:       decimal.Zero,
		ScheduledPayment: decimal.NewFromInt(100),
		StartDate:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	result, err := NewEngine().Run(context.Background(), scenario, nil)
	require.NoError(t, err)
	require.Len(t, result.Timeline, 12)

	for i, row := range result.Timeline {
		if i < 3 {
			assert.True(t, row.DebtService.Equal(decimal.NewFromInt(100)), "month %d", i)
		} else {
			assert.True(t, row.DebtService.IsZero(), "month %d", i)
		}
	}

	require.Equal(t, 1, countEvent(result, "Car Loan Paid Off"))
	assert.Equal(t, result.Timeline[2].Date, result.Events[0].Date)
	assert.True(t, result.FinalSnapshot().LiquidCash.Equal(decimal.NewFromInt(700)))
}

func TestEnginePropertySale(t *testing.T) {
	scenario := testScenario()
	sellDate := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	scenario.Income = domain.IncomeConfig{
		Earners: []domain.Earner{{Name: "A", AnnualSalary: decimal.NewFromInt(12000)}},
	}
	scenario.Loans["mortgage"] = domain.Loan{
		ID:               "mortgage",
		Name:             "Mortgage",
		Kind:             domain.LoanKindFixed,
		Principal:        decimal.NewFromInt(100000),
		AnnualRate:       decimal.Zero,
		ScheduledPayment: decimal.NewFromInt(1000),
		StartDate:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	scenario.Assets["home"] = domain.AssetAccount{
		ID:      "home",
		Name:    "Home",
		Kind:    domain.AssetKindProperty,
		Balance: decimal.NewFromInt(500000),
		Property: &domain.PropertyInputs{
			BuildYear:     2020,
			LinkedLoanIDs: []string{"mortgage"},
			SellDate:      &sellDate,
		},
	}

	result, err := NewEngine().Run(context.Background(), scenario, nil)
	require.NoError(t, err)
	require.Len(t, result.Timeline, 12)

	// Through May the salary exactly covers the mortgage payment.
	for i := 0; i < 5; i++ {
		assert.True(t, result.Timeline[i].LiquidCash.IsZero(), "month %d", i)
		assert.True(t, result.Timeline[i].DebtService.Equal(decimal.NewFromInt(1000)), "month %d", i)
	}

	// June: the sale nets value minus the remaining balance after the
	// June payment (500000 - 94000), and the loan stops charging after.
	june := result.Timeline[5]
	assert.True(t, june.DebtService.Equal(decimal.NewFromInt(1000)))
	assert.True(t, june.LiquidCash.Equal(decimal.NewFromInt(406000)), "got %s", june.LiquidCash)

	july := result.Timeline[6]
	assert.True(t, july.DebtService.IsZero(), "settled loan must not keep charging")

	// Salary keeps accumulating for the remaining six months.
	assert.True(t, result.FinalSnapshot().LiquidCash.Equal(decimal.NewFromInt(412000)))
	assert.Equal(t, []string{"Home Sold"}, eventTexts(result))
	assert.Equal(t, june.Date, result.Events[0].Date)
}

func TestEngineProfileSwitch(t *testing.T) {
	scenario := testScenario()
	scenario.Income = domain.IncomeConfig{} // inline fallback: no income
	scenario.Expenses = domain.ExpenseConfig{Bills: decimal.NewFromInt(100)}
	scenario.Assets["cash"] = domain.AssetAccount{
		ID: "cash", Kind: domain.AssetKindCash, Balance: decimal.NewFromInt(10000),
	}
	scenario.IncomeSequence = []domain.ProfileRef{
		{ProfileID: "pension", StartDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), IsActive: true},
	}
	scenario.ExpenseSequence = []domain.ProfileRef{
		{ProfileID: "retired-spend", StartDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), IsActive: true},
	}
	profiles := map[string]domain.Profile{
		"pension": {
			ID:   "pension",
			Kind: domain.ProfileKindIncome,
			Income: &domain.IncomeConfig{
				Earners: []domain.Earner{{Name: "A", AnnualSalary: decimal.NewFromInt(12000)}},
			},
		},
		"retired-spend": {
			ID:       "retired-spend",
			Kind:     domain.ProfileKindExpense,
			Expenses: &domain.ExpenseConfig{Bills: decimal.NewFromInt(200)},
		},
	}

	result, err := NewEngine().Run(context.Background(), scenario, profiles)
	require.NoError(t, err)
	require.Len(t, result.Timeline, 12)

	for i, row := range result.Timeline {
		if i < 6 {
			assert.True(t, row.Income.IsZero(), "month %d", i)
			assert.True(t, row.Expenses.Equal(decimal.NewFromInt(100)), "month %d", i)
		} else {
			assert.True(t, row.Income.Equal(decimal.NewFromInt(1000)), "month %d", i)
			assert.True(t, row.Expenses.Equal(decimal.NewFromInt(200)), "month %d", i)
		}
	}
}

func TestEngineBonusAndWorkStatus(t *testing.T) {
	scenario := testScenario()
	scenario.Income = domain.IncomeConfig{
		Earners: []domain.Earner{{
			Name:         "A",
			AnnualSalary: decimal.NewFromInt(12000),
			WorkStatus:   map[int]decimal.Decimal{2026: decimal.NewFromFloat(0.5)},
			Bonuses:      []domain.Bonus{{Month: 3, Amount: decimal.NewFromInt(1000)}},
		}},
	}
	scenario.Assets["cash"] = domain.AssetAccount{
		ID: "cash", Kind: domain.AssetKindCash, Balance: decimal.NewFromInt(1000),
	}

	result, err := NewEngine().Run(context.Background(), scenario, nil)
	require.NoError(t, err)

	// Half-time salary all year; the March bonus scales by the same
	// fraction.
	assert.True(t, result.Timeline[0].Income.Equal(decimal.NewFromInt(500)))
	assert.True(t, result.Timeline[2].Income.Equal(decimal.NewFromInt(1000)))
	assert.True(t, result.Timeline[3].Income.Equal(decimal.NewFromInt(500)))
}

func TestEngineInflationCompoundsMonthly(t *testing.T) {
	scenario := testScenario()
	scenario.Assumptions.HorizonYears = 2
	scenario.Assumptions.Inflation.General = decimal.NewFromFloat(0.03)
	scenario.Expenses = domain.ExpenseConfig{Bills: decimal.NewFromInt(100)}
	scenario.Assets["cash"] = domain.AssetAccount{
		ID: "cash", Kind: domain.AssetKindCash, Balance: decimal.NewFromInt(100000),
	}

	result, err := NewEngine().Run(context.Background(), scenario, nil)
	require.NoError(t, err)
	require.Len(t, result.Timeline, 24)

	// Month 0 uses a factor of exactly 1.
	assert.True(t, result.Timeline[0].Expenses.Equal(decimal.NewFromInt(100)))
	// (1.03)^(6/12) after half a year, (1.03)^1 after a full year.
	assert.InDelta(t, 101.4889, result.Timeline[6].Expenses.InexactFloat64(), 0.001)
	assert.InDelta(t, 103.0, result.Timeline[12].Expenses.InexactFloat64(), 0.001)
}

func TestEngineOneOffExpenses(t *testing.T) {
	scenario := testScenario()
	scenario.Expenses = domain.ExpenseConfig{
		OneOffs: map[string]decimal.Decimal{"2026-04": decimal.NewFromInt(2500)},
	}
	scenario.Assets["cash"] = domain.AssetAccount{
		ID: "cash", Kind: domain.AssetKindCash, Balance: decimal.NewFromInt(10000),
	}

	result, err := NewEngine().Run(context.Background(), scenario, nil)
	require.NoError(t, err)

	assert.True(t, result.Timeline[2].Expenses.IsZero())
	assert.True(t, result.Timeline[3].Expenses.Equal(decimal.NewFromInt(2500)))
	assert.True(t, result.Timeline[4].Expenses.IsZero())
}

func TestEngineInputValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *domain.Scenario)
		wantErr error
	}{
		{
			name:    "Missing timing",
			mutate:  func(s *domain.Scenario) { s.Assumptions.Timing = domain.Timing{} },
			wantErr: ErrMissingTiming,
		},
		{
			name:    "Month out of range",
			mutate:  func(s *domain.Scenario) { s.Assumptions.Timing.StartMonth = 13 },
			wantErr: ErrMissingTiming,
		},
		{
			name:    "Zero horizon",
			mutate:  func(s *domain.Scenario) { s.Assumptions.HorizonYears = 0 },
			wantErr: ErrInvalidHorizon,
		},
		{
			name: "Unknown income profile",
			mutate: func(s *domain.Scenario) {
				s.IncomeSequence = []domain.ProfileRef{{ProfileID: "ghost", IsActive: true}}
			},
			wantErr: ErrUnknownProfile,
		},
		{
			name: "Unknown expense profile",
			mutate: func(s *domain.Scenario) {
				s.ExpenseSequence = []domain.ProfileRef{{ProfileID: "ghost", IsActive: true}}
			},
			wantErr: ErrUnknownProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := testScenario()
			tt.mutate(scenario)
			_, err := NewEngine().Run(context.Background(), scenario, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestEngineContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scenario := testScenario()
	_, err := NewEngine().Run(ctx, scenario, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineHorizonCeiling(t *testing.T) {
	scenario := testScenario()
	scenario.Assumptions.HorizonYears = 200

	result, err := NewEngine().Run(context.Background(), scenario, nil)
	require.NoError(t, err)
	assert.Len(t, result.Timeline, 1200)
}

func TestEngineDeterminism(t *testing.T) {
	build := func() *domain.Scenario {
		scenario := testScenario()
		scenario.Assumptions.Market.Initial = decimal.NewFromFloat(0.05)
		scenario.Expenses = domain.ExpenseConfig{Bills: decimal.NewFromInt(500)}
		scenario.Assets["cash"] = domain.AssetAccount{
			ID: "cash", Kind: domain.AssetKindCash, Balance: decimal.NewFromInt(2000),
		}
		scenario.Assets["ira"] = domain.AssetAccount{
			ID: "ira", Kind: domain.AssetKindInherited, Balance: decimal.NewFromInt(3000),
		}
		scenario.Assets["401k"] = domain.AssetAccount{
			ID: "401k", Kind: domain.AssetKindRetirement, Balance: decimal.NewFromInt(3000),
		}
		for _, id := range []string{"a-loan", "b-loan", "c-loan"} {
			scenario.Loans[id] = domain.Loan{
				ID:               id,
				Kind:             domain.LoanKindFixed,
				Principal:        decimal.NewFromInt(600),
				AnnualRate:       decimal.Zero,
				ScheduledPayment: decimal.NewFromInt(100),
				StartDate:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			}
		}
		return scenario
	}

	engine := NewEngine()
	first, err := engine.Run(context.Background(), build(), nil)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), build(), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical inputs must reproduce bit-identical output")
}

func TestEngineRunConfiguration(t *testing.T) {
	cfg := &domain.Configuration{
		Scenarios: []domain.Scenario{*testScenario(), *testScenario()},
	}
	cfg.Scenarios[0].Name = "base"
	cfg.Scenarios[1].Name = "aggressive"

	results, err := NewEngine().RunConfiguration(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "base", results[0].ScenarioName)
	assert.Equal(t, "aggressive", results[1].ScenarioName)
}

func TestEngineRunConfigurationWrapsScenarioError(t *testing.T) {
	cfg := &domain.Configuration{
		Scenarios: []domain.Scenario{*testScenario()},
	}
	cfg.Scenarios[0].Name = "broken"
	cfg.Scenarios[0].Assumptions.HorizonYears = -1

	_, err := NewEngine().RunConfiguration(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidHorizon)
	assert.Contains(t, err.Error(), "broken")
}
