package calculation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hhplan/household-planner/internal/domain"
	"github.com/hhplan/household-planner/pkg/dateutil"
)

// maxSimulationMonths is a defensive ceiling against pathological horizon
// inputs. 100 years of monthly steps.
const maxSimulationMonths = 1200

// reverseMortgageRate is the fixed annual rate the reverse mortgage
// liability accrues at, independent of the market assumptions.
var reverseMortgageRate = decimal.NewFromFloat(0.06)

// Structural input violations are caller contract bugs and fail fast.
var (
	ErrMissingTiming  = errors.New("assumptions.timing is missing or invalid")
	ErrInvalidHorizon = errors.New("assumptions.horizon_years must be positive")
	ErrUnknownProfile = errors.New("profile sequence references unknown profile")
)

// Engine runs the deterministic monthly household simulation. A single
// run is strictly sequential; independent runs share no mutable state and
// may execute concurrently.
type Engine struct {
	Logger Logger
}

// NewEngine creates an engine with a no-op logger.
func NewEngine() *Engine {
	return &Engine{Logger: NopLogger{}}
}

// SetLogger sets the engine logger. A nil logger installs the no-op.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// simState is the engine-internal running state, threaded through the
// month loop. Bucket balances never go negative; the reverse mortgage
// balance only grows once active.
type simState struct {
	liquid     decimal.Decimal
	inherited  decimal.Decimal
	retirement decimal.Decimal

	rmBalance   decimal.Decimal
	rmActive    bool
	rmStartYear int
}

// loanPlan pairs a loan with its precomputed schedule index for the run.
// A plan is marked settled when a linked property sale pays the loan off
// out of the proceeds; settled plans stop charging from the next month.
type loanPlan struct {
	loan    *domain.Loan
	index   *ScheduleIndex
	settled bool
}

// Run simulates a scenario month by month over the configured horizon and
// returns the derived timeline and events. The scenario and profile
// catalog are read-only inputs. The run never exits early on insolvency:
// the reverse mortgage absorbs any residual shortfall, so the timeline
// always covers the full horizon.
func (e *Engine) Run(ctx context.Context, scenario *domain.Scenario, profiles map[string]domain.Profile) (*domain.SimulationResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateRunInputs(scenario, profiles); err != nil {
		return nil, err
	}

	assumptions := &scenario.Assumptions
	months := assumptions.HorizonYears * 12
	if months > maxSimulationMonths {
		e.Logger.Warnf("horizon of %d years exceeds ceiling, truncating to %d months", assumptions.HorizonYears, maxSimulationMonths)
		months = maxSimulationMonths
	}
	start := assumptions.Timing.StartDate()

	// Amortize every loan once up front; the month loop reads payments and
	// balances by month-key.
	plans := buildLoanPlans(scenario)
	properties := sortedProperties(scenario)

	state := initialState(scenario)
	growthFactor := one.Add(assumptions.Market.Initial.Div(twelve))
	rmGrowthFactor := one.Add(reverseMortgageRate.Div(twelve))

	result := &domain.SimulationResult{
		ScenarioName: scenario.Name,
		Timeline:     make([]domain.MonthlySnapshot, 0, months),
		Events:       []domain.Event{},
	}

	for m := 0; m < months; m++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		date := dateutil.AddMonths(start, m)
		key := dateutil.MonthKey(date)
		year := date.Year()

		incomeCfg := e.effectiveIncome(scenario, profiles, date)
		expenseCfg := e.effectiveExpenses(scenario, profiles, date)

		income := monthlyIncome(incomeCfg, year, int(date.Month()))
		recurring := recurringExpenses(expenseCfg, &assumptions.Inflation, m)
		oneOff := decimal.Zero
		if expenseCfg.OneOffs != nil {
			if amt, ok := expenseCfg.OneOffs[key]; ok {
				oneOff = amt
			}
		}

		debtService := decimal.Zero
		for _, plan := range plans {
			if plan.settled {
				continue
			}
			debtService = debtService.Add(plan.index.PaymentFor(key))
			if plan.index.PayoffKey() == key {
				result.Events = append(result.Events, domain.Event{
					Date: date,
					Text: fmt.Sprintf("%s Paid Off", loanLabel(plan.loan)),
				})
			}
		}

		// Scheduled property sales deposit net equity into liquid cash.
		// Linked loans are retired out of the proceeds and stop charging
		// after the sale month.
		for _, prop := range properties {
			if prop.Property.SellDate == nil || !dateutil.SameMonth(*prop.Property.SellDate, date) {
				continue
			}
			proceeds := saleProceeds(prop, scenario, plans, key, year)
			settleLinkedLoans(plans, prop)
			state.liquid = state.liquid.Add(proceeds)
			result.Events = append(result.Events, domain.Event{
				Date: date,
				Text: fmt.Sprintf("%s Sold", assetLabel(prop)),
			})
			e.Logger.Debugf("%s: sold %s for net proceeds %s", key, assetLabel(prop), proceeds.StringFixed(2))
		}

		expenses := recurring.Add(oneOff).Add(debtService)
		net := income.Sub(expenses)

		if net.IsNegative() {
			state = e.applyWaterfall(state, net.Neg(), date, year, result)
		} else {
			state.liquid = state.liquid.Add(net)
		}

		// Monthly growth: flat market-initial rate on every bucket; the
		// reverse mortgage accrues at its own fixed rate.
		state.liquid = state.liquid.Mul(growthFactor)
		state.inherited = state.inherited.Mul(growthFactor)
		state.retirement = state.retirement.Mul(growthFactor)
		state.rmBalance = state.rmBalance.Mul(rmGrowthFactor)

		snapshot := domain.MonthlySnapshot{
			Date:                   date,
			Year:                   year,
			Month:                  int(date.Month()),
			MonthKey:               key,
			Income:                 income,
			Expenses:               expenses,
			DebtService:            debtService,
			NetCashFlow:            net,
			LiquidCash:             state.liquid,
			InheritedBalance:       state.inherited,
			RetirementBalance:      state.retirement,
			ReverseMortgageBalance: state.rmBalance,
			ReverseMortgageActive:  state.rmActive,
		}
		snapshot.CalculateNetWorth()
		result.Timeline = append(result.Timeline, snapshot)
	}

	return result, nil
}

// RunConfiguration runs every scenario in a configuration document.
func (e *Engine) RunConfiguration(ctx context.Context, cfg *domain.Configuration) ([]*domain.SimulationResult, error) {
	results := make([]*domain.SimulationResult, 0, len(cfg.Scenarios))
	for i := range cfg.Scenarios {
		result, err := e.Run(ctx, &cfg.Scenarios[i], cfg.Profiles)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", cfg.Scenarios[i].Name, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// applyWaterfall drains the shortfall through the fixed bucket priority:
// liquid cash, inherited balance, retirement balance. Draining a bucket to
// zero emits a depletion event. Any residual need activates the reverse
// mortgage (event on first activation only) and converts into liability
// balance, so shortfall is always driven to zero.
func (e *Engine) applyWaterfall(state simState, need decimal.Decimal, date time.Time, year int, result *domain.SimulationResult) simState {
	buckets := []struct {
		balance *decimal.Decimal
		label   string
	}{
		{&state.liquid, "Liquid Cash"},
		{&state.inherited, "Inherited IRA"},
		{&state.retirement, "Retirement Savings"},
	}

	for _, bucket := range buckets {
		if !need.IsPositive() {
			break
		}
		if !bucket.balance.IsPositive() {
			continue
		}
		if bucket.balance.GreaterThanOrEqual(need) {
			*bucket.balance = bucket.balance.Sub(need)
			need = decimal.Zero
		} else {
			need = need.Sub(*bucket.balance)
			*bucket.balance = decimal.Zero
		}
		if bucket.balance.IsZero() {
			result.Events = append(result.Events, domain.Event{
				Date: date,
				Text: fmt.Sprintf("%s Depleted", bucket.label),
			})
		}
	}

	if need.IsPositive() {
		if !state.rmActive {
			state.rmActive = true
			state.rmStartYear = year
			result.Events = append(result.Events, domain.Event{
				Date: date,
				Text: "Reverse Mortgage Activated",
			})
			e.Logger.Infof("reverse mortgage activated in %d", year)
		}
		state.rmBalance = state.rmBalance.Add(need)
	}

	return state
}

func (e *Engine) effectiveIncome(scenario *domain.Scenario, profiles map[string]domain.Profile, date time.Time) *domain.IncomeConfig {
	if id, ok := ResolveProfile(scenario.IncomeSequence, date); ok {
		if profile, exists := profiles[id]; exists && profile.Income != nil {
			return profile.Income
		}
		e.Logger.Warnf("income profile %q has no income bundle, using inline fallback", id)
	}
	return &scenario.Income
}

func (e *Engine) effectiveExpenses(scenario *domain.Scenario, profiles map[string]domain.Profile, date time.Time) *domain.ExpenseConfig {
	if id, ok := ResolveProfile(scenario.ExpenseSequence, date); ok {
		if profile, exists := profiles[id]; exists && profile.Expenses != nil {
			return profile.Expenses
		}
		e.Logger.Warnf("expense profile %q has no expense bundle, using inline fallback", id)
	}
	return &scenario.Expenses
}

// monthlyIncome sums each earner's salary (annual/12) scaled by the
// calendar year's work-status fraction, plus bonuses landing this month,
// scaled by the same fraction.
func monthlyIncome(cfg *domain.IncomeConfig, year, month int) decimal.Decimal {
	total := decimal.Zero
	for i := range cfg.Earners {
		earner := &cfg.Earners[i]
		fraction := earner.WorkFraction(year)
		total = total.Add(earner.AnnualSalary.Div(twelve).Mul(fraction))
		for _, bonus := range earner.Bonuses {
			if bonus.Month == month {
				total = total.Add(bonus.Amount.Mul(fraction))
			}
		}
	}
	return total
}

// recurringExpenses applies the smooth monthly-compounded inflation factor
// (1+annual)^(monthsElapsed/12) per category group.
func recurringExpenses(cfg *domain.ExpenseConfig, inflation *domain.InflationAssumptions, monthsElapsed int) decimal.Decimal {
	general := cfg.Bills.Add(cfg.Home).Add(cfg.Living)
	total := general.Mul(inflationFactor(inflation.General, monthsElapsed))
	total = total.Add(cfg.Medical.Mul(inflationFactor(inflation.Medical, monthsElapsed)))
	total = total.Add(cfg.Impounds.Mul(inflationFactor(inflation.PropertyTax, monthsElapsed)))
	return total
}

func inflationFactor(annualRate decimal.Decimal, monthsElapsed int) decimal.Decimal {
	if annualRate.IsZero() || monthsElapsed == 0 {
		return one
	}
	factor := math.Pow(one.Add(annualRate).InexactFloat64(), float64(monthsElapsed)/12.0)
	return decimal.NewFromFloat(factor)
}

// saleProceeds prices a property sale: appreciated value through the sale
// year minus linked loan balances at the sale month, floored at zero.
func saleProceeds(asset *domain.AssetAccount, scenario *domain.Scenario, plans []loanPlan, monthKey string, year int) decimal.Decimal {
	value := PropertyValueAt(asset, &scenario.Assumptions, year)
	debt := decimal.Zero
	for _, id := range asset.Property.LinkedLoanIDs {
		for _, plan := range plans {
			if plan.loan.ID == id {
				debt = debt.Add(plan.index.BalanceAsOf(monthKey))
			}
		}
	}
	proceeds := value.Sub(debt)
	if proceeds.IsNegative() {
		return decimal.Zero
	}
	return proceeds
}

func settleLinkedLoans(plans []loanPlan, asset *domain.AssetAccount) {
	for _, id := range asset.Property.LinkedLoanIDs {
		for i := range plans {
			if plans[i].loan.ID == id {
				plans[i].settled = true
			}
		}
	}
}

func buildLoanPlans(scenario *domain.Scenario) []loanPlan {
	ids := make([]string, 0, len(scenario.Loans))
	for id := range scenario.Loans {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	plans := make([]loanPlan, 0, len(ids))
	for _, id := range ids {
		loan := scenario.Loans[id]
		plans = append(plans, loanPlan{
			loan:  &loan,
			index: NewScheduleIndex(&loan, Calculate(&loan, loan.ActiveExtraPayments())),
		})
	}
	return plans
}

func sortedProperties(scenario *domain.Scenario) []*domain.AssetAccount {
	ids := make([]string, 0, len(scenario.Assets))
	for id := range scenario.Assets {
		if scenario.Assets[id].Kind == domain.AssetKindProperty {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	properties := make([]*domain.AssetAccount, 0, len(ids))
	for _, id := range ids {
		asset := scenario.Assets[id]
		if asset.Property != nil {
			properties = append(properties, &asset)
		}
	}
	return properties
}

// initialState pools joint and cash accounts into liquid cash and seeds
// the inherited and retirement buckets. Property and other assets are not
// waterfall buckets.
func initialState(scenario *domain.Scenario) simState {
	state := simState{
		liquid:     decimal.Zero,
		inherited:  decimal.Zero,
		retirement: decimal.Zero,
		rmBalance:  decimal.Zero,
	}
	for _, asset := range scenario.Assets {
		switch asset.Kind {
		case domain.AssetKindJoint, domain.AssetKindCash:
			state.liquid = state.liquid.Add(asset.Balance)
		case domain.AssetKindInherited:
			state.inherited = state.inherited.Add(asset.Balance)
		case domain.AssetKindRetirement:
			state.retirement = state.retirement.Add(asset.Balance)
		}
	}
	return state
}

func validateRunInputs(scenario *domain.Scenario, profiles map[string]domain.Profile) error {
	timing := scenario.Assumptions.Timing
	if timing.StartYear <= 0 || timing.StartMonth < 1 || timing.StartMonth > 12 {
		return fmt.Errorf("%w: start_year=%d start_month=%d", ErrMissingTiming, timing.StartYear, timing.StartMonth)
	}
	if scenario.Assumptions.HorizonYears <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidHorizon, scenario.Assumptions.HorizonYears)
	}
	for _, ref := range scenario.IncomeSequence {
		if _, ok := profiles[ref.ProfileID]; !ok {
			return fmt.Errorf("%w: %q in income sequence", ErrUnknownProfile, ref.ProfileID)
		}
	}
	for _, ref := range scenario.ExpenseSequence {
		if _, ok := profiles[ref.ProfileID]; !ok {
			return fmt.Errorf("%w: %q in expense sequence", ErrUnknownProfile, ref.ProfileID)
		}
	}
	return nil
}

func loanLabel(loan *domain.Loan) string {
	if loan.Name != "" {
		return loan.Name
	}
	return loan.ID
}

func assetLabel(asset *domain.AssetAccount) string {
	if asset.Name != "" {
		return asset.Name
	}
	return asset.ID
}
