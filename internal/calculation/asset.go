package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/hhplan/household-planner/internal/domain"
	"github.com/hhplan/household-planner/pkg/dateutil"
)

// Inherited-IRA depletion rules: withdrawals are mandatory for eleven
// calendar years starting at the anchor year, default 20% of the balance,
// forced to 100% in the final year.
const inheritedDepletionYears = 10

var defaultInheritedWithdrawalRate = decimal.NewFromFloat(0.20)

// Withdrawal tax is a flat rate per bracket applied to the entire gross
// withdrawal, not marginal across boundaries.
var inheritedTaxBrackets = []struct {
	floor decimal.Decimal
	rate  decimal.Decimal
}{
	{decimal.NewFromInt(600000), decimal.NewFromFloat(0.48)},
	{decimal.NewFromInt(400000), decimal.NewFromFloat(0.40)},
	{decimal.NewFromInt(200000), decimal.NewFromFloat(0.32)},
}

var inheritedTaxBaseRate = decimal.NewFromFloat(0.25)

// CalculateAssetGrowth produces a year-by-year projection for one asset,
// dispatching on the asset kind. Property and inherited accounts have
// their own rules; every other kind compounds at a simple annual rate.
// The projection always spans horizonYears+1 points starting at the
// scenario's start year.
func CalculateAssetGrowth(asset *domain.AssetAccount, assumptions *domain.GlobalAssumptions, loans map[string]domain.Loan, horizonYears int) []domain.AssetProjectionPoint {
	switch asset.Kind {
	case domain.AssetKindProperty:
		return projectHomeValue(asset, assumptions, loans, horizonYears)
	case domain.AssetKindInherited:
		return projectInheritedIRA(asset, assumptions, horizonYears)
	default:
		return projectSimpleGrowth(asset, assumptions, horizonYears)
	}
}

// projectSimpleGrowth compounds the balance once per year at the asset's
// fixed rate or the market initial rate. No glide-path taper applies here;
// this is a coarse visualization aid.
func projectSimpleGrowth(asset *domain.AssetAccount, assumptions *domain.GlobalAssumptions, horizonYears int) []domain.AssetProjectionPoint {
	rate := assumptions.Market.Initial
	if asset.GrowthType == domain.GrowthTypeFixed {
		rate = asset.FixedRate
	}
	growth := one.Add(rate)

	startYear := assumptions.Timing.StartYear
	points := make([]domain.AssetProjectionPoint, 0, horizonYears+1)
	value := asset.Balance
	for i := 0; i <= horizonYears; i++ {
		if i > 0 {
			value = value.Mul(growth)
		}
		points = append(points, domain.AssetProjectionPoint{
			Year:   startYear + i,
			Value:  value,
			Bucket: domain.BucketActive,
		})
	}
	return points
}

// projectHomeValue projects a property's market value with an age-banded
// appreciation rate and nets linked loan balances into equity. Each linked
// loan is amortized once and indexed by month-key; the debt for a year is
// the sum of linked balances as of January. From the sell year on, every
// point reports zero value, debt and equity in the sold bucket.
func projectHomeValue(asset *domain.AssetAccount, assumptions *domain.GlobalAssumptions, loans map[string]domain.Loan, horizonYears int) []domain.AssetProjectionPoint {
	prop := asset.Property
	if prop == nil {
		prop = &domain.PropertyInputs{BuildYear: assumptions.Timing.StartYear}
	}

	var indexes []*ScheduleIndex
	for _, id := range prop.LinkedLoanIDs {
		if loan, ok := loans[id]; ok {
			l := loan
			indexes = append(indexes, NewScheduleIndex(&l, Calculate(&l, l.ActiveExtraPayments())))
		}
	}

	sellYear := 0
	if prop.SellDate != nil {
		sellYear = prop.SellDate.Year()
	}

	startYear := assumptions.Timing.StartYear
	points := make([]domain.AssetProjectionPoint, 0, horizonYears+1)
	value := asset.Balance
	for i := 0; i <= horizonYears; i++ {
		year := startYear + i
		if sellYear != 0 && sellYear <= year {
			points = append(points, domain.AssetProjectionPoint{
				Year:   year,
				Bucket: domain.BucketSold,
			})
			continue
		}
		if i > 0 {
			value = value.Mul(one.Add(PropertyAppreciationRate(prop, &assumptions.Property, year)))
		}

		debt := decimal.Zero
		januaryKey := dateutil.MonthKeyOf(year, 1)
		for _, ix := range indexes {
			debt = debt.Add(ix.BalanceAsOf(januaryKey))
		}
		equity := value.Sub(debt)
		if equity.IsNegative() {
			equity = decimal.Zero
		}

		points = append(points, domain.AssetProjectionPoint{
			Year:   year,
			Value:  value,
			Debt:   debt,
			Equity: equity,
			Bucket: domain.BucketActive,
		})
	}
	return points
}

// PropertyAppreciationRate computes the annual appreciation rate for a
// property in a given calendar year: baseline growth plus the age-band
// addon for the building's age that year, plus the location factor,
// clamped to [0, max growth].
func PropertyAppreciationRate(prop *domain.PropertyInputs, pa *domain.PropertyAssumptions, year int) decimal.Decimal {
	age := year - prop.BuildYear

	addon := pa.MatureHomeAddon
	switch {
	case age <= pa.NewHomeYears:
		addon = pa.NewHomeAddon
	case age <= pa.NewHomeYears+pa.MidHomeYears:
		addon = pa.MidHomeAddon
	}

	rate := pa.BaselineGrowth.Add(addon).Add(prop.LocationFactor)
	if rate.IsNegative() {
		return decimal.Zero
	}
	if rate.GreaterThan(pa.MaxGrowth) {
		return pa.MaxGrowth
	}
	return rate
}

// PropertyValueAt appreciates a property's current value from the scenario
// start year through the target calendar year. Shared by the projector and
// the engine's sale handling so both price a sale identically.
func PropertyValueAt(asset *domain.AssetAccount, assumptions *domain.GlobalAssumptions, targetYear int) decimal.Decimal {
	prop := asset.Property
	if prop == nil {
		return asset.Balance
	}
	value := asset.Balance
	for year := assumptions.Timing.StartYear + 1; year <= targetYear; year++ {
		value = value.Mul(one.Add(PropertyAppreciationRate(prop, &assumptions.Property, year)))
	}
	return value
}

// projectInheritedIRA enforces the mandatory depletion window anchored at
// the IRA's start date (scenario start year when absent). Each point is
// the end-of-year balance: the January withdrawal for that year is taken
// first, then the remainder compounds at the market initial rate. The
// final window year forces a 100% withdrawal regardless of any override.
func projectInheritedIRA(asset *domain.AssetAccount, assumptions *domain.GlobalAssumptions, horizonYears int) []domain.AssetProjectionPoint {
	inputs := asset.Inherited
	if inputs == nil {
		inputs = &domain.InheritedInputs{}
	}
	anchorYear := assumptions.Timing.StartYear
	if inputs.StartDate != nil {
		anchorYear = inputs.StartDate.Year()
	}
	finalYear := anchorYear + inheritedDepletionYears
	growth := one.Add(assumptions.Market.Initial)

	startYear := assumptions.Timing.StartYear
	points := make([]domain.AssetProjectionPoint, 0, horizonYears+1)
	balance := asset.Balance
	for i := 0; i <= horizonYears; i++ {
		year := startYear + i

		withdrawal := decimal.Zero
		tax := decimal.Zero
		if year >= anchorYear && year <= finalYear {
			rate := defaultInheritedWithdrawalRate
			if inputs.WithdrawalSchedule != nil {
				if override, ok := inputs.WithdrawalSchedule[year]; ok {
					rate = override
				}
			}
			if year == finalYear {
				rate = one
			}
			withdrawal = balance.Mul(rate)
			tax = InheritedWithdrawalTax(withdrawal)
			balance = balance.Sub(withdrawal)
		}
		balance = balance.Mul(growth)

		points = append(points, domain.AssetProjectionPoint{
			Year:       year,
			Value:      balance,
			Withdrawal: withdrawal,
			Tax:        tax,
			Bucket:     domain.BucketActive,
		})
	}
	return points
}

// InheritedWithdrawalTax returns the tax on a single gross withdrawal. The
// bracket rate applies flat to the whole amount.
func InheritedWithdrawalTax(withdrawal decimal.Decimal) decimal.Decimal {
	for _, bracket := range inheritedTaxBrackets {
		if withdrawal.GreaterThan(bracket.floor) {
			return withdrawal.Mul(bracket.rate)
		}
	}
	return withdrawal.Mul(inheritedTaxBaseRate)
}
