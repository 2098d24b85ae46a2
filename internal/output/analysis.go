package output

import (
	"github.com/shopspring/decimal"

	"github.com/hhplan/household-planner/internal/domain"
)

// AnnualRollup sums a calendar year of the monthly timeline.
type AnnualRollup struct {
	Year         int             `json:"year"`
	Income       decimal.Decimal `json:"income"`
	Expenses     decimal.Decimal `json:"expenses"`
	NetCashFlow  decimal.Decimal `json:"net_cash_flow"`
	AnyShortfall bool            `json:"any_shortfall"`
	EndNetWorth  decimal.Decimal `json:"end_net_worth"`
}

// ComputeAnnualRollups aggregates the monthly timeline into one row per
// calendar year. A year is flagged when any of its months ran a deficit.
// EndNetWorth is the last snapshot of the year.
func ComputeAnnualRollups(result *domain.SimulationResult) []AnnualRollup {
	var rollups []AnnualRollup
	var current *AnnualRollup
	for i := range result.Timeline {
		row := &result.Timeline[i]
		if current == nil || current.Year != row.Year {
			rollups = append(rollups, AnnualRollup{Year: row.Year})
			current = &rollups[len(rollups)-1]
		}
		current.Income = current.Income.Add(row.Income)
		current.Expenses = current.Expenses.Add(row.Expenses)
		current.NetCashFlow = current.NetCashFlow.Add(row.NetCashFlow)
		if row.HasDeficit() {
			current.AnyShortfall = true
		}
		current.EndNetWorth = row.NetWorth
	}
	return rollups
}

// FirstShortfallYear returns the first calendar year containing a deficit
// month, or 0 when the run never runs short.
func FirstShortfallYear(result *domain.SimulationResult) int {
	for _, rollup := range ComputeAnnualRollups(result) {
		if rollup.AnyShortfall {
			return rollup.Year
		}
	}
	return 0
}
