package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlySnapshot is one row of the simulation timeline: the engine's
// derived output for a single month.
type MonthlySnapshot struct {
	Date     time.Time `json:"date"`
	Year     int       `json:"year"`
	Month    int       `json:"month"`
	MonthKey string    `json:"month_key"`

	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	DebtService decimal.Decimal `json:"debt_service"`
	NetCashFlow decimal.Decimal `json:"net_cash_flow"`

	LiquidCash             decimal.Decimal `json:"liquid_cash"`
	InheritedBalance       decimal.Decimal `json:"inherited_balance"`
	RetirementBalance      decimal.Decimal `json:"retirement_balance"`
	ReverseMortgageBalance decimal.Decimal `json:"reverse_mortgage_balance"`
	ReverseMortgageActive  bool            `json:"reverse_mortgage_active"`

	NetWorth decimal.Decimal `json:"net_worth"`
}

// Event is an append-only narrative marker: bucket depletions, reverse
// mortgage activation, loan payoffs, property sales.
type Event struct {
	Date time.Time `json:"date"`
	Text string    `json:"text"`
}

// SimulationResult is the complete output of one engine run.
type SimulationResult struct {
	ScenarioName string            `json:"scenario_name"`
	Timeline     []MonthlySnapshot `json:"timeline"`
	Events       []Event           `json:"events"`
}

// FinancialAssets returns the snapshot's combined asset-bucket balances,
// excluding property values.
func (ms *MonthlySnapshot) FinancialAssets() decimal.Decimal {
	return ms.LiquidCash.Add(ms.InheritedBalance).Add(ms.RetirementBalance)
}

// CalculateNetWorth sets and returns net worth as financial assets minus
// the reverse mortgage liability.
func (ms *MonthlySnapshot) CalculateNetWorth() decimal.Decimal {
	ms.NetWorth = ms.FinancialAssets().Sub(ms.ReverseMortgageBalance)
	return ms.NetWorth
}

// HasDeficit reports whether the month ran a negative net cash flow.
func (ms *MonthlySnapshot) HasDeficit() bool {
	return ms.NetCashFlow.IsNegative()
}

// FinalSnapshot returns the last timeline row, or nil for an empty run.
func (sr *SimulationResult) FinalSnapshot() *MonthlySnapshot {
	if len(sr.Timeline) == 0 {
		return nil
	}
	return &sr.Timeline[len(sr.Timeline)-1]
}
