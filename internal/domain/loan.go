package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanKind identifies the amortization behavior of a loan.
type LoanKind string

const (
	// LoanKindFixed is a fixed-rate installment loan with a set minimum payment.
	LoanKindFixed LoanKind = "fixed"
	// LoanKindRevolving is a HELOC-style balance-driven credit line.
	LoanKindRevolving LoanKind = "revolving"
)

// Loan represents a single debt obligation in a scenario's loan registry.
// Principal holds the original principal for fixed loans and the current
// balance for revolving loans.
type Loan struct {
	ID               string          `yaml:"id" json:"id"`
	Name             string          `yaml:"name" json:"name"`
	Kind             LoanKind        `yaml:"kind" json:"kind"`
	Principal        decimal.Decimal `yaml:"principal" json:"principal"`
	AnnualRate       decimal.Decimal `yaml:"annual_rate" json:"annual_rate"` // decimal form, 0.065 = 6.5%
	ScheduledPayment decimal.Decimal `yaml:"scheduled_payment" json:"scheduled_payment"`
	StartDate        time.Time       `yaml:"start_date" json:"start_date"`
	TermMonths       int             `yaml:"term_months,omitempty" json:"term_months,omitempty"` // fixed only; informational for payment sizing

	Strategies       []PaymentStrategy `yaml:"strategies,omitempty" json:"strategies,omitempty"`
	ActiveStrategyID string            `yaml:"active_strategy_id,omitempty" json:"active_strategy_id,omitempty"`
}

// PaymentStrategy is a named sparse mapping of month-key (YYYY-MM) to an
// extra-principal amount. Exactly one strategy is active per loan at a time.
type PaymentStrategy struct {
	ID            string                     `yaml:"id" json:"id"`
	Name          string                     `yaml:"name" json:"name"`
	ExtraPayments map[string]decimal.Decimal `yaml:"extra_payments,omitempty" json:"extra_payments,omitempty"`
}

// ActiveStrategy returns the currently active payment strategy, or nil when
// the loan has none.
func (l *Loan) ActiveStrategy() *PaymentStrategy {
	for i := range l.Strategies {
		if l.Strategies[i].ID == l.ActiveStrategyID {
			return &l.Strategies[i]
		}
	}
	return nil
}

// ActiveExtraPayments returns the active strategy's extra-payment map, or an
// empty map when no strategy is active.
func (l *Loan) ActiveExtraPayments() map[string]decimal.Decimal {
	if s := l.ActiveStrategy(); s != nil && s.ExtraPayments != nil {
		return s.ExtraPayments
	}
	return map[string]decimal.Decimal{}
}

// ScheduleRow is one month of an amortization schedule.
type ScheduleRow struct {
	MonthKey         string          `json:"month_key"`
	BeginningBalance decimal.Decimal `json:"beginning_balance"`
	Payment          decimal.Decimal `json:"payment"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Extra            decimal.Decimal `json:"extra"`
	EndingBalance    decimal.Decimal `json:"ending_balance"`
	PaidOff          bool            `json:"paid_off"`
}

// ScheduleSummary aggregates an amortization schedule.
type ScheduleSummary struct {
	TotalInterest decimal.Decimal `json:"total_interest"`
	PayoffKey     string          `json:"payoff_key"` // month-key of the final row; empty for an empty schedule
	Months        int             `json:"months"`
	FinalPayment  decimal.Decimal `json:"final_payment"`
}

// AmortizationResult is the full output of the amortization calculator for
// one loan under one extra-payment map.
type AmortizationResult struct {
	Schedule []ScheduleRow   `json:"schedule"`
	Summary  ScheduleSummary `json:"summary"`
}

// IsEmpty reports whether the schedule produced no rows (loan already paid
// off, or degenerate inputs).
func (r *AmortizationResult) IsEmpty() bool {
	return len(r.Schedule) == 0
}
