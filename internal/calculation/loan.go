package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/hhplan/household-planner/internal/domain"
	"github.com/hhplan/household-planner/pkg/dateutil"
)

// MaxScheduleMonths caps schedule generation at 50 years. A loan whose
// payment cannot retire the balance stops here with a non-zero ending
// balance; the calculator stays total and never errors.
const MaxScheduleMonths = 600

// payoffTolerance treats residual balances at or below one cent as paid.
var payoffTolerance = decimal.NewFromFloat(0.01)

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

// Calculate dispatches to the fixed or revolving amortization rules by
// loan kind. Unknown kinds amortize as fixed.
func Calculate(loan *domain.Loan, extraPayments map[string]decimal.Decimal) *domain.AmortizationResult {
	if loan.Kind == domain.LoanKindRevolving {
		return CalculateRevolvingLoan(loan, extraPayments)
	}
	return CalculateFixedLoan(loan, extraPayments)
}

// CalculateFixedLoan produces the month-by-month schedule for a fixed-rate
// loan until payoff or the iteration cap. The scheduled payment plus any
// extra for the month is clamped so it never exceeds the remaining balance
// plus interest due. A balance at or below the payoff tolerance terminates
// the schedule with the ending balance snapped to zero. Non-positive
// principal yields an empty schedule ("already paid off").
func CalculateFixedLoan(loan *domain.Loan, extraPayments map[string]decimal.Decimal) *domain.AmortizationResult {
	return amortize(loan, extraPayments, false)
}

// CalculateRevolvingLoan amortizes a balance-driven credit line. The only
// difference from the fixed rules is the payment floor: the charged payment
// is at least the interest due, overriding a planned payment that is too
// low. Negative amortization cannot occur.
func CalculateRevolvingLoan(loan *domain.Loan, extraPayments map[string]decimal.Decimal) *domain.AmortizationResult {
	return amortize(loan, extraPayments, true)
}

func amortize(loan *domain.Loan, extraPayments map[string]decimal.Decimal, interestFloor bool) *domain.AmortizationResult {
	result := &domain.AmortizationResult{Schedule: []domain.ScheduleRow{}}

	balance := loan.Principal
	if balance.LessThanOrEqual(payoffTolerance) {
		return result
	}

	monthlyRate := loan.AnnualRate.Div(twelve)
	current := dateutil.MonthStart(loan.StartDate)
	totalInterest := decimal.Zero

	for i := 0; i < MaxScheduleMonths; i++ {
		key := dateutil.MonthKey(current)
		interest := balance.Mul(monthlyRate)

		planned := loan.ScheduledPayment
		if interestFloor && planned.LessThan(interest) {
			planned = interest
		}

		payment := planned
		if extraPayments != nil {
			if extra, ok := extraPayments[key]; ok {
				payment = payment.Add(extra)
			}
		}

		// Never collect more than the remaining balance plus interest due.
		maxPayment := balance.Add(interest)
		if payment.GreaterThan(maxPayment) {
			payment = maxPayment
		}

		extraApplied := payment.Sub(planned)
		if extraApplied.IsNegative() {
			extraApplied = decimal.Zero
		}

		principal := payment.Sub(interest)
		ending := balance.Sub(principal)
		paidOff := ending.LessThanOrEqual(payoffTolerance)
		if paidOff {
			ending = decimal.Zero
		}

		result.Schedule = append(result.Schedule, domain.ScheduleRow{
			MonthKey:         key,
			BeginningBalance: balance,
			Payment:          payment,
			Principal:        principal,
			Interest:         interest,
			Extra:            extraApplied,
			EndingBalance:    ending,
			PaidOff:          paidOff,
		})

		totalInterest = totalInterest.Add(interest)
		balance = ending
		if paidOff {
			break
		}
		current = dateutil.AddMonths(current, 1)
	}

	last := result.Schedule[len(result.Schedule)-1]
	result.Summary = domain.ScheduleSummary{
		TotalInterest: totalInterest,
		PayoffKey:     last.MonthKey,
		Months:        len(result.Schedule),
		FinalPayment:  last.Payment,
	}
	return result
}

// ScheduleIndex wraps an amortization result for O(1) month-key lookups of
// payments and end-of-month balances, so callers amortize each loan once
// per run instead of once per projected month.
type ScheduleIndex struct {
	loan     *domain.Loan
	payments map[string]decimal.Decimal
	balances map[string]decimal.Decimal
	firstKey string
	lastKey  string
	paidOff  bool
	residual decimal.Decimal // non-zero only when the iteration cap was hit
}

// NewScheduleIndex builds the lookup index for a loan's schedule.
func NewScheduleIndex(loan *domain.Loan, result *domain.AmortizationResult) *ScheduleIndex {
	ix := &ScheduleIndex{
		loan:     loan,
		payments: make(map[string]decimal.Decimal, len(result.Schedule)),
		balances: make(map[string]decimal.Decimal, len(result.Schedule)),
	}
	for i, row := range result.Schedule {
		ix.payments[row.MonthKey] = row.Payment
		ix.balances[row.MonthKey] = row.EndingBalance
		if i == 0 {
			ix.firstKey = row.MonthKey
		}
		ix.lastKey = row.MonthKey
		if row.PaidOff {
			ix.paidOff = true
		}
		ix.residual = row.EndingBalance
	}
	return ix
}

// PaymentFor returns the schedule payment charged in the given month, or
// zero outside the schedule (before the loan starts, or after payoff).
func (ix *ScheduleIndex) PaymentFor(monthKey string) decimal.Decimal {
	if p, ok := ix.payments[monthKey]; ok {
		return p
	}
	return decimal.Zero
}

// BalanceAsOf returns the loan balance at the end of the given month:
// the original principal before the schedule starts, the scheduled ending
// balance inside it, and past the end either zero (paid off) or the
// truncation residual. Month keys compare lexicographically.
func (ix *ScheduleIndex) BalanceAsOf(monthKey string) decimal.Decimal {
	if ix.firstKey == "" || monthKey < ix.firstKey {
		return ix.loan.Principal
	}
	if b, ok := ix.balances[monthKey]; ok {
		return b
	}
	if monthKey > ix.lastKey {
		if ix.paidOff {
			return decimal.Zero
		}
		return ix.residual
	}
	return ix.loan.Principal
}

// PayoffKey returns the month-key of the payoff row, or "" when the loan
// never pays off within the schedule.
func (ix *ScheduleIndex) PayoffKey() string {
	if !ix.paidOff {
		return ""
	}
	return ix.lastKey
}
