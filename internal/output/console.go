package output

import (
	"bytes"
	"fmt"

	"github.com/hhplan/household-planner/internal/domain"
	moneyfmt "github.com/hhplan/household-planner/pkg/decimal"
)

// ConsoleFormatter renders a plain-text summary: per-year roll-ups plus
// the event narrative.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "HOUSEHOLD PROJECTION: %s\n", result.ScenarioName)
	fmt.Fprintf(buf, "%s\n\n", repeat('=', 24+len(result.ScenarioName)))

	fmt.Fprintf(buf, "%-6s %14s %14s %14s %16s %10s\n", "Year", "Income", "Expenses", "Net", "Net Worth", "Shortfall")
	for _, rollup := range ComputeAnnualRollups(result) {
		shortfall := ""
		if rollup.AnyShortfall {
			shortfall = "yes"
		}
		fmt.Fprintf(buf, "%-6d %14s %14s %14s %16s %10s\n",
			rollup.Year,
			moneyfmt.NewMoneyFromDecimal(rollup.Income).Format(),
			moneyfmt.NewMoneyFromDecimal(rollup.Expenses).Format(),
			moneyfmt.NewMoneyFromDecimal(rollup.NetCashFlow).Format(),
			moneyfmt.NewMoneyFromDecimal(rollup.EndNetWorth).Format(),
			shortfall,
		)
	}

	if final := result.FinalSnapshot(); final != nil {
		fmt.Fprintf(buf, "\nFinal month (%s):\n", final.MonthKey)
		fmt.Fprintf(buf, "  Liquid cash:       %s\n", moneyfmt.NewMoneyFromDecimal(final.LiquidCash).Format())
		fmt.Fprintf(buf, "  Inherited IRA:     %s\n", moneyfmt.NewMoneyFromDecimal(final.InheritedBalance).Format())
		fmt.Fprintf(buf, "  Retirement:        %s\n", moneyfmt.NewMoneyFromDecimal(final.RetirementBalance).Format())
		fmt.Fprintf(buf, "  Reverse mortgage:  %s\n", moneyfmt.NewMoneyFromDecimal(final.ReverseMortgageBalance).Format())
		fmt.Fprintf(buf, "  Net worth:         %s\n", moneyfmt.NewMoneyFromDecimal(final.NetWorth).Format())
	}

	if len(result.Events) > 0 {
		fmt.Fprintf(buf, "\nEvents:\n")
		for _, event := range result.Events {
			fmt.Fprintf(buf, "  %s  %s\n", event.Date.Format("2006-01"), event.Text)
		}
	}

	return buf.Bytes(), nil
}

func repeat(ch byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = ch
	}
	return out
}
