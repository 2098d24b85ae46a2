package output

import (
	"bytes"
	"encoding/csv"

	"github.com/hhplan/household-planner/internal/domain"
)

// CSVTimelineExporter writes one row per simulated month.
type CSVTimelineExporter struct{}

func (c CSVTimelineExporter) Name() string { return "csv" }

func (c CSVTimelineExporter) Format(result *domain.SimulationResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Month", "Income", "Expenses", "DebtService", "NetCashFlow", "LiquidCash", "InheritedBalance", "RetirementBalance", "ReverseMortgageBalance", "NetWorth"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range result.Timeline {
		record := []string{
			row.MonthKey,
			row.Income.StringFixed(2),
			row.Expenses.StringFixed(2),
			row.DebtService.StringFixed(2),
			row.NetCashFlow.StringFixed(2),
			row.LiquidCash.StringFixed(2),
			row.InheritedBalance.StringFixed(2),
			row.RetirementBalance.StringFixed(2),
			row.ReverseMortgageBalance.StringFixed(2),
			row.NetWorth.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// CSVEventsExporter writes the narrative event list.
type CSVEventsExporter struct{}

func (c CSVEventsExporter) Name() string { return "events-csv" }

func (c CSVEventsExporter) Format(result *domain.SimulationResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"Date", "Event"}); err != nil {
		return nil, err
	}
	for _, event := range result.Events {
		if err := w.Write([]string{event.Date.Format("2006-01-02"), event.Text}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
