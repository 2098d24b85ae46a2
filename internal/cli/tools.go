package cli

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hhplan/household-planner/internal/calculation"
	"github.com/hhplan/household-planner/internal/config"
	"github.com/hhplan/household-planner/internal/domain"
	moneyfmt "github.com/hhplan/household-planner/pkg/decimal"
)

func init() {
	rootCmd.AddCommand(amortizeCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(exampleCmd)

	amortizeCmd.Flags().StringP("input", "i", "scenario.yaml", "Input configuration file")
	amortizeCmd.Flags().Int("scenario", 0, "Scenario index")
	amortizeCmd.Flags().Bool("full", false, "Print the full schedule, not just the summary")

	projectCmd.Flags().StringP("input", "i", "scenario.yaml", "Input configuration file")
	projectCmd.Flags().Int("scenario", 0, "Scenario index")

	exampleCmd.Flags().StringP("output", "o", "scenario.yaml", "Where to write the example document")
}

var amortizeCmd = &cobra.Command{
	Use:   "amortize LOAN_ID",
	Short: "Print a loan's amortization schedule under its active strategy",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmortize,
}

func runAmortize(cmd *cobra.Command, args []string) error {
	scenario, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	loan, ok := scenario.Loans[args[0]]
	if !ok {
		return fmt.Errorf("loan %q not found in scenario %q", args[0], scenario.Name)
	}

	result := calculation.Calculate(&loan, loan.ActiveExtraPayments())
	if result.IsEmpty() {
		fmt.Println("Loan is already paid off.")
		return nil
	}

	if full, _ := cmd.Flags().GetBool("full"); full {
		fmt.Printf("%-8s %14s %12s %12s %12s %10s %14s\n", "Month", "Balance", "Payment", "Principal", "Interest", "Extra", "Ending")
		for _, row := range result.Schedule {
			fmt.Printf("%-8s %14s %12s %12s %12s %10s %14s\n",
				row.MonthKey,
				row.BeginningBalance.StringFixed(2),
				row.Payment.StringFixed(2),
				row.Principal.StringFixed(2),
				row.Interest.StringFixed(2),
				row.Extra.StringFixed(2),
				row.EndingBalance.StringFixed(2),
			)
		}
		fmt.Println()
	}

	fmt.Printf("Months to payoff: %d\n", result.Summary.Months)
	fmt.Printf("Payoff month:     %s\n", result.Summary.PayoffKey)
	fmt.Printf("Total interest:   %s\n", moneyfmt.NewMoneyFromDecimal(result.Summary.TotalInterest).Format())
	fmt.Printf("Final payment:    %s\n", moneyfmt.NewMoneyFromDecimal(result.Summary.FinalPayment).Format())
	return nil
}

var projectCmd = &cobra.Command{
	Use:   "project ASSET_ID",
	Short: "Print an asset's year-by-year growth projection as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runProject,
}

func runProject(cmd *cobra.Command, args []string) error {
	scenario, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	asset, ok := scenario.Assets[args[0]]
	if !ok {
		return fmt.Errorf("asset %q not found in scenario %q", args[0], scenario.Name)
	}

	points := calculation.CalculateAssetGrowth(&asset, &scenario.Assumptions, scenario.Loans, scenario.Assumptions.HorizonYears)
	data, err := json.MarshalIndent(points, "", "  ")
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Write an example configuration document",
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, _ := cmd.Flags().GetString("output")
		parser := config.NewInputParser()
		if err := config.SaveConfiguration(parser.CreateExampleConfiguration(), outputFile); err != nil {
			return err
		}
		fmt.Printf("Wrote example configuration to %s\n", outputFile)
		return nil
	},
}

func loadScenario(cmd *cobra.Command) (*domain.Scenario, error) {
	inputFile, _ := cmd.Flags().GetString("input")
	index, _ := cmd.Flags().GetInt("scenario")

	parser := config.NewInputParser()
	cfg, err := parser.LoadFromFile(inputFile)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(cfg.Scenarios) {
		return nil, fmt.Errorf("scenario index %d out of range (document has %d)", index, len(cfg.Scenarios))
	}
	return &cfg.Scenarios[index], nil
}
