package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hhplan/household-planner/internal/calculation"
	"github.com/hhplan/household-planner/internal/config"
	"github.com/hhplan/household-planner/internal/output"
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("input", "i", "scenario.yaml", "Input configuration file")
	runCmd.Flags().StringP("format", "f", "console", "Output format (console, csv, events-csv, json)")
	runCmd.Flags().Bool("save", false, "Write reports to timestamped files instead of stdout")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every scenario in a configuration document",
	RunE:  runSimulations,
}

func runSimulations(cmd *cobra.Command, args []string) error {
	inputFile, _ := cmd.Flags().GetString("input")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")

	parser := config.NewInputParser()
	cfg, err := parser.LoadFromFile(inputFile)
	if err != nil {
		return err
	}

	engine := calculation.NewEngine()
	engine.SetLogger(logrusAdapter{})

	results, err := engine.RunConfiguration(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	formatter := output.GetFormatterByName(format)
	if formatter == nil {
		return fmt.Errorf("%w: %q", output.ErrUnsupportedFormat, format)
	}

	for _, result := range results {
		if save {
			filename, err := output.GenerateReport(result, format)
			if err != nil {
				return err
			}
			logrus.Infof("wrote %s", filename)
			continue
		}
		data, err := formatter.Format(result)
		if err != nil {
			return err
		}
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
	}
	return nil
}
