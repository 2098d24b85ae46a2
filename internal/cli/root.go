package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "hhplan",
	Short: "Deterministic household finance projections",
	Long: `hhplan simulates a household's monthly finances over a multi-decade
horizon: income, expenses, debt amortization, asset growth, and a
cash-depletion waterfall with a reverse-mortgage safety net.

All runs are deterministic: the same input document always produces
bit-identical timelines and events.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logrusAdapter binds the engine's Logger interface to logrus.
type logrusAdapter struct{}

func (logrusAdapter) Debugf(format string, args ...any) { logrus.Debugf(format, args...) }
func (logrusAdapter) Infof(format string, args ...any)  { logrus.Infof(format, args...) }
func (logrusAdapter) Warnf(format string, args ...any)  { logrus.Warnf(format, args...) }
func (logrusAdapter) Errorf(format string, args ...any) { logrus.Errorf(format, args...) }
