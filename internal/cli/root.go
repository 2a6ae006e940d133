// Package cli implements the refractplan command line.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Skufu/refractplan/internal/logging"
	"github.com/Skufu/refractplan/internal/outcome"
	"github.com/Skufu/refractplan/internal/planner"
	"github.com/Skufu/refractplan/internal/reporter"
)

var (
	// Global flags
	verbose bool
	format  string
	formula string
)

var RootCmd = &cobra.Command{
	Use:   "refractplan",
	Short: "Refractive surgery outcome calculator",
	Long: `refractplan predicts post-operative corneal curvature, thickness and
visual acuity for a refractive surgery candidate, recommends the procedures
the eye is eligible for and flags clinical risks.

Cases are evaluated one at a time from flags or in bulk from a CSV or XLSX
table with one patient per row.`,
	SilenceUsage: true,
}

func Execute(ctx context.Context) error {
	return RootCmd.ExecuteContext(ctx)
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	RootCmd.PersistentFlags().StringVarP(&format, "format", "f", reporter.FormatTerminal, "Output format (terminal, json)")
	RootCmd.PersistentFlags().StringVar(&formula, "formula", string(outcome.DefaultFormula), "Ablation depth formula (magnitude, munnerlyn); defaults to $"+FormulaEnv+" when set")
}

func newLogger() (*zap.Logger, error) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logging.New(level, "stderr")
}

// FormulaEnv is read when --formula is not given.
const FormulaEnv = "ABLATION_FORMULA"

func selectedFormula(cmd *cobra.Command) (outcome.AblationFormula, error) {
	name := formula
	if env, ok := os.LookupEnv(FormulaEnv); ok && !cmd.Flags().Changed("formula") {
		name = env
	}
	return outcome.ParseAblationFormula(name)
}

func newPlanner(cmd *cobra.Command, logger *zap.Logger, opts ...planner.Option) (*planner.Planner, error) {
	f, err := selectedFormula(cmd)
	if err != nil {
		return nil, err
	}
	opts = append([]planner.Option{planner.WithFormula(f), planner.WithLogger(logger)}, opts...)
	return planner.New(opts...), nil
}
