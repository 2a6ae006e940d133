package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Skufu/refractplan/internal/intake"
	"github.com/Skufu/refractplan/internal/planner"
	"github.com/Skufu/refractplan/internal/reporter"
)

var (
	sheet   string
	workers int
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Evaluate every row of a CSV or XLSX table",
	Long: `Evaluate one case per row of a CSV or XLSX table. The header row names
the columns, for example:

  PatientID,Sphere,Cylinder,K1_pre,K2_pre,Pachymetry_pre,BCVA_pre,Age

Rows that cannot be evaluated are reported individually and the command
exits non-zero when any row was rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&sheet, "sheet", "", "XLSX worksheet to read (default first sheet)")
	batchCmd.Flags().IntVar(&workers, "workers", planner.DefaultWorkers, "Number of rows evaluated concurrently")
	RootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	rep, err := reporter.New(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, err := newPlanner(cmd, logger, planner.WithWorkers(workers))
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	records, err := intake.Read(path, f, sheet)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	logger.Debug("table read", zap.String("path", path), zap.Int("rows", len(records)))

	res, err := p.EvaluateBatch(cmd.Context(), intake.Items(records))
	if err != nil {
		return err
	}
	if err := rep.ReportBatch(res); err != nil {
		return err
	}
	if res.Summary.Rejected > 0 {
		return fmt.Errorf("%d of %d rows rejected", res.Summary.Rejected, res.Summary.Total)
	}
	return nil
}
