package cli

import (
	"github.com/spf13/cobra"

	"github.com/Skufu/refractplan/internal/model"
	"github.com/Skufu/refractplan/internal/outcome"
	"github.com/Skufu/refractplan/internal/reporter"
)

var (
	patientID string
	caseInput outcome.Input
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a single case",
	Long: `Predict the outcome of one case and print the recommendation.

Examples:
  refractplan evaluate --sphere -4 --cylinder -1 --k1 43 --k2 44 \
    --pachymetry 540 --bcva 1.0 --age 28
  refractplan evaluate --formula munnerlyn --optical-zone 6.5 ... --format json`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	flags := evaluateCmd.Flags()
	flags.StringVar(&patientID, "patient-id", "", "Patient identifier carried into the output")
	flags.Float64Var(&caseInput.Sphere, "sphere", 0, "Spherical refractive error (D)")
	flags.Float64Var(&caseInput.Cylinder, "cylinder", 0, "Cylindrical refractive error (D)")
	flags.Float64Var(&caseInput.K1Pre, "k1", 0, "Pre-op flat keratometry (D)")
	flags.Float64Var(&caseInput.K2Pre, "k2", 0, "Pre-op steep keratometry (D)")
	flags.Float64Var(&caseInput.PachymetryPre, "pachymetry", 0, "Pre-op central corneal thickness (µm)")
	flags.Float64Var(&caseInput.BCVAPre, "bcva", 0, "Pre-op best-corrected visual acuity (decimal)")
	flags.IntVar(&caseInput.Age, "age", 0, "Patient age (years)")
	flags.Float64Var(&caseInput.OpticalZone, "optical-zone", 0, "Optical zone diameter (mm), used by the munnerlyn formula")

	for _, name := range []string{"sphere", "cylinder", "k1", "k2", "pachymetry", "bcva", "age"} {
		_ = evaluateCmd.MarkFlagRequired(name)
	}
	RootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	rep, err := reporter.New(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, err := newPlanner(cmd, logger)
	if err != nil {
		return err
	}

	in := model.NewCaseInput(patientID, caseInput)
	in.OpticalZone = nil
	if cmd.Flags().Changed("optical-zone") {
		oz := caseInput.OpticalZone
		in.OpticalZone = &oz
	}
	res, err := p.Evaluate(in)
	if err != nil {
		return err
	}
	return rep.ReportCase(res)
}
