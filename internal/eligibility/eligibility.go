// Package eligibility maps postoperative estimates and patient age to a
// single procedure recommendation.
package eligibility

import "github.com/Skufu/refractplan/internal/outcome"

// Thresholds for corneal procedures. Bounds are inclusive.
const (
	LASIKMinPachymetryPre  = 500.0
	LASIKMinPachymetryPost = 410.0
	LASIKMaxAblationDepth  = 140.0

	PRKMinPachymetryPre  = 460.0
	PRKMinPachymetryPost = 400.0
	PRKMaxAblationDepth  = 90.0

	MinKAvgPost = 36.0
	MaxKAvgPost = 49.0

	// Spherical equivalents at or beyond these bounds fall outside the
	// corneal-surgery range.
	LensMaxMyopicSE    = -10.0
	LensMinHyperopicSE = 7.0

	// PhakicMaxAge is the exclusive upper age bound for a lens-retaining implant.
	PhakicMaxAge = 40
)

// Flags records the outcome of each eligibility predicate.
type Flags struct {
	LASIK           bool `json:"lasik"`
	PRK             bool `json:"prk"`
	ImplantableLens bool `json:"implantable_lens"`
	Phakic          bool `json:"phakic_iol"`
	Pseudophakic    bool `json:"pseudophakic_iol"`
}

// Result is the classifier verdict for one case.
type Result struct {
	Flags          Flags
	Recommendation Recommendation
}

// Label is shorthand for r.Recommendation.Label().
func (r Result) Label() string { return r.Recommendation.Label() }

func inKRange(k float64) bool {
	return k >= MinKAvgPost && k <= MaxKAvgPost
}

// LASIKEligible evaluates the laser in-situ keratomileusis predicate.
func LASIKEligible(in outcome.Input, out outcome.Outcome) bool {
	return in.PachymetryPre >= LASIKMinPachymetryPre &&
		out.PachymetryPost >= LASIKMinPachymetryPost &&
		inKRange(out.KAvgPost) &&
		out.AblationDepth <= LASIKMaxAblationDepth
}

// PRKEligible evaluates the surface-ablation predicate. PRK is only
// offered for myopic spherical equivalents.
func PRKEligible(in outcome.Input, out outcome.Outcome) bool {
	return out.SphericalEquivalent < 0 &&
		in.PachymetryPre >= PRKMinPachymetryPre &&
		out.PachymetryPost >= PRKMinPachymetryPost &&
		inKRange(out.KAvgPost) &&
		out.AblationDepth <= PRKMaxAblationDepth
}

// ExtremeRefraction reports a spherical equivalent outside the corneal range.
func ExtremeRefraction(se float64) bool {
	return se <= LensMaxMyopicSE || se >= LensMinHyperopicSE
}

// LensVariant picks the implantable-lens sub-variant for the patient's age.
func LensVariant(age int) Procedure {
	if age < PhakicMaxAge {
		return PhakicIOL
	}
	return PseudophakicIOL
}

// Classify evaluates the predicates in priority order and resolves them
// into one recommendation. Thresholds are applied to the rounded values in
// out, the same figures shown to the user.
func Classify(in outcome.Input, out outcome.Outcome) Result {
	var flags Flags
	flags.LASIK = LASIKEligible(in, out)
	flags.PRK = PRKEligible(in, out)
	flags.ImplantableLens = ExtremeRefraction(out.SphericalEquivalent) && !flags.LASIK && !flags.PRK

	var rec Recommendation
	if flags.LASIK {
		rec.Procedures = append(rec.Procedures, LASIK)
	}
	if flags.PRK {
		rec.Procedures = append(rec.Procedures, PRK)
	}
	if flags.ImplantableLens {
		lens := LensVariant(in.Age)
		flags.Phakic = lens == PhakicIOL
		flags.Pseudophakic = lens == PseudophakicIOL
		rec.Procedures = append(rec.Procedures, lens)
	}

	return Result{Flags: flags, Recommendation: rec}
}
