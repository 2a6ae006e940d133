// Package outcome estimates postoperative corneal and visual-acuity values
// from preoperative measurements and the intended refractive correction.
//
// Every function here is a pure numeric transform. Out-of-range clinical
// values are accepted as-is; flagging them is the job of the warnings package.
package outcome

import "math"

const (
	// MyopicKFactor is the keratometry flattening per diopter of myopic correction.
	MyopicKFactor = 0.8
	// HyperopicKFactor is the keratometry steepening per diopter of hyperopic correction.
	HyperopicKFactor = 1.2

	MyopicDepthFactor    = 15.0
	HyperopicDepthFactor = 1.0

	// MunnerlynScale is the empirical multiplier of the area-based formula.
	MunnerlynScale = 1.1

	// HyperopicPachymetryLoss is the fixed central thinning (µm) of a
	// hyperopic ablation, which removes peripheral rather than central tissue.
	HyperopicPachymetryLoss = 6.0

	// BCVAGainPerDiopter models removal of myopic image minification.
	BCVAGainPerDiopter = 0.05
	// MaxBCVA is the decimal acuity ceiling of the post-op estimate.
	MaxBCVA = 1.5
)

// Refraction classifies the sign of the spherical correction.
type Refraction int

const (
	// Myopic covers nearsighted and emmetropic (sphere ≤ 0) cases.
	Myopic Refraction = iota
	Hyperopic
)

func (r Refraction) String() string {
	if r == Hyperopic {
		return "hyperopic"
	}
	return "myopic"
}

// RefractionOf returns Myopic for sphere ≤ 0 and Hyperopic otherwise.
func RefractionOf(sphere float64) Refraction {
	if sphere > 0 {
		return Hyperopic
	}
	return Myopic
}

// Input is one eye's preoperative snapshot. Age is not used by the
// calculator; it travels with the measurements for the classifier.
type Input struct {
	Age           int
	Sphere        float64
	Cylinder      float64
	K1Pre         float64
	K2Pre         float64
	PachymetryPre float64
	BCVAPre       float64
	OpticalZone   float64
}

// KAvgPre is the mean preoperative keratometry.
func (in Input) KAvgPre() float64 {
	return Round2((in.K1Pre + in.K2Pre) / 2)
}

// Outcome holds the derived postoperative estimates, all rounded to two
// decimal places.
type Outcome struct {
	Refraction          Refraction
	SphericalEquivalent float64
	KAvgPre             float64
	AblationDepth       float64
	K1Post              float64
	K2Post              float64
	KAvgPost            float64
	PachymetryPost      float64
	BCVAPost            float64
}

// Round2 rounds half away from zero to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// SphericalEquivalent is sphere + cylinder/2.
func SphericalEquivalent(sphere, cylinder float64) float64 {
	return Round2(sphere + cylinder/2)
}

// PostopKeratometry returns the post-op flat and steep meridian values.
// Myopic corrections flatten both meridians; hyperopic corrections steepen
// them, with the steep-meridian delta floored at zero where the astigmatic
// correction offsets the spherical steepening.
func PostopKeratometry(k1Pre, k2Pre, sphere, cylinder float64) (k1Post, k2Post float64) {
	s, c := math.Abs(sphere), math.Abs(cylinder)

	if RefractionOf(sphere) == Myopic {
		dk1 := s * MyopicKFactor
		dk2 := (s + c) * MyopicKFactor
		return Round2(k1Pre - dk1), Round2(k2Pre - dk2)
	}

	dk1 := s * HyperopicKFactor
	dk2 := math.Max(0, (s-c)*HyperopicKFactor)
	return Round2(k1Pre + dk1), Round2(k2Pre + dk2)
}

// MagnitudeAblationDepth is factor × (|S| + |C|), with the factor chosen by
// the sign of the sphere.
func MagnitudeAblationDepth(sphere, cylinder float64) float64 {
	factor := MyopicDepthFactor
	if RefractionOf(sphere) == Hyperopic {
		factor = HyperopicDepthFactor
	}
	return Round2(factor * (math.Abs(sphere) + math.Abs(cylinder)))
}

// MunnerlynAblationDepth is 1.1 × (OZ²/3) × (|S| + |C|). A non-positive
// optical zone yields zero depth.
func MunnerlynAblationDepth(sphere, cylinder, opticalZone float64) float64 {
	if opticalZone <= 0 {
		return 0
	}
	return Round2(MunnerlynScale * (opticalZone * opticalZone / 3) * (math.Abs(sphere) + math.Abs(cylinder)))
}

// PostopPachymetry subtracts the ablation depth for myopic cases and the
// fixed peripheral-ablation loss for hyperopic ones.
func PostopPachymetry(pachymetryPre, ablationDepth, sphere float64) float64 {
	if RefractionOf(sphere) == Hyperopic {
		return Round2(pachymetryPre - HyperopicPachymetryLoss)
	}
	return Round2(pachymetryPre - ablationDepth)
}

// PostopBCVA is min(bcvaPre + 0.05 × |S|, 1.5).
func PostopBCVA(bcvaPre, sphere float64) float64 {
	return Round2(math.Min(bcvaPre+BCVAGainPerDiopter*math.Abs(sphere), MaxBCVA))
}
