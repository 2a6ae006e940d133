package outcome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefractionOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Myopic, RefractionOf(-3))
	assert.Equal(t, Myopic, RefractionOf(0), "emmetropic sphere follows the myopic path")
	assert.Equal(t, Hyperopic, RefractionOf(0.25))
	assert.Equal(t, "hyperopic", Hyperopic.String())
}

func TestPostopKeratometry(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name                   string
		k1, k2, sph, cyl       float64
		wantK1Post, wantK2Post float64
	}{
		{name: "myopic flattens both meridians", k1: 43, k2: 44, sph: -4, cyl: -1, wantK1Post: 39.8, wantK2Post: 40},
		{name: "zero sphere uses myopic factors", k1: 43, k2: 44, sph: 0, cyl: -2, wantK1Post: 43, wantK2Post: 42.4},
		{name: "hyperopic steepens", k1: 42, k2: 43, sph: 2, cyl: -0.5, wantK1Post: 44.4, wantK2Post: 44.8},
		{name: "hyperopic steep delta floors at zero", k1: 42, k2: 43, sph: 1, cyl: -3, wantK1Post: 43.2, wantK2Post: 43},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k1, k2 := PostopKeratometry(tt.k1, tt.k2, tt.sph, tt.cyl)
			assert.InDelta(t, tt.wantK1Post, k1, 1e-9)
			assert.InDelta(t, tt.wantK2Post, k2, 1e-9)
		})
	}
}

func TestAblationDepthFormulas(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 75, MagnitudeAblationDepth(-4, -1), 1e-9)
	assert.InDelta(t, 5, MagnitudeAblationDepth(5, 0), 1e-9)
	assert.InDelta(t, 30, MagnitudeAblationDepth(0, -2), 1e-9)

	// 1.1 * (6*6/3) * 5 = 66
	assert.InDelta(t, 66, MunnerlynAblationDepth(-4, -1, 6), 1e-9)
	assert.InDelta(t, 66, MunnerlynAblationDepth(4, 1, 6), 1e-9, "area formula ignores refraction sign")
	assert.Zero(t, MunnerlynAblationDepth(-4, -1, 0))
	assert.Zero(t, MunnerlynAblationDepth(-4, -1, -6))
}

func TestPostopPachymetry(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 465, PostopPachymetry(540, 75, -4), 1e-9)
	assert.InDelta(t, 514, PostopPachymetry(520, 5, 5), 1e-9)
}

func TestPostopBCVA(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 1.2, PostopBCVA(1.0, -4), 1e-9)
	assert.InDelta(t, 1.5, PostopBCVA(1.4, -10), 1e-9)
	assert.InDelta(t, 0.3, PostopBCVA(0.3, 0), 1e-9)
}

func TestCalculatorScenarioA(t *testing.T) {
	t.Parallel()
	out := NewCalculator().Calculate(Input{
		Age: 28, Sphere: -4, Cylinder: -1, K1Pre: 43, K2Pre: 44, PachymetryPre: 540, BCVAPre: 1.0,
	})

	assert.Equal(t, Myopic, out.Refraction)
	assert.InDelta(t, -4.5, out.SphericalEquivalent, 1e-9)
	assert.InDelta(t, 43.5, out.KAvgPre, 1e-9)
	assert.InDelta(t, 39.8, out.K1Post, 1e-9)
	assert.InDelta(t, 40.0, out.K2Post, 1e-9)
	assert.InDelta(t, 39.9, out.KAvgPost, 1e-9)
	assert.InDelta(t, 75, out.AblationDepth, 1e-9)
	assert.InDelta(t, 465, out.PachymetryPost, 1e-9)
	assert.InDelta(t, 1.2, out.BCVAPost, 1e-9)
}

func TestCalculatorScenarioB(t *testing.T) {
	t.Parallel()
	out := NewCalculator().Calculate(Input{
		Age: 45, Sphere: 5, Cylinder: 0, K1Pre: 43, K2Pre: 44, PachymetryPre: 520, BCVAPre: 0.8,
	})

	assert.Equal(t, Hyperopic, out.Refraction)
	assert.InDelta(t, 514, out.PachymetryPost, 1e-9)
	assert.InDelta(t, 49, out.K1Post, 1e-9)
	assert.InDelta(t, 50, out.K2Post, 1e-9)
	assert.InDelta(t, 5, out.AblationDepth, 1e-9)
}

func TestCalculatorMunnerlynFeedsPachymetry(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(WithFormula(FormulaMunnerlyn))
	require.Equal(t, FormulaMunnerlyn, calc.Formula())

	out := calc.Calculate(Input{Sphere: -4, Cylinder: -1, K1Pre: 43, K2Pre: 44, PachymetryPre: 540, BCVAPre: 1, OpticalZone: 6})
	assert.InDelta(t, 66, out.AblationDepth, 1e-9)
	assert.InDelta(t, 474, out.PachymetryPost, 1e-9)
}

func TestWithFormulaIgnoresUnknown(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(WithFormula("bogus"))
	assert.Equal(t, DefaultFormula, calc.Formula())
}

func TestParseAblationFormula(t *testing.T) {
	t.Parallel()
	f, err := ParseAblationFormula("")
	require.NoError(t, err)
	assert.Equal(t, FormulaMagnitude, f)

	f, err = ParseAblationFormula(" Munnerlyn ")
	require.NoError(t, err)
	assert.Equal(t, FormulaMunnerlyn, f)
	assert.True(t, f.RequiresOpticalZone())

	_, err = ParseAblationFormula("laser")
	assert.Error(t, err)
}

// Sweeps a grid of refractions and checks the invariants that must hold
// for every input.
func TestCalculatorInvariants(t *testing.T) {
	t.Parallel()
	for _, formula := range []AblationFormula{FormulaMagnitude, FormulaMunnerlyn} {
		calc := NewCalculator(WithFormula(formula))
		for sph := -20.0; sph <= 10; sph += 0.5 {
			for cyl := -6.0; cyl <= 6; cyl += 0.75 {
				for _, bcva := range []float64{0.1, 0.8, 1.0, 1.5, 2.0} {
					in := Input{Sphere: sph, Cylinder: cyl, K1Pre: 43, K2Pre: 44.5, PachymetryPre: 540, BCVAPre: bcva, OpticalZone: 6.5}
					out := calc.Calculate(in)

					require.LessOrEqual(t, out.BCVAPost, MaxBCVA)
					require.GreaterOrEqual(t, out.AblationDepth, 0.0)
					if sph <= 0 {
						require.LessOrEqual(t, out.K1Post, in.K1Pre)
						require.LessOrEqual(t, out.K2Post, in.K2Pre)
					} else {
						require.GreaterOrEqual(t, out.K1Post, in.K1Pre)
					}
					require.Equal(t, out, calc.Calculate(in))
				}
			}
		}
	}
}
