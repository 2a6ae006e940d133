package outcome

// Calculator computes an Outcome with a fixed ablation formula.
type Calculator struct {
	formula AblationFormula
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithFormula selects the ablation-depth formula. Unknown values are ignored.
func WithFormula(f AblationFormula) Option {
	return func(c *Calculator) {
		if f == FormulaMagnitude || f == FormulaMunnerlyn {
			c.formula = f
		}
	}
}

// NewCalculator returns a Calculator using DefaultFormula unless overridden.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{formula: DefaultFormula}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Formula returns the ablation formula in use.
func (c *Calculator) Formula() AblationFormula { return c.formula }

// AblationDepth applies the configured formula.
func (c *Calculator) AblationDepth(in Input) float64 {
	if c.formula == FormulaMunnerlyn {
		return MunnerlynAblationDepth(in.Sphere, in.Cylinder, in.OpticalZone)
	}
	return MagnitudeAblationDepth(in.Sphere, in.Cylinder)
}

// Calculate derives every postoperative value for in. The same rounded
// ablation depth feeds the pachymetry estimate and is returned for display.
func (c *Calculator) Calculate(in Input) Outcome {
	k1Post, k2Post := PostopKeratometry(in.K1Pre, in.K2Pre, in.Sphere, in.Cylinder)
	depth := c.AblationDepth(in)

	return Outcome{
		Refraction:          RefractionOf(in.Sphere),
		SphericalEquivalent: SphericalEquivalent(in.Sphere, in.Cylinder),
		KAvgPre:             in.KAvgPre(),
		AblationDepth:       depth,
		K1Post:              k1Post,
		K2Post:              k2Post,
		KAvgPost:            Round2((k1Post + k2Post) / 2),
		PachymetryPost:      PostopPachymetry(in.PachymetryPre, depth, in.Sphere),
		BCVAPost:            PostopBCVA(in.BCVAPre, in.Sphere),
	}
}
