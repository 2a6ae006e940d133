package outcome

import (
	"fmt"
	"strings"
)

// AblationFormula names the ablation-depth formulation a Calculator applies.
// A calculator uses exactly one formula for every case it evaluates.
type AblationFormula string

const (
	// FormulaMagnitude scales the total correction magnitude by a
	// refraction-dependent factor (15 µm/D myopic, 1 µm/D hyperopic).
	FormulaMagnitude AblationFormula = "magnitude"
	// FormulaMunnerlyn uses the optical-zone area: 1.1 × (OZ²/3) × (|S|+|C|).
	FormulaMunnerlyn AblationFormula = "munnerlyn"
)

// DefaultFormula is the formula used when none is configured.
const DefaultFormula = FormulaMagnitude

// ParseAblationFormula maps a configuration value to a known formula.
// An empty value yields DefaultFormula.
func ParseAblationFormula(s string) (AblationFormula, error) {
	switch AblationFormula(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultFormula, nil
	case FormulaMagnitude:
		return FormulaMagnitude, nil
	case FormulaMunnerlyn, "area":
		return FormulaMunnerlyn, nil
	default:
		return "", fmt.Errorf("unknown ablation formula %q (want %q or %q)", s, FormulaMagnitude, FormulaMunnerlyn)
	}
}

// RequiresOpticalZone reports whether the formula reads Input.OpticalZone.
func (f AblationFormula) RequiresOpticalZone() bool {
	return f == FormulaMunnerlyn
}

func (f AblationFormula) String() string { return string(f) }
