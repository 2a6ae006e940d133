package eligibility

import "strings"

// Procedure is a refractive procedure the classifier can recommend.
// Declaration order is recommendation priority.
type Procedure int

const (
	LASIK Procedure = iota + 1
	PRK
	PhakicIOL
	PseudophakicIOL
)

// NoSuitableProcedure is the label of an empty recommendation.
const NoSuitableProcedure = "No suitable surgery recommended"

const labelSeparator = " / "

func (p Procedure) String() string {
	switch p {
	case LASIK:
		return "LASIK"
	case PRK:
		return "PRK"
	case PhakicIOL:
		return "Phakic IOL"
	case PseudophakicIOL:
		return "Pseudophakic IOL"
	default:
		return "unknown"
	}
}

// Corneal reports whether the procedure reshapes the cornea.
func (p Procedure) Corneal() bool {
	return p == LASIK || p == PRK
}

// Recommendation is the ordered set of procedures chosen for a case.
type Recommendation struct {
	Procedures []Procedure
}

// Empty reports whether no procedure qualified.
func (r Recommendation) Empty() bool { return len(r.Procedures) == 0 }

// Label reduces the recommendation to one display string. It never
// returns an empty string.
func (r Recommendation) Label() string {
	if r.Empty() {
		return NoSuitableProcedure
	}
	names := make([]string, 0, len(r.Procedures))
	for _, p := range r.Procedures {
		names = append(names, p.String())
	}
	return strings.Join(names, labelSeparator)
}

func (r Recommendation) String() string { return r.Label() }

// Labels lists every label Classify can produce.
func Labels() []string {
	return []string{
		Recommendation{Procedures: []Procedure{LASIK, PRK}}.Label(),
		LASIK.String(),
		PRK.String(),
		PhakicIOL.String(),
		PseudophakicIOL.String(),
		NoSuitableProcedure,
	}
}
