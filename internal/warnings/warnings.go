// Package warnings scans a case for clinical risk thresholds. Warnings are
// advisory and never change the recommendation.
package warnings

import (
	"strings"

	"github.com/Skufu/refractplan/internal/outcome"
)

// Code identifies a warning rule.
type Code string

const (
	KeratoconusRisk     Code = "keratoconus_risk"
	EctasiaRisk         Code = "ectasia_risk"
	ExtremeMyopia       Code = "extreme_myopia"
	ExtremeHyperopia    Code = "extreme_hyperopia"
	PoorVisualPrognosis Code = "poor_visual_prognosis"
)

const (
	KeratoconusMinKAvgPre       = 49.0
	KeratoconusMaxPachymetryPre = 500.0
	EctasiaMinPachymetryPost    = 410.0
	ExtremeMyopiaSE             = -12.0
	ExtremeHyperopiaSE          = 6.0
	PoorMinBCVAPost             = 0.5
)

// None is rendered in place of an empty warning list.
const None = "None"

// Warning is one triggered rule.
type Warning struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Rule pairs a warning with the predicate that triggers it.
type Rule struct {
	Code    Code
	Message string
	Match   func(in outcome.Input, out outcome.Outcome) bool
}

var ruleDB = []Rule{
	{
		Code:    KeratoconusRisk,
		Message: "Risk of keratoconus (Kavg > 49 D and pachymetry < 500 µm)",
		Match: func(in outcome.Input, out outcome.Outcome) bool {
			return out.KAvgPre > KeratoconusMinKAvgPre && in.PachymetryPre < KeratoconusMaxPachymetryPre
		},
	},
	{
		Code:    EctasiaRisk,
		Message: "Risk of ectasia (post-op pachymetry < 410 µm)",
		Match: func(_ outcome.Input, out outcome.Outcome) bool {
			return out.PachymetryPost < EctasiaMinPachymetryPost
		},
	},
	{
		Code:    ExtremeMyopia,
		Message: "Extreme myopia (SE < -12 D)",
		Match: func(_ outcome.Input, out outcome.Outcome) bool {
			return out.SphericalEquivalent < ExtremeMyopiaSE
		},
	},
	{
		Code:    ExtremeHyperopia,
		Message: "Extreme hyperopia (SE > +6 D)",
		Match: func(_ outcome.Input, out outcome.Outcome) bool {
			return out.SphericalEquivalent > ExtremeHyperopiaSE
		},
	},
	{
		Code:    PoorVisualPrognosis,
		Message: "Poor visual prognosis (post-op BCVA < 0.5)",
		Match: func(_ outcome.Input, out outcome.Outcome) bool {
			return out.BCVAPost < PoorMinBCVAPost
		},
	},
}

// Rules returns a copy of the rule table in evaluation order.
func Rules() []Rule {
	return append([]Rule(nil), ruleDB...)
}

// Detect evaluates every rule in table order. The result is never nil.
func Detect(in outcome.Input, out outcome.Outcome) []Warning {
	found := []Warning{}
	for _, rule := range ruleDB {
		if rule.Match(in, out) {
			found = append(found, Warning{Code: rule.Code, Message: rule.Message})
		}
	}
	return found
}

// Messages extracts the messages of ws, preserving order.
func Messages(ws []Warning) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Message)
	}
	return out
}

// Codes extracts the codes of ws, preserving order.
func Codes(ws []Warning) []Code {
	out := make([]Code, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Summary joins messages for single-cell display, or returns None.
func Summary(messages []string) string {
	if len(messages) == 0 {
		return None
	}
	return strings.Join(messages, ", ")
}
