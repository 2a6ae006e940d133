package model

import (
	"github.com/Skufu/refractplan/internal/eligibility"
	"github.com/Skufu/refractplan/internal/outcome"
	"github.com/Skufu/refractplan/internal/warnings"
)

// CaseInput is the flat input record supplied by a caller. Numeric fields
// are pointers so a missing value can be told apart from zero.
type CaseInput struct {
	PatientID     string   `json:"patient_id,omitempty"`
	Age           *int     `json:"age" binding:"required"`
	Sphere        *float64 `json:"sphere" binding:"required"`
	Cylinder      *float64 `json:"cylinder" binding:"required"`
	K1Pre         *float64 `json:"k1_pre" binding:"required"`
	K2Pre         *float64 `json:"k2_pre" binding:"required"`
	PachymetryPre *float64 `json:"pachymetry_pre" binding:"required"`
	BCVAPre       *float64 `json:"bcva_pre" binding:"required"`
	OpticalZone   *float64 `json:"optical_zone,omitempty"`
}

// Outcome converts the record to calculator input. Callers validate first;
// nil fields read as zero.
func (c CaseInput) Outcome() outcome.Input {
	return outcome.Input{
		Age:           deref(c.Age),
		Sphere:        deref(c.Sphere),
		Cylinder:      deref(c.Cylinder),
		K1Pre:         deref(c.K1Pre),
		K2Pre:         deref(c.K2Pre),
		PachymetryPre: deref(c.PachymetryPre),
		BCVAPre:       deref(c.BCVAPre),
		OpticalZone:   deref(c.OpticalZone),
	}
}

// NewCaseInput builds a complete record from plain values.
func NewCaseInput(patientID string, in outcome.Input) CaseInput {
	c := CaseInput{
		PatientID:     patientID,
		Age:           &in.Age,
		Sphere:        &in.Sphere,
		Cylinder:      &in.Cylinder,
		K1Pre:         &in.K1Pre,
		K2Pre:         &in.K2Pre,
		PachymetryPre: &in.PachymetryPre,
		BCVAPre:       &in.BCVAPre,
	}
	if in.OpticalZone != 0 {
		c.OpticalZone = &in.OpticalZone
	}
	return c
}

func deref[T int | float64](p *T) T {
	if p == nil {
		return 0
	}
	return *p
}

// CaseResult is the flat output record of one evaluation.
type CaseResult struct {
	PatientID           string                  `json:"patient_id,omitempty"`
	AblationFormula     outcome.AblationFormula `json:"ablation_formula"`
	Refraction          string                  `json:"refraction"`
	SphericalEquivalent float64                 `json:"spherical_equivalent"`
	KAvgPre             float64                 `json:"k_avg_pre"`
	K1Post              float64                 `json:"k1_post"`
	K2Post              float64                 `json:"k2_post"`
	KAvgPost            float64                 `json:"k_avg_post"`
	AblationDepth       float64                 `json:"ablation_depth"`
	PachymetryPost      float64                 `json:"pachymetry_post"`
	BCVAPost            float64                 `json:"bcva_post"`
	Eligibility         eligibility.Flags       `json:"eligibility"`
	Recommendation      string                  `json:"recommendation"`
	Warnings            []string                `json:"warnings"`
	WarningCodes        []warnings.Code         `json:"warning_codes"`
}

// WarningSummary renders the warnings for a single table cell.
func (r CaseResult) WarningSummary() string {
	return warnings.Summary(r.Warnings)
}

// Evaluation wraps a single-case result with request metadata.
type Evaluation struct {
	EvaluationID string     `json:"evaluation_id"`
	EvaluatedAt  string     `json:"evaluated_at"`
	Result       CaseResult `json:"result"`
}
