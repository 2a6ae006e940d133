// Package planner composes the outcome calculator, the eligibility
// classifier and the warning detector into single-case and batch
// evaluations.
package planner

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Skufu/refractplan/internal/eligibility"
	"github.com/Skufu/refractplan/internal/model"
	"github.com/Skufu/refractplan/internal/outcome"
	"github.com/Skufu/refractplan/internal/warnings"
)

const DefaultWorkers = 4

// Planner evaluates cases. It holds no per-case state and is safe for
// concurrent use.
type Planner struct {
	calc     *outcome.Calculator
	workers  int
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Planner)

// WithFormula selects the ablation-depth formula for every evaluation.
func WithFormula(f outcome.AblationFormula) Option {
	return func(p *Planner) {
		p.calc = outcome.NewCalculator(outcome.WithFormula(f))
	}
}

// WithWorkers bounds batch concurrency. Values below one are ignored.
func WithWorkers(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l.Named("planner")
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

func New(opts ...Option) *Planner {
	p := &Planner{
		calc:     outcome.NewCalculator(),
		workers:  DefaultWorkers,
		validate: NewValidator(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Formula returns the ablation formula in use.
func (p *Planner) Formula() outcome.AblationFormula { return p.calc.Formula() }

// NewValidator returns a validator reading `binding` tags and reporting
// fields by their JSON names, matching what gin produces for request bodies.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(JSONFieldName)
	return v
}

// JSONFieldName returns the JSON key of a struct field.
func JSONFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// FieldErrors translates validator errors into field problems. Other
// errors yield nil.
func FieldErrors(err error) []model.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		problem := "is invalid"
		if fe.Tag() == "required" {
			problem = "is required"
		}
		out = append(out, model.FieldError{Field: fe.Field(), Problem: problem})
	}
	return out
}

// Validate checks that in carries every field the configured formula needs.
func (p *Planner) Validate(in model.CaseInput) error {
	verr := &model.ValidationError{}
	if err := p.validate.Struct(in); err != nil {
		fields := FieldErrors(err)
		if fields == nil {
			return fmt.Errorf("validate case: %w", err)
		}
		verr.Fields = append(verr.Fields, fields...)
	}
	if p.calc.Formula().RequiresOpticalZone() {
		switch {
		case in.OpticalZone == nil:
			verr.Add("optical_zone", fmt.Sprintf("is required by the %s formula", p.calc.Formula()))
		case *in.OpticalZone <= 0:
			verr.Add("optical_zone", "must be greater than zero")
		}
	}
	return verr.OrNil()
}

// Assess evaluates a complete input. It is a pure function of in.
func (p *Planner) Assess(patientID string, in outcome.Input) model.CaseResult {
	out := p.calc.Calculate(in)
	verdict := eligibility.Classify(in, out)
	found := warnings.Detect(in, out)

	return model.CaseResult{
		PatientID:           patientID,
		AblationFormula:     p.calc.Formula(),
		Refraction:          out.Refraction.String(),
		SphericalEquivalent: out.SphericalEquivalent,
		KAvgPre:             out.KAvgPre,
		K1Post:              out.K1Post,
		K2Post:              out.K2Post,
		KAvgPost:            out.KAvgPost,
		AblationDepth:       out.AblationDepth,
		PachymetryPost:      out.PachymetryPost,
		BCVAPost:            out.BCVAPost,
		Eligibility:         verdict.Flags,
		Recommendation:      verdict.Label(),
		Warnings:            warnings.Messages(found),
		WarningCodes:        warnings.Codes(found),
	}
}

// Evaluate validates and assesses one record.
func (p *Planner) Evaluate(in model.CaseInput) (model.CaseResult, error) {
	if err := p.Validate(in); err != nil {
		return model.CaseResult{}, err
	}
	return p.Assess(in.PatientID, in.Outcome()), nil
}

// Evaluation wraps Evaluate with an id and timestamp.
func (p *Planner) Evaluation(in model.CaseInput) (model.Evaluation, error) {
	res, err := p.Evaluate(in)
	if err != nil {
		return model.Evaluation{}, err
	}
	return model.Evaluation{
		EvaluationID: uuid.New().String(),
		EvaluatedAt:  p.now().UTC().Format(time.RFC3339),
		Result:       res,
	}, nil
}

func (p *Planner) evaluateItem(item model.BatchItem) model.BatchRowResult {
	row := model.BatchRowResult{Row: item.Row, PatientID: item.Input.PatientID}

	err := item.Err
	if err == nil {
		var res model.CaseResult
		res, err = p.Evaluate(item.Input)
		if err == nil {
			row.Result = &res
			return row
		}
	}

	row.Error = err.Error()
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		row.Problems = verr.Fields
	}
	p.logger.Debug("row rejected", zap.Int("row", item.Row), zap.String("patient_id", item.Input.PatientID), zap.Error(err))
	return row
}

// EvaluateBatch evaluates items concurrently and returns one row result
// per item in input order. Malformed rows are reported individually; only
// context cancellation aborts the batch.
func (p *Planner) EvaluateBatch(ctx context.Context, items []model.BatchItem) (model.BatchResult, error) {
	started := p.now()
	rows := make([]model.BatchRowResult, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows[i] = p.evaluateItem(item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.BatchResult{}, fmt.Errorf("evaluate batch: %w", err)
	}

	summary := model.BatchSummary{Total: len(rows)}
	for _, r := range rows {
		if r.Rejected() {
			summary.Rejected++
		} else {
			summary.Evaluated++
		}
	}

	result := model.BatchResult{
		BatchID:     uuid.New().String(),
		EvaluatedAt: started.UTC().Format(time.RFC3339),
		Rows:        rows,
		Summary:     summary,
	}
	p.logger.Info("batch evaluated",
		zap.String("batch_id", result.BatchID),
		zap.Int("total", summary.Total),
		zap.Int("evaluated", summary.Evaluated),
		zap.Int("rejected", summary.Rejected),
		zap.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

// Items wraps decoded records as batch items numbered from one.
func Items(inputs []model.CaseInput) []model.BatchItem {
	items := make([]model.BatchItem, len(inputs))
	for i, in := range inputs {
		items[i] = model.BatchItem{Row: i + 1, Input: in}
	}
	return items
}
