package reporter

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/Skufu/refractplan/internal/model"
)

// JSONReporter writes results as indented JSON, one document per call.
type JSONReporter struct {
	w io.Writer
}

func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

func (r *JSONReporter) ReportCase(res model.CaseResult) error {
	return r.encode(res)
}

func (r *JSONReporter) ReportBatch(res model.BatchResult) error {
	return r.encode(res)
}

func (r *JSONReporter) encode(v any) error {
	encoder := json.NewEncoder(r.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
