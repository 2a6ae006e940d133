package intake

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Skufu/refractplan/internal/model"
)

// Record is one raw input row keyed by canonical field name. Err is set
// when the row itself could not be read; Decode reports it as is.
type Record struct {
	Row    int
	Values map[string]string
	Err    error
}

// NewRecord normalizes the keys of values. Two keys that normalize to the
// same field make the record fail to decode.
func NewRecord(row int, values map[string]string) Record {
	rec := Record{Row: row, Values: make(map[string]string, len(values))}
	seen := make(map[string]string, len(values))
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		key := NormalizeKey(k)
		if prev, ok := seen[key]; ok && rec.Err == nil {
			rec.Err = duplicateColumn(prev, k, key)
		}
		seen[key] = k
		rec.Values[key] = strings.TrimSpace(values[k])
	}
	return rec
}

// FailedRecord is a row that could not be read at all.
func FailedRecord(row int, err error) Record {
	return Record{Row: row, Values: map[string]string{}, Err: err}
}

// FromJSON converts one element of a JSON array into a Record. Anything
// other than an object yields a failed record.
func FromJSON(row int, raw []byte) Record {
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return FailedRecord(row, fmt.Errorf("%w: %s", ErrNotAnObject, compact(raw)))
	}
	return FromMap(row, values)
}

func compact(raw []byte) string {
	const limit = 32
	s := strings.TrimSpace(string(raw))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// FromMap converts a decoded JSON object into a Record. Numbers are kept
// in their shortest exact form; nested values are rendered with %v and
// fail numeric parsing later.
func FromMap(row int, values map[string]any) Record {
	raw := make(map[string]string, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case nil:
			raw[k] = ""
		case string:
			raw[k] = val
		case float64:
			raw[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			raw[k] = strconv.FormatBool(val)
		default:
			raw[k] = fmt.Sprintf("%v", val)
		}
	}
	return NewRecord(row, raw)
}

// MaxAge bounds the age field so it always fits an int.
const MaxAge = 150

// parseNumber reads a finite decimal. A single comma with no dot is taken
// as a decimal comma ("540,5"); any other comma, such as a thousands
// separator, is rejected.
func parseNumber(raw string) (float64, bool) {
	if strings.Contains(raw, ",") {
		if strings.Count(raw, ",") != 1 || strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.Replace(raw, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (r Record) number(key string, required bool, verr *model.ValidationError) *float64 {
	raw, ok := r.Values[key]
	if !ok || raw == "" {
		if required {
			verr.Add(key, "is required")
		}
		return nil
	}
	v, ok := parseNumber(raw)
	if !ok {
		verr.Add(key, fmt.Sprintf("must be numeric, got %q", raw))
		return nil
	}
	return &v
}

func (r Record) whole(key string, verr *model.ValidationError) *int {
	raw, ok := r.Values[key]
	if !ok || raw == "" {
		verr.Add(key, "is required")
		return nil
	}
	v, ok := parseNumber(raw)
	switch {
	case !ok:
		verr.Add(key, fmt.Sprintf("must be numeric, got %q", raw))
		return nil
	case v != math.Trunc(v):
		verr.Add(key, fmt.Sprintf("must be a whole number, got %q", raw))
		return nil
	case v < 0 || v > MaxAge:
		verr.Add(key, fmt.Sprintf("must be between 0 and %d, got %q", MaxAge, raw))
		return nil
	}
	n := int(v)
	return &n
}

// Decode parses the record into a case input. Missing and non-numeric
// fields are collected into one *model.ValidationError.
func (r Record) Decode() (model.CaseInput, error) {
	if r.Err != nil {
		return model.CaseInput{PatientID: r.Values[KeyPatientID]}, fmt.Errorf("row %d: %w", r.Row, r.Err)
	}
	verr := &model.ValidationError{}
	in := model.CaseInput{
		PatientID:     r.Values[KeyPatientID],
		Age:           r.whole(KeyAge, verr),
		Sphere:        r.number(KeySphere, true, verr),
		Cylinder:      r.number(KeyCylinder, true, verr),
		K1Pre:         r.number(KeyK1Pre, true, verr),
		K2Pre:         r.number(KeyK2Pre, true, verr),
		PachymetryPre: r.number(KeyPachymetryPre, true, verr),
		BCVAPre:       r.number(KeyBCVAPre, true, verr),
		OpticalZone:   r.number(KeyOpticalZone, false, verr),
	}
	if err := verr.OrNil(); err != nil {
		return in, fmt.Errorf("row %d: %w", r.Row, err)
	}
	return in, nil
}

// Items decodes every record into a batch item. Decode failures are kept
// on the item rather than dropped.
func Items(records []Record) []model.BatchItem {
	items := make([]model.BatchItem, 0, len(records))
	for _, rec := range records {
		in, err := rec.Decode()
		items = append(items, model.BatchItem{Row: rec.Row, Input: in, Err: err})
	}
	return items
}
