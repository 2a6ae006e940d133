package model

// BatchItem is one row handed to a batch evaluation. Err is set when the
// row could not be decoded; such rows are reported, not evaluated.
type BatchItem struct {
	Row   int
	Input CaseInput
	Err   error
}

// BatchRowResult is the outcome of one row: a result or an error.
type BatchRowResult struct {
	Row       int          `json:"row"`
	PatientID string       `json:"patient_id,omitempty"`
	Result    *CaseResult  `json:"result,omitempty"`
	Error     string       `json:"error,omitempty"`
	Problems  []FieldError `json:"problems,omitempty"`
}

// Rejected reports whether the row failed.
func (r BatchRowResult) Rejected() bool { return r.Result == nil }

type BatchSummary struct {
	Total     int `json:"total"`
	Evaluated int `json:"evaluated"`
	Rejected  int `json:"rejected"`
}

// BatchResult holds one row result per input row, in input order.
type BatchResult struct {
	BatchID     string           `json:"batch_id"`
	EvaluatedAt string           `json:"evaluated_at"`
	Rows        []BatchRowResult `json:"rows"`
	Summary     BatchSummary     `json:"summary"`
}
