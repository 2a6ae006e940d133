package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Skufu/refractplan/internal/model"
)

const (
	refractplan = "refractplan"

	casesEvaluatedTotal = "cases_evaluated_total"
	warningsRaisedTotal = "warnings_raised_total"
	batchRowsTotal      = "batch_rows_total"

	// Labels
	recommendationLabel = "recommendation"
	warningCodeLabel    = "code"
	rowStatusLabel      = "status"

	rowEvaluated = "evaluated"
	rowRejected  = "rejected"
)

var casesEvaluatedMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: refractplan,
		Name:      casesEvaluatedTotal,
		Help:      "number of evaluated cases partitioned by recommendation",
	},
	[]string{recommendationLabel},
)

var warningsRaisedMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: refractplan,
		Name:      warningsRaisedTotal,
		Help:      "number of clinical warnings raised partitioned by code",
	},
	[]string{warningCodeLabel},
)

var batchRowsMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: refractplan,
		Name:      batchRowsTotal,
		Help:      "number of batch rows partitioned by status",
	},
	[]string{rowStatusLabel},
)

// ObserveCase records a single evaluated case.
func ObserveCase(res model.CaseResult) {
	casesEvaluatedMetric.With(prometheus.Labels{recommendationLabel: res.Recommendation}).Inc()
	for _, code := range res.WarningCodes {
		warningsRaisedMetric.With(prometheus.Labels{warningCodeLabel: string(code)}).Inc()
	}
}

// ObserveBatch records every evaluated row of res as a case and counts
// rows by status.
func ObserveBatch(res model.BatchResult) {
	for _, row := range res.Rows {
		if row.Rejected() {
			continue
		}
		ObserveCase(*row.Result)
	}
	batchRowsMetric.With(prometheus.Labels{rowStatusLabel: rowEvaluated}).Add(float64(res.Summary.Evaluated))
	batchRowsMetric.With(prometheus.Labels{rowStatusLabel: rowRejected}).Add(float64(res.Summary.Rejected))
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(casesEvaluatedMetric)
	prometheus.MustRegister(warningsRaisedMetric)
	prometheus.MustRegister(batchRowsMetric)
}
