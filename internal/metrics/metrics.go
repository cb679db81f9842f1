// Package metrics records per-run pipeline metrics on a private Prometheus
// registry that can be dumped to a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/seenimoa/fincurator/pkg/models"
)

// Recorder collects the metrics of one run.
type Recorder struct {
	registry *prometheus.Registry

	articles      *prometheus.CounterVec
	sourceErrors  *prometheus.CounterVec
	rows          *prometheus.GaugeVec
	completeness  *prometheus.GaugeVec
	missingValues *prometheus.GaugeVec
	outliers      *prometheus.GaugeVec
	stageDuration *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		articles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincurator_articles_total",
				Help: "Articles seen by the news scorer, by outcome",
			},
			[]string{"symbol", "outcome"},
		),
		sourceErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincurator_source_errors_total",
				Help: "News sources that failed or timed out",
			},
			[]string{"source"},
		),
		rows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fincurator_rows",
				Help: "Rows in the exported feature table",
			},
			[]string{"symbol"},
		),
		completeness: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fincurator_completeness_ratio",
				Help: "Non-null cells over total cells of the feature table",
			},
			[]string{"symbol"},
		),
		missingValues: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fincurator_missing_values",
				Help: "Null cells per feature column",
			},
			[]string{"symbol", "column"},
		),
		outliers: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fincurator_outliers",
				Help: "Outlier cells per checked column",
			},
			[]string{"symbol", "column"},
		),
		stageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fincurator_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// RecordNews records scorer outcomes.
func (r *Recorder) RecordNews(symbol string, s models.NewsStats) {
	r.articles.WithLabelValues(symbol, "received").Add(float64(s.Received))
	r.articles.WithLabelValues(symbol, "dropped").Add(float64(s.Dropped))
	r.articles.WithLabelValues(symbol, "duplicate").Add(float64(s.Duplicates))
	r.articles.WithLabelValues(symbol, "irrelevant").Add(float64(s.Irrelevant))
	r.articles.WithLabelValues(symbol, "scored").Add(float64(s.Scored))
}

// RecordSourceError records a failed news source.
func (r *Recorder) RecordSourceError(source string) {
	r.sourceErrors.WithLabelValues(source).Inc()
}

// RecordSummary records table-level quality.
func (r *Recorder) RecordSummary(symbol string, s models.ValidationSummary) {
	r.rows.WithLabelValues(symbol).Set(float64(s.TotalRows))
	r.completeness.WithLabelValues(symbol).Set(s.CompletenessRatio)
	for col, n := range s.MissingValueCounts {
		r.missingValues.WithLabelValues(symbol, col).Set(float64(n))
	}
	for col, n := range s.OutlierCounts {
		r.outliers.WithLabelValues(symbol, col).Set(float64(n))
	}
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Time returns a func that records the stage duration when called.
func (r *Recorder) Time(stage string) func() {
	start := time.Now()
	return func() { r.ObserveStage(stage, time.Since(start)) }
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
