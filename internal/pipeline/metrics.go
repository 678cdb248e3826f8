package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PagesGenerated         prometheus.Counter
	PagesFailed            prometheus.Counter
	PublishFailures        prometheus.Counter
	ClassificationFailures prometheus.Counter
	GenerationSeconds      prometheus.Histogram
}

// NewMetrics registers the pipeline collectors with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PagesGenerated: f.NewCounter(prometheus.CounterOpts{
			Name: "ruh_pages_generated_total",
			Help: "Integration pages generated and saved locally.",
		}),
		PagesFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "ruh_pages_failed_total",
			Help: "Connectors whose page could not be generated or saved.",
		}),
		PublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "ruh_publish_failures_total",
			Help: "CMS publish attempts that did not succeed.",
		}),
		ClassificationFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "ruh_classification_failures_total",
			Help: "Payloads assembled without a usable taxonomy.",
		}),
		GenerationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ruh_page_generation_seconds",
			Help:    "Wall time to research, generate and save one page.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
	}
}
