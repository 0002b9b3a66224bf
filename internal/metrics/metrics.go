// Package metrics collects and exposes Prometheus metrics for the ingestion
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the recording interface consumed by the pipeline.
type Collector interface {
	RecordRun(success bool)
	RecordCommentsIngested(count int)
	RecordSpamFlagged()
	RecordModerationFailure()
}

// PrometheusCollector implements Collector on a Prometheus registry.
type PrometheusCollector struct {
	runs               *prometheus.CounterVec
	commentsIngested   prometheus.Counter
	spamFlagged        prometheus.Counter
	moderationFailures prometheus.Counter
}

// NewCollector registers the pipeline metrics on reg.
func NewCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tubesweep_runs_total",
			Help: "Total ingestion pipeline runs by outcome.",
		}, []string{"status"}),
		commentsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tubesweep_comments_ingested_total",
			Help: "Total new comments appended to the store.",
		}),
		spamFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tubesweep_spam_flagged_total",
			Help: "Total comments classified as spam.",
		}),
		moderationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tubesweep_moderation_failures_total",
			Help: "Total failed moderation calls against the platform.",
		}),
	}

	reg.MustRegister(c.runs, c.commentsIngested, c.spamFlagged, c.moderationFailures)
	return c
}

func (c *PrometheusCollector) RecordRun(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	c.runs.WithLabelValues(status).Inc()
}

func (c *PrometheusCollector) RecordCommentsIngested(count int) {
	c.commentsIngested.Add(float64(count))
}

func (c *PrometheusCollector) RecordSpamFlagged() {
	c.spamFlagged.Inc()
}

func (c *PrometheusCollector) RecordModerationFailure() {
	c.moderationFailures.Inc()
}

// Handler returns the scrape endpoint for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Nop is a Collector that records nothing.
type Nop struct{}

func (Nop) RecordRun(bool)             {}
func (Nop) RecordCommentsIngested(int) {}
func (Nop) RecordSpamFlagged()         {}
func (Nop) RecordModerationFailure()   {}
