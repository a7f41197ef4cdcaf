// Package metrics exposes Prometheus counters for the fetch pipeline.
//
// A Recorder owns its own registry so tests and multiple pipelines in one
// process never collide on the global default registerer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskfetch"

// Task outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeIgnored = "ignored"
)

// Recorder collects transport and task counters. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	attempts *prometheus.CounterVec
	retries  *prometheus.CounterVec
	failures *prometheus.CounterVec
	tasks    *prometheus.CounterVec
}

// NewRecorder creates a Recorder with a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "attempts_total",
			Help:      "HTTP attempts issued, including retries.",
		}, []string{"endpoint"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "retries_total",
			Help:      "Calls that were retried after a failed first attempt.",
		}, []string{"endpoint"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "failures_total",
			Help:      "Calls that surfaced an error to the caller, by error kind.",
		}, []string{"endpoint", "kind"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "FetchTask invocations by outcome.",
		}, []string{"outcome"}),
	}

	r.registry.MustRegister(r.attempts, r.retries, r.failures, r.tasks)
	return r
}

// Attempt counts one HTTP attempt against endpoint.
func (r *Recorder) Attempt(endpoint string) {
	if r == nil {
		return
	}
	r.attempts.WithLabelValues(endpoint).Inc()
}

// Retry counts a retry of a call against endpoint.
func (r *Recorder) Retry(endpoint string) {
	if r == nil {
		return
	}
	r.retries.WithLabelValues(endpoint).Inc()
}

// Failure counts a call against endpoint that failed with kind.
func (r *Recorder) Failure(endpoint, kind string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(endpoint, kind).Inc()
}

// Task counts a FetchTask invocation with the given outcome.
func (r *Recorder) Task(outcome string) {
	if r == nil {
		return
	}
	r.tasks.WithLabelValues(outcome).Inc()
}

// Registry returns the registry backing this recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns an http.Handler serving the recorder's metrics in the
// Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
