package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the service's Prometheus collectors. A nil *Registry is
// valid and records nothing.
type Registry struct {
	reg           *prometheus.Registry
	Transitions   *prometheus.CounterVec
	Lookups       *prometheus.CounterVec
	Submissions   *prometheus.CounterVec
	LookupLatency prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pmove_draft_transitions_total",
		Help: "Reservation draft events by outcome.",
	}, []string{"event", "result"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pmove_lookups_total",
		Help: "Reservation lookups against the PMove API.",
	}, []string{"result"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pmove_submissions_total",
		Help: "Ticket submissions to the PMove API.",
	}, []string{"result"})
	lookupLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pmove_lookup_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(transitions, lookups, submissions, lookupLatency)
	return &Registry{
		reg:           r,
		Transitions:   transitions,
		Lookups:       lookups,
		Submissions:   submissions,
		LookupLatency: lookupLatency,
	}
}

func (r *Registry) ObserveTransition(event, result string) {
	if r == nil {
		return
	}
	r.Transitions.WithLabelValues(event, result).Inc()
}

func (r *Registry) ObserveLookup(result string, took time.Duration) {
	if r == nil {
		return
	}
	r.Lookups.WithLabelValues(result).Inc()
	r.LookupLatency.Observe(took.Seconds())
}

func (r *Registry) ObserveSubmission(result string) {
	if r == nil {
		return
	}
	r.Submissions.WithLabelValues(result).Inc()
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
