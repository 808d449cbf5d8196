// Package metrics exposes the Prometheus counters and histograms recorded by
// the identity, reservation and HTTP layers.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess       = "success"
	OutcomeAlreadyBooked = "already_booked"
	OutcomeNotFound      = "not_found"
	OutcomeRejected      = "rejected"
	OutcomeError         = "error"
)

// Login method labels.
const (
	MethodPassword = "password"
	MethodExternal = "external"
)

// Recorder is what services depend on, so tests can pass Nop.
type Recorder interface {
	RecordReservation(outcome string)
	RecordLogin(method, outcome string)
	RecordTokenIssued()
	RecordRequest(method string, status int, elapsed time.Duration)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	reservations *prometheus.CounterVec
	logins       *prometheus.CounterVec
	tokens       prometheus.Counter
	requests     *prometheus.HistogramVec
}

var _ Recorder = (*Collector)(nil)

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agendafacil_reservations_total",
			Help: "Reservation attempts by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agendafacil_logins_total",
			Help: "Login and identity resolution attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		tokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agendafacil_tokens_issued_total",
			Help: "Bearer tokens issued.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agendafacil_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	reg.MustRegister(c.reservations, c.logins, c.tokens, c.requests)
	return c
}

func (c *Collector) RecordReservation(outcome string) {
	c.reservations.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordLogin(method, outcome string) {
	c.logins.WithLabelValues(method, outcome).Inc()
}

func (c *Collector) RecordTokenIssued() {
	c.tokens.Inc()
}

func (c *Collector) RecordRequest(method string, status int, elapsed time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordReservation(string)                 {}
func (Nop) RecordLogin(string, string)               {}
func (Nop) RecordTokenIssued()                       {}
func (Nop) RecordRequest(string, int, time.Duration) {}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
