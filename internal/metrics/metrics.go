package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters.
type Metrics struct {
	messagesProcessed prometheus.Counter
	offersNormalized  prometheus.Counter
	diffsSkipped      prometheus.Counter
	sinkErrors        prometheus.Counter
	reconnects        prometheus.Counter
	errors            prometheus.Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// Init initializes global metrics (idempotent).
func Init() *Metrics {
	once.Do(func() {
		metrics = &Metrics{
			messagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "offerwatch_messages_processed_total",
				Help: "Total number of stream messages processed",
			}),
			offersNormalized: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "offerwatch_offers_normalized_total",
				Help: "Total number of offers normalized",
			}),
			diffsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "offerwatch_diffs_skipped_total",
				Help: "Total number of offer diffs skipped as malformed",
			}),
			sinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "offerwatch_sink_errors_total",
				Help: "Total number of failed sink deliveries",
			}),
			reconnects: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "offerwatch_feed_reconnects_total",
				Help: "Total number of feed reconnect attempts",
			}),
			errors: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "offerwatch_errors_total",
				Help: "Total number of errors encountered",
			}),
		}
		prometheus.MustRegister(
			metrics.messagesProcessed,
			metrics.offersNormalized,
			metrics.diffsSkipped,
			metrics.sinkErrors,
			metrics.reconnects,
			metrics.errors,
		)
	})
	return metrics
}

// MessagesProcessed increments the processed-messages counter.
func (m *Metrics) MessagesProcessed() {
	if m != nil {
		m.messagesProcessed.Inc()
	}
}

// OffersNormalized adds n to the normalized-offers counter.
func (m *Metrics) OffersNormalized(n int) {
	if m != nil && n > 0 {
		m.offersNormalized.Add(float64(n))
	}
}

// DiffsSkipped adds n to the skipped-diffs counter.
func (m *Metrics) DiffsSkipped(n int) {
	if m != nil && n > 0 {
		m.diffsSkipped.Add(float64(n))
	}
}

// SinkErrors increments the failed-delivery counter.
func (m *Metrics) SinkErrors() {
	if m != nil {
		m.sinkErrors.Inc()
	}
}

// Reconnects increments the reconnect counter.
func (m *Metrics) Reconnects() {
	if m != nil {
		m.reconnects.Inc()
	}
}

// Errors increments the errors counter.
func (m *Metrics) Errors() {
	if m != nil {
		m.errors.Inc()
	}
}

// Handler returns an HTTP handler for /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
