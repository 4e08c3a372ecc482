// Package metrics exposes pipeline counters on a private Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookgest"

// Metrics holds every collector the service reports. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	books      *prometheus.CounterVec
	chunks     prometheus.Counter
	paragraphs prometheus.Counter
	linesCut   prometheus.Counter
	stage      *prometheus.HistogramVec
	languages  *prometheus.CounterVec
	deliveries *prometheus.CounterVec
	queueDepth prometheus.Gauge
}

// New registers the collectors plus the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		books: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "books_processed_total",
			Help:      "Books processed, by final status.",
		}, []string{"status"}),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_emitted_total",
			Help:      "Chunk records written.",
		}),
		paragraphs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_paragraphs_dropped_total",
			Help:      "Paragraphs removed as repeats of an earlier paragraph.",
		}),
		linesCut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trailing_lines_trimmed_total",
			Help:      "Lines removed as trailing back matter.",
		}),
		stage: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage per book.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"stage"}),
		languages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "books_by_language_total",
			Help:      "Books tagged with each language code.",
		}, []string{"lang"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_deliveries_total",
			Help:      "Chunk stream deliveries to the index service, by outcome.",
		}, []string{"outcome"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Ingest jobs waiting for a worker.",
		}),
	}
	reg.MustRegister(
		m.books, m.chunks, m.paragraphs, m.linesCut, m.stage,
		m.languages, m.deliveries, m.queueDepth,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// BookDone records one finished book.
func (m *Metrics) BookDone(status, lang string, chunks, dupParagraphs, trimmedLines int) {
	if m == nil {
		return
	}
	m.books.WithLabelValues(status).Inc()
	if lang != "" {
		m.languages.WithLabelValues(lang).Inc()
	}
	m.chunks.Add(float64(chunks))
	m.paragraphs.Add(float64(dupParagraphs))
	m.linesCut.Add(float64(trimmedLines))
}

// ObserveStage records the duration of one stage for one book.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stage.WithLabelValues(stage).Observe(d.Seconds())
}

// Delivery records an index delivery outcome ("ok" or "error").
func (m *Metrics) Delivery(outcome string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(outcome).Inc()
}

// SetQueueDepth reports the ingest queue length.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}
