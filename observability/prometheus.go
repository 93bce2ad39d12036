package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultBuckets covers minor-unit amounts from one cent up to ten million
// major units, and small line counts.
var DefaultBuckets = prometheus.ExponentialBuckets(1, 10, 10)

// PrometheusFactory is a MetricFactory backed by a prometheus.Registerer.
// Dotted metric names become underscored; counters get a _total suffix.
type PrometheusFactory struct {
	mu         sync.Mutex
	factory    promauto.Factory
	buckets    []float64
	counters   map[string]prometheus.Counter
	histograms map[string]prometheus.Histogram
}

// NewPrometheusFactory registers metrics with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewPrometheusFactory(reg prometheus.Registerer) *PrometheusFactory {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusFactory{
		factory:    promauto.With(reg),
		buckets:    DefaultBuckets,
		counters:   make(map[string]prometheus.Counter),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// Counter implements MetricFactory. Asking twice for a name returns the same
// collector.
func (f *PrometheusFactory) Counter(name string) Counter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.counters[name]; ok {
		return c
	}
	c := f.factory.NewCounter(prometheus.CounterOpts{
		Name: metricName(name) + "_total",
		Help: "Count of " + name + " events.",
	})
	f.counters[name] = c
	return c
}

// Histogram implements MetricFactory.
func (f *PrometheusFactory) Histogram(name string) Histogram {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, ok := f.histograms[name]; ok {
		return h
	}
	h := f.factory.NewHistogram(prometheus.HistogramOpts{
		Name:    metricName(name),
		Help:    "Distribution of " + name + ".",
		Buckets: f.buckets,
	})
	f.histograms[name] = h
	return h
}

func metricName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}
