package metrics

import (
	"errors"
	"time"

	"github.com/contre95/monkeypress/src/content"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns the Prometheus registry and the site's metrics.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry         *prometheus.Registry
	relationWrites   *prometheus.CounterVec
	listingQueries   *prometheus.CounterVec
	listingDuration  *prometheus.HistogramVec
	danglingReported *prometheus.CounterVec
	danglingLinks    prometheus.Gauge
	entities         *prometheus.GaugeVec
}

// NewCollector creates a registry with the site metrics and the Go runtime
// collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		relationWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "monkeypress",
			Name:      "relations_writes_total",
			Help:      "Relationship collection writes by operation, link kind and result.",
		}, []string{"op", "kind", "result"}),
		listingQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "monkeypress",
			Name:      "listing_queries_total",
			Help:      "Listing page queries by index.",
		}, []string{"index"}),
		listingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "monkeypress",
			Name:      "listing_query_seconds",
			Help:      "Time spent filtering, sorting and paginating a listing.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"index"}),
		danglingReported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "monkeypress",
			Name:      "dangling_reported_total",
			Help:      "Dangling links reported, by where they were found.",
		}, []string{"source"}),
		danglingLinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "monkeypress",
			Name:      "dangling_links",
			Help:      "Links whose target was deleted and that still need editorial cleanup.",
		}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "monkeypress",
			Name:      "entities",
			Help:      "Stored entities by kind.",
		}, []string{"kind"}),
	}

	c.registry.MustRegister(
		c.relationWrites,
		c.listingQueries,
		c.listingDuration,
		c.danglingReported,
		c.danglingLinks,
		c.entities,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Result classifies an operation error into a metric label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, content.ErrValidation):
		return "invalid"
	case errors.Is(err, content.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// unknownKind labels writes naming a link kind that is not registered.
const unknownKind = "unknown"

// kindLabel returns the registered name of kind, so label values stay
// bounded by the link registry.
func kindLabel(kind content.LinkKind) string {
	spec, err := content.Links.Spec(kind)
	if err != nil {
		return unknownKind
	}
	return string(spec.Kind)
}

// ObserveWrite counts one relationship collection write.
func (c *Collector) ObserveWrite(op string, kind content.LinkKind, err error) {
	if c == nil {
		return
	}
	c.relationWrites.WithLabelValues(op, kindLabel(kind), Result(err)).Inc()
}

// ObserveListing counts a listing query and its duration since start.
func (c *Collector) ObserveListing(index string, start time.Time) {
	if c == nil {
		return
	}
	c.listingQueries.WithLabelValues(index).Inc()
	c.listingDuration.WithLabelValues(index).Observe(time.Since(start).Seconds())
}

// ReportDangling counts n dangling links found by source.
func (c *Collector) ReportDangling(source string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.danglingReported.WithLabelValues(source).Add(float64(n))
}

// SetDangling sets the number of dangling links currently stored.
func (c *Collector) SetDangling(n int) {
	if c == nil {
		return
	}
	c.danglingLinks.Set(float64(n))
}

// SetEntityCounts sets the per kind entity gauges.
func (c *Collector) SetEntityCounts(counts map[content.Kind]int) {
	if c == nil {
		return
	}
	for _, kind := range content.Kinds {
		c.entities.WithLabelValues(string(kind)).Set(float64(counts[kind]))
	}
}
