// Package metrics exposes pipeline counters through a private prometheus
// registry that can be written out in the node-exporter textfile format
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alt-project/normscan/internal/group"
	"github.com/alt-project/normscan/internal/normality"
)

const namespace = "normscan"

// Collector counts pipeline activity. It satisfies anomaly.Observer.
type Collector struct {
	registry   *prometheus.Registry
	samples    prometheus.Counter
	groups     prometheus.Counter
	classified prometheus.Counter
	skipped    prometheus.Counter
	anomalies  prometheus.Counter
	groupSize  prometheus.Histogram
}

// NewCollector creates a collector whose series carry a source label
func NewCollector(source string) *Collector {
	labels := prometheus.Labels{"source": source}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "samples_read_total",
			Help:        "Samples read from the input.",
			ConstLabels: labels,
		}),
		groups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "groups_formed_total",
			Help:        "Day groups formed by the grouper.",
			ConstLabels: labels,
		}),
		classified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "groups_classified_total",
			Help:        "Day groups run through the normality test.",
			ConstLabels: labels,
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "groups_skipped_total",
			Help:        "Day groups skipped for having too few samples.",
			ConstLabels: labels,
		}),
		anomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "anomalies_total",
			Help:        "Day groups classified as not normally distributed.",
			ConstLabels: labels,
		}),
		groupSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "group_samples",
			Help:        "Number of samples per day group.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(8, 4, 8),
		}),
	}

	c.registry.MustRegister(c.samples, c.groups, c.classified, c.skipped, c.anomalies, c.groupSize)
	return c
}

// SampleRead counts one sample
func (c *Collector) SampleRead() {
	c.samples.Inc()
}

// GroupFormed counts a group and records its size
func (c *Collector) GroupFormed(g group.Group) {
	c.groups.Inc()
	c.groupSize.Observe(float64(g.Len()))
}

// GroupClassified counts a tested group and, when it failed the test, an anomaly
func (c *Collector) GroupClassified(_ group.Group, r normality.Result) {
	c.classified.Inc()
	if !r.IsNormal {
		c.anomalies.Inc()
	}
}

// GroupSkipped counts a group that was too small to test
func (c *Collector) GroupSkipped(group.Group, error) {
	c.skipped.Inc()
}

// Registry returns the registry holding the collector's series
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile atomically writes all series to path
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
