// Package metrics exposes prometheus instrumentation for scaling filters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scalingbloom"

// Label values
const (
	ResultAdded   = "added"
	ResultPresent = "present"
	ResultHit     = "hit"
	ResultMiss    = "miss"
)

// Metrics holds the collectors for one or more scaling filters. All of them
// are registered with the registerer given to New.
type Metrics struct {
	// Adds counts Add calls by outcome: added or present (skipped by a
	// check-first add)
	Adds *prometheus.CounterVec
	// Queries counts membership lookups by outcome: hit or miss
	Queries *prometheus.CounterVec
	// Layers is the number of bloom filters currently stacked
	Layers prometheus.Gauge
	// Capacity is the sum of the designed capacities of the stacked filters
	Capacity prometheus.Gauge
	// BitmapBytes is the total size of the filter bitmaps
	BitmapBytes prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which suits tests and callers that collect manually.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Adds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "adds_total",
				Help:      "The total number of keys offered to the filter",
			},
			[]string{"result"},
		),
		Queries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "The total number of membership queries",
			},
			[]string{"result"},
		),
		Layers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "layers",
				Help:      "The number of bloom filters in the stack",
			},
		),
		Capacity: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "capacity",
				Help:      "The designed capacity of all bloom filters in the stack",
			},
		),
		BitmapBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "bitmap_bytes",
				Help:      "The total size of the bloom filter bitmaps in bytes",
			},
		),
	}
}

// RecordAdd records the outcome of an add
func (m *Metrics) RecordAdd(added bool) {
	if m == nil {
		return
	}
	result := ResultPresent
	if added {
		result = ResultAdded
	}
	m.Adds.WithLabelValues(result).Inc()
}

// RecordQuery records the outcome of a membership query
func (m *Metrics) RecordQuery(hit bool) {
	if m == nil {
		return
	}
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	m.Queries.WithLabelValues(result).Inc()
}

// SetShape publishes the current layer count, total capacity and total
// bitmap size
func (m *Metrics) SetShape(layers int, capacity uint64, bitmapBytes uint64) {
	if m == nil {
		return
	}
	m.Layers.Set(float64(layers))
	m.Capacity.Set(float64(capacity))
	m.BitmapBytes.Set(float64(bitmapBytes))
}
