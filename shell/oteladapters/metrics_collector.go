// Package oteladapters implements the shell and store observability interfaces on top of OpenTelemetry.
package oteladapters

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AntonStoeckl/library-rentals-go/shell"
)

// instruments caches one OpenTelemetry instrument per metric name.
// Recordings under a name the meter rejects are dropped.
type instruments[T any] struct {
	mu     sync.Mutex
	byName map[string]T
	create func(name string) (T, error)
}

func newInstruments[T any](create func(name string) (T, error)) *instruments[T] {
	return &instruments[T]{byName: make(map[string]T), create: create}
}

func (i *instruments[T]) get(name string) (T, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if instrument, ok := i.byName[name]; ok {
		return instrument, true
	}

	instrument, err := i.create(name)
	if err != nil {
		var zero T
		return zero, false
	}

	i.byName[name] = instrument

	return instrument, true
}

// MetricsCollector records durations as second histograms, counters as int64 counters and values as gauges.
type MetricsCollector struct {
	histograms *instruments[metric.Float64Histogram]
	counters   *instruments[metric.Int64Counter]
	gauges     *instruments[metric.Float64Gauge]
}

// NewMetricsCollector creates instruments lazily on meter.
func NewMetricsCollector(meter metric.Meter) *MetricsCollector {
	return &MetricsCollector{
		histograms: newInstruments(func(name string) (metric.Float64Histogram, error) {
			return meter.Float64Histogram(name, metric.WithDescription("Rental engine operation duration"), metric.WithUnit("s"))
		}),
		counters: newInstruments(func(name string) (metric.Int64Counter, error) {
			return meter.Int64Counter(name, metric.WithDescription("Rental engine operation counter"))
		}),
		gauges: newInstruments(func(name string) (metric.Float64Gauge, error) {
			return meter.Float64Gauge(name, metric.WithDescription("Rental engine current value"))
		}),
	}
}

func (m *MetricsCollector) RecordDuration(metricName string, duration time.Duration, labels map[string]string) {
	m.RecordDurationContext(context.Background(), metricName, duration, labels)
}

// RecordDurationContext records in seconds. The context links exemplars to the active span.
func (m *MetricsCollector) RecordDurationContext(ctx context.Context, metricName string, duration time.Duration, labels map[string]string) {
	if histogram, ok := m.histograms.get(metricName); ok {
		histogram.Record(ctx, duration.Seconds(), withLabels(labels))
	}
}

func (m *MetricsCollector) IncrementCounter(metricName string, labels map[string]string) {
	m.IncrementCounterContext(context.Background(), metricName, labels)
}

func (m *MetricsCollector) IncrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	if counter, ok := m.counters.get(metricName); ok {
		counter.Add(ctx, 1, withLabels(labels))
	}
}

func (m *MetricsCollector) RecordValue(metricName string, value float64, labels map[string]string) {
	m.RecordValueContext(context.Background(), metricName, value, labels)
}

func (m *MetricsCollector) RecordValueContext(ctx context.Context, metricName string, value float64, labels map[string]string) {
	if gauge, ok := m.gauges.get(metricName); ok {
		gauge.Record(ctx, value, withLabels(labels))
	}
}

func withLabels(labels map[string]string) metric.MeasurementOption {
	return metric.WithAttributes(toAttributes(labels)...)
}

func toAttributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for key, value := range labels {
		attrs = append(attrs, attribute.String(key, value))
	}

	return attrs
}

var _ shell.ContextualMetricsCollector = (*MetricsCollector)(nil)
