// Package metrics records Prometheus metrics for profiling runs.
//
// # Overview
//
// A Collector owns a dedicated registry so that a run's metrics never mix
// with the default global registry. It tracks:
//   - columns profiled, by kind
//   - rows scanned
//   - per-column and per-run profiling latency
//   - datasets loaded, by source format
//
// # Basic Usage
//
//	collector := metrics.NewCollector()
//	engine := profile.NewEngine(profile.WithRecorder(collector))
//
//	timer := metrics.NewTimer("profile")
//	p, err := engine.Profile(ctx, ds)
//	collector.ObserveProfile(timer.Stop())
//
//	if err := collector.WriteTextfile("/var/lib/node_exporter/tabprofile.prom"); err != nil {
//	    return err
//	}
//
// # Metric Types
//
// Counter: columns_profiled_total, rows_scanned_total, datasets_loaded_total
// Histogram: column_duration_seconds, profile_duration_seconds
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/tabprofile/pkg/errors"
)

// Namespace prefixes every metric name.
const Namespace = "tabprofile"

// Collector holds the metrics of one profiling run. It is safe for
// concurrent use; Prometheus vectors do their own locking.
type Collector struct {
	registry        *prometheus.Registry
	columnsProfiled *prometheus.CounterVec   // columns by kind
	rowsScanned     prometheus.Counter       // rows over all columns
	columnDuration  *prometheus.HistogramVec // per-column latency by kind
	profileDuration prometheus.Histogram     // whole-dataset latency
	datasetsLoaded  *prometheus.CounterVec   // loads by format and status
	startTime       time.Time
}

// NewCollector creates a collector on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		columnsProfiled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "columns_profiled_total",
				Help:      "Total number of columns profiled",
			},
			[]string{"kind"},
		),
		rowsScanned: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "rows_scanned_total",
				Help:      "Total number of cells scanned across all profiled columns",
			},
		),
		columnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "column_duration_seconds",
				Help:      "Time spent classifying and summarizing one column",
				Buckets: []float64{
					1e-5, // 10μs - tiny columns
					1e-4, // 100μs
					1e-3, // 1ms
					1e-2, // 10ms
					1e-1, // 100ms
					1,    // 1s - large text columns
					10,
				},
			},
			[]string{"kind"},
		),
		profileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "profile_duration_seconds",
				Help:      "Time spent profiling a whole dataset",
				Buckets:   prometheus.ExponentialBuckets(1e-4, 10, 7),
			},
		),
		datasetsLoaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "datasets_loaded_total",
				Help:      "Total number of dataset loads",
			},
			[]string{"format", "status"},
		),
		startTime: time.Now(),
	}
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// ObserveColumn records one profiled column.
func (c *Collector) ObserveColumn(kind string, rows int, elapsed time.Duration) {
	c.columnsProfiled.WithLabelValues(kind).Inc()
	c.rowsScanned.Add(float64(rows))
	c.columnDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveProfile records one profiled dataset.
func (c *Collector) ObserveProfile(elapsed time.Duration) {
	c.profileDuration.Observe(elapsed.Seconds())
}

// ObserveLoad records a dataset load attempt.
func (c *Collector) ObserveLoad(format string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.datasetsLoaded.WithLabelValues(format, status).Inc()
}

// WriteTextfile writes the registry in the node-exporter textfile format.
// The file is written atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write metrics textfile").
			WithDetail("path", path)
	}
	return nil
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name parameter is for identification in logs or metrics.
//
// Example:
//
//	timer := metrics.NewTimer("load")
//	ds, err := source.Open(ctx, cfg.Source, logger)
//	logger.Info("dataset loaded", zap.Duration("duration", timer.Stop()))
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer's name.
func (t *Timer) Name() string { return t.name }

// Stop returns the elapsed duration since creation. The timer can be
// stopped multiple times.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
