// Package metrics exposes Prometheus counters and histograms describing the
// debugger's own activity (probe callbacks, breakpoint hits, operator pause
// time) on a local-only /metrics endpoint. It observes the tool, not the
// target program, and never reaches across the process boundary the way a
// remote-attach feature would.
package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for one debug session.
type Metrics struct {
	probesTotal      *prometheus.CounterVec
	breakpointHits   *prometheus.CounterVec
	stepsTotal       prometheus.Counter
	continuesTotal   prometheus.Counter
	pauseSeconds     prometheus.Histogram
	modulesLoaded    prometheus.Counter
	extensionsLoaded *prometheus.CounterVec
	extensionsFailed prometheus.Counter

	goroutines prometheus.Gauge
	memAlloc   prometheus.Gauge

	registry *prometheus.Registry
}

// Config configures the metric namespace and the pause-time histogram buckets.
type Config struct {
	Namespace string
	// PauseBuckets are histogram buckets (seconds) for operator think-time
	// between a probe pausing the VM and the UI returning an action.
	PauseBuckets []float64
}

// DefaultConfig returns sensible defaults for an interactive debug session:
// pauses of a debugging session range from sub-second (Step mashing) to
// several minutes (operator reading code), so the buckets are wide.
func DefaultConfig() Config {
	return Config{
		Namespace:    "gubed",
		PauseBuckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
	}
}

// New creates and registers all collectors against a fresh registry.
func New(config Config) *Metrics {
	if config.Namespace == "" {
		config = DefaultConfig()
	}
	if len(config.PauseBuckets) == 0 {
		config.PauseBuckets = DefaultConfig().PauseBuckets
	}

	registry := prometheus.NewRegistry()
	m := &Metrics{registry: registry}

	m.probesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "probe_total",
		Help:      "Total number of debug probe callbacks received from the VM, by module.",
	}, []string{"module"})

	m.breakpointHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "breakpoint_hits_total",
		Help:      "Total number of probes that paused execution because of a breakpoint, by module.",
	}, []string{"module"})

	m.stepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "steps_total",
		Help:      "Total number of Step actions returned by the UI.",
	})

	m.continuesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "continues_total",
		Help:      "Total number of Continue actions returned by the UI.",
	})

	m.pauseSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: config.Namespace,
		Name:      "pause_seconds",
		Help:      "Wall-clock time the VM sat paused waiting for an operator decision.",
		Buckets:   config.PauseBuckets,
	})

	m.modulesLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "modules_loaded_total",
		Help:      "Total number of modules loaded through the module cache.",
	})

	m.extensionsLoaded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "native_extensions_loaded_total",
		Help:      "Total number of native extension libraries successfully loaded, by path.",
	}, []string{"path"})

	m.extensionsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "native_extensions_failed_total",
		Help:      "Total number of native extension libraries that failed to load.",
	})

	m.goroutines = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: config.Namespace,
		Subsystem: "runtime",
		Name:      "goroutines",
		Help:      "Number of goroutines currently running in the debugger process.",
	})

	m.memAlloc = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: config.Namespace,
		Subsystem: "runtime",
		Name:      "memory_alloc_bytes",
		Help:      "Bytes allocated and still in use by the debugger process.",
	})

	registry.MustRegister(
		m.probesTotal,
		m.breakpointHits,
		m.stepsTotal,
		m.continuesTotal,
		m.pauseSeconds,
		m.modulesLoaded,
		m.extensionsLoaded,
		m.extensionsFailed,
		m.goroutines,
		m.memAlloc,
	)

	return m
}

// RecordProbe records a single debug callback invocation for module.
func (m *Metrics) RecordProbe(module string) {
	m.probesTotal.WithLabelValues(module).Inc()
}

// RecordBreakpointHit records a probe that paused because of a breakpoint.
func (m *Metrics) RecordBreakpointHit(module string) {
	m.breakpointHits.WithLabelValues(module).Inc()
}

// RecordPause records the wall-clock duration the VM was paused for one probe.
func (m *Metrics) RecordPause(d time.Duration) {
	m.pauseSeconds.Observe(d.Seconds())
}

// RecordStep increments the Step-action counter.
func (m *Metrics) RecordStep() { m.stepsTotal.Inc() }

// RecordContinue increments the Continue-action counter.
func (m *Metrics) RecordContinue() { m.continuesTotal.Inc() }

// RecordModuleLoaded increments the module-load counter.
func (m *Metrics) RecordModuleLoaded() { m.modulesLoaded.Inc() }

// RecordExtensionLoaded records a successfully loaded native extension path.
func (m *Metrics) RecordExtensionLoaded(path string) {
	m.extensionsLoaded.WithLabelValues(path).Inc()
}

// RecordExtensionFailed increments the failed-extension-load counter.
func (m *Metrics) RecordExtensionFailed() { m.extensionsFailed.Inc() }

// UpdateRuntimeMetrics refreshes the goroutine/memory gauges from runtime.MemStats.
func (m *Metrics) UpdateRuntimeMetrics() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	m.goroutines.Set(float64(runtime.NumGoroutine()))
	m.memAlloc.Set(float64(stats.Alloc))
}

// Handler returns the HTTP handler to mount at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
