// Package metrics exposes Prometheus instrumentation for the frame loop.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives simulation measurements. The engine only depends on
// this interface so tests and headless runs can pass nil.
type Recorder interface {
	ObserveTick(elapsed time.Duration, simDelta float64)
	ScanCompleted(body string)
	AnomalyCollected(planet string)
	SetScore(score int)
	SetTimeSpeed(speed float64)
	ModeChanged(mode string)
}

// AssetRecorder receives asset fetch outcomes.
type AssetRecorder interface {
	AssetFetched(result string, elapsed time.Duration)
}

// Asset fetch result labels.
const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultCircuitOpen = "circuit_open"
)

// Collector bundles the Prometheus metrics for a session.
type Collector struct {
	gatherer prometheus.Gatherer

	Ticks              prometheus.Counter
	TickDuration       prometheus.Histogram
	SimulatedSeconds   prometheus.Counter
	ScansCompleted     *prometheus.CounterVec
	AnomaliesCollected *prometheus.CounterVec
	Score              prometheus.Gauge
	TimeSpeed          prometheus.Gauge
	ModeChanges        *prometheus.CounterVec
	AssetFetches       *prometheus.CounterVec
	AssetFetchDuration prometheus.Histogram
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_ticks_total",
			Help: "Total number of simulation ticks.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orrery_tick_duration_seconds",
			Help:    "Wall-clock time spent in one tick.",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		}),
		SimulatedSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_simulated_seconds_total",
			Help: "Sum of sanitized tick deltas.",
		}),
		ScansCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orrery_scans_completed_total",
			Help: "Planet scans completed, labeled by body.",
		}, []string{"body"}),
		AnomaliesCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orrery_anomalies_collected_total",
			Help: "Anomalies collected, labeled by the planet they orbit.",
		}, []string{"planet"}),
		Score: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_score",
			Help: "Current mission score.",
		}),
		TimeSpeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_time_speed",
			Help: "Current orbital time scale.",
		}),
		ModeChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orrery_mode_changes_total",
			Help: "Control mode switches, labeled by the mode entered.",
		}, []string{"mode"}),
		AssetFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orrery_asset_fetches_total",
			Help: "Asset fetch attempts, labeled by result.",
		}, []string{"result"}),
		AssetFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orrery_asset_fetch_duration_seconds",
			Help:    "Asset fetch latency in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
	}

	collectors := []struct {
		name string
		c    prometheus.Collector
	}{
		{"orrery_ticks_total", c.Ticks},
		{"orrery_tick_duration_seconds", c.TickDuration},
		{"orrery_simulated_seconds_total", c.SimulatedSeconds},
		{"orrery_scans_completed_total", c.ScansCompleted},
		{"orrery_anomalies_collected_total", c.AnomaliesCollected},
		{"orrery_score", c.Score},
		{"orrery_time_speed", c.TimeSpeed},
		{"orrery_mode_changes_total", c.ModeChanges},
		{"orrery_asset_fetches_total", c.AssetFetches},
		{"orrery_asset_fetch_duration_seconds", c.AssetFetchDuration},
	}
	for _, entry := range collectors {
		if err := reg.Register(entry.c); err != nil {
			return nil, fmt.Errorf("register %s: %w", entry.name, err)
		}
	}

	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveTick records one tick.
func (c *Collector) ObserveTick(elapsed time.Duration, simDelta float64) {
	if c == nil {
		return
	}
	c.Ticks.Inc()
	c.TickDuration.Observe(elapsed.Seconds())
	if simDelta > 0 {
		c.SimulatedSeconds.Add(simDelta)
	}
}

// ScanCompleted counts a finished planet scan.
func (c *Collector) ScanCompleted(body string) {
	if c == nil {
		return
	}
	c.ScansCompleted.WithLabelValues(body).Inc()
}

// AnomalyCollected counts a pickup.
func (c *Collector) AnomalyCollected(planet string) {
	if c == nil {
		return
	}
	c.AnomaliesCollected.WithLabelValues(planet).Inc()
}

// SetScore publishes the current score.
func (c *Collector) SetScore(score int) {
	if c == nil {
		return
	}
	c.Score.Set(float64(score))
}

// SetTimeSpeed publishes the orbital time scale.
func (c *Collector) SetTimeSpeed(speed float64) {
	if c == nil {
		return
	}
	c.TimeSpeed.Set(speed)
}

// ModeChanged counts a control mode switch.
func (c *Collector) ModeChanged(mode string) {
	if c == nil {
		return
	}
	c.ModeChanges.WithLabelValues(mode).Inc()
}

// AssetFetched records an asset fetch outcome.
func (c *Collector) AssetFetched(result string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.AssetFetches.WithLabelValues(result).Inc()
	if result != ResultCircuitOpen {
		c.AssetFetchDuration.Observe(elapsed.Seconds())
	}
}
