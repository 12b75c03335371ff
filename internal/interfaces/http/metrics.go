package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_model/go"
	"github.com/rs/zerolog/log"

	"github.com/nseweekly/engine/internal/domain/regime"
)

// MetricsRegistry holds all Prometheus metrics for the weekly engine.
type MetricsRegistry struct {
	// Stage duration metrics
	StageDuration *prometheus.HistogramVec

	// Cache performance metrics
	CacheHitRatio prometheus.Gauge
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec

	// Provider fetch latency metrics
	ProviderLatency *prometheus.HistogramVec

	// Pipeline run metrics
	PipelineStages *prometheus.CounterVec
	PipelineErrors *prometheus.CounterVec

	// Run metrics
	ActiveRuns prometheus.Gauge
	TotalRuns  prometheus.Counter

	// Regime metrics
	RegimeSwitches *prometheus.CounterVec
	RegimeDuration *prometheus.HistogramVec
	ActiveRegime   prometheus.Gauge
	RegimeHealth   *prometheus.GaugeVec
}

// NewMetricsRegistry creates a new metrics registry with all weekly
// engine metrics and registers them with the default Prometheus registry.
func NewMetricsRegistry() *MetricsRegistry {
	registry := &MetricsRegistry{
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nseweekly_stage_duration_seconds",
				Help:    "Duration of each pipeline stage in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0},
			},
			[]string{"stage", "result"},
		),

		CacheHitRatio: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "nseweekly_cache_hit_ratio",
				Help: "Current cache hit ratio (0.0 to 1.0)",
			},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nseweekly_cache_hits_total",
				Help: "Total number of cache hits by cache type",
			},
			[]string{"cache_type"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nseweekly_cache_misses_total",
				Help: "Total number of cache misses by cache type",
			},
			[]string{"cache_type"},
		),

		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nseweekly_provider_latency_ms",
				Help:    "Market-data provider request latency in milliseconds",
				Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
			},
			[]string{"provider", "endpoint"},
		),

		PipelineStages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nseweekly_pipeline_stages_total",
				Help: "Total number of pipeline stages executed",
			},
			[]string{"stage", "status"},
		),

		PipelineErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nseweekly_pipeline_errors_total",
				Help: "Total number of pipeline errors by stage",
			},
			[]string{"stage", "error_type"},
		),

		ActiveRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "nseweekly_active_runs",
				Help: "Number of currently active weekly runs",
			},
		),

		TotalRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "nseweekly_runs_total",
				Help: "Total number of weekly runs initiated",
			},
		),

		RegimeSwitches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nseweekly_regime_switches_total",
				Help: "Total number of regime switches by from/to regime",
			},
			[]string{"from_regime", "to_regime"},
		),

		RegimeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nseweekly_regime_duration_weeks",
				Help:    "Duration of regime periods in weeks",
				Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16, 26, 52},
			},
			[]string{"regime"},
		),

		ActiveRegime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "nseweekly_active_regime",
				Help: "Current active regime (0=risk_off, 1=choppy, 2=risk_on)",
			},
		),

		RegimeHealth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "nseweekly_regime_health",
				Help: "Regime detection subscore values",
			},
			[]string{"regime", "indicator"},
		),
	}

	// Register all metrics with Prometheus
	prometheus.MustRegister(
		registry.StageDuration,
		registry.CacheHitRatio,
		registry.CacheHits,
		registry.CacheMisses,
		registry.ProviderLatency,
		registry.PipelineStages,
		registry.PipelineErrors,
		registry.ActiveRuns,
		registry.TotalRuns,
		registry.RegimeSwitches,
		registry.RegimeDuration,
		registry.ActiveRegime,
		registry.RegimeHealth,
	)

	return registry
}

// StepTimer tracks execution time for one pipeline stage.
type StepTimer struct {
	metrics *MetricsRegistry
	stage   string
	start   time.Time
}

// StartStepTimer begins timing a pipeline stage.
func (m *MetricsRegistry) StartStepTimer(stage string) *StepTimer {
	return &StepTimer{
		metrics: m,
		stage:   stage,
		start:   time.Now(),
	}
}

// Stop completes the stage timing and records the metric.
func (st *StepTimer) Stop(result string) {
	duration := time.Since(st.start)
	st.metrics.StageDuration.WithLabelValues(st.stage, result).Observe(duration.Seconds())
	st.metrics.PipelineStages.WithLabelValues(st.stage, result).Inc()

	log.Debug().
		Str("stage", st.stage).
		Str("result", result).
		Dur("duration", duration).
		Msg("pipeline stage completed")
}

// RecordCacheHit records a cache hit for the specified cache type
func (m *MetricsRegistry) RecordCacheHit(cacheType string) {
	m.CacheHits.WithLabelValues(cacheType).Inc()
	m.updateCacheHitRatio()
}

// RecordCacheMiss records a cache miss for the specified cache type
func (m *MetricsRegistry) RecordCacheMiss(cacheType string) {
	m.CacheMisses.WithLabelValues(cacheType).Inc()
	m.updateCacheHitRatio()
}

// RecordProviderLatency records a market-data provider request's latency.
func (m *MetricsRegistry) RecordProviderLatency(provider, endpoint string, latencyMs float64) {
	m.ProviderLatency.WithLabelValues(provider, endpoint).Observe(latencyMs)
}

// RecordPipelineError records a pipeline error
func (m *MetricsRegistry) RecordPipelineError(stage, errorType string) {
	m.PipelineErrors.WithLabelValues(stage, errorType).Inc()
	log.Warn().
		Str("stage", stage).
		Str("error_type", errorType).
		Msg("pipeline error recorded")
}

// IncrementActiveRuns increments the active weekly-run counter
func (m *MetricsRegistry) IncrementActiveRuns() {
	m.ActiveRuns.Inc()
	m.TotalRuns.Inc()
}

// DecrementActiveRuns decrements the active weekly-run counter
func (m *MetricsRegistry) DecrementActiveRuns() {
	m.ActiveRuns.Dec()
}

// updateCacheHitRatio calculates and updates the cache hit ratio
func (m *MetricsRegistry) updateCacheHitRatio() {
	// Get current metrics values
	hitMetrics := &io_prometheus_client.Metric{}
	missMetrics := &io_prometheus_client.Metric{}

	// Sum all cache hits and misses across cache types
	totalHits := 0.0
	totalMisses := 0.0

	// In production, we would iterate through all cache type labels
	// For now, use a simplified calculation
	cacheTypes := []string{"market_data", "momentum", "regime", "universe"}

	for _, cacheType := range cacheTypes {
		if hitCounter, err := m.CacheHits.GetMetricWithLabelValues(cacheType); err == nil {
			if err := hitCounter.Write(hitMetrics); err == nil {
				totalHits += hitMetrics.GetCounter().GetValue()
			}
		}

		if missCounter, err := m.CacheMisses.GetMetricWithLabelValues(cacheType); err == nil {
			if err := missCounter.Write(missMetrics); err == nil {
				totalMisses += missMetrics.GetCounter().GetValue()
			}
		}
	}

	// Calculate hit ratio
	total := totalHits + totalMisses
	if total > 0 {
		ratio := totalHits / total
		m.CacheHitRatio.Set(ratio)
	}
}

// MetricsHandler returns an HTTP handler for Prometheus metrics
func (m *MetricsRegistry) MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RegimeStatusHandler returns the most recent regime detection as JSON.
// latest is supplied by the caller (the orchestration layer's last
// completed run) since the registry itself only tracks gauge values.
func (m *MetricsRegistry) RegimeStatusHandler(latest func() *regime.Detection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		d := latest()
		if d == nil {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"no regime detection on record"}`)
			return
		}

		subscores := make(map[string]float64, len(d.Subscores))
		for _, s := range d.Subscores {
			subscores[s.Name] = s.Value
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"week":       d.Week,
			"regime":     d.State,
			"confidence": d.Confidence,
			"composite":  d.Composite,
			"multiplier": d.Multiplier,
			"subscores":  subscores,
		})
	}
}

// PipelineStep names one of the weekly pipeline's stages.
type PipelineStep string

const (
	StepUniverse       PipelineStep = "universe"
	StepRegime         PipelineStep = "regime"
	StepMomentum       PipelineStep = "momentum"
	StepConsistency    PipelineStep = "consistency"
	StepLiquidity      PipelineStep = "liquidity"
	StepSetup          PipelineStep = "setup"
	StepGuards         PipelineStep = "guards"
	StepRisk           PipelineStep = "risk"
	StepPortfolio      PipelineStep = "portfolio"
	StepExecution      PipelineStep = "execution"
	StepRecommendation PipelineStep = "recommendation"
)

// PipelineResult represents the result of a pipeline step
type PipelineResult string

const (
	ResultSuccess PipelineResult = "success"
	ResultError   PipelineResult = "error"
	ResultSkipped PipelineResult = "skipped"
	ResultTimeout PipelineResult = "timeout"
)

// Global metrics registry instance
var DefaultMetrics *MetricsRegistry

// InitializeMetrics initializes the global metrics registry
func InitializeMetrics() {
	DefaultMetrics = NewMetricsRegistry()
	log.Info().Msg("Prometheus metrics registry initialized")
}

// RecordRegimeSwitch records a regime transition
func (m *MetricsRegistry) RecordRegimeSwitch(fromRegime, toRegime string) {
	m.RegimeSwitches.WithLabelValues(fromRegime, toRegime).Inc()

	// Update active regime gauge
	regimeValue := regimeToGaugeValue(toRegime)
	m.ActiveRegime.Set(regimeValue)

	log.Info().
		Str("from_regime", fromRegime).
		Str("to_regime", toRegime).
		Float64("gauge_value", regimeValue).
		Msg("Regime switch recorded")
}

// RecordRegimeDuration records how long a regime lasted, in weeks
func (m *MetricsRegistry) RecordRegimeDuration(regime string, durationWeeks float64) {
	m.RegimeDuration.WithLabelValues(regime).Observe(durationWeeks)

	log.Debug().
		Str("regime", regime).
		Float64("duration_weeks", durationWeeks).
		Msg("Regime duration recorded")
}

// UpdateRegimeHealth records regime detection health indicators
func (m *MetricsRegistry) UpdateRegimeHealth(regime string, indicators map[string]float64) {
	for indicator, value := range indicators {
		m.RegimeHealth.WithLabelValues(regime, indicator).Set(value)
	}

	log.Debug().
		Str("regime", regime).
		Interface("indicators", indicators).
		Msg("Regime health indicators updated")
}

// SetActiveRegime updates the current active regime
func (m *MetricsRegistry) SetActiveRegime(regime string) {
	regimeValue := regimeToGaugeValue(regime)
	m.ActiveRegime.Set(regimeValue)
}

// regimeToGaugeValue converts a regime state to the gauge's numeric scale.
func regimeToGaugeValue(state string) float64 {
	switch strings.ToUpper(state) {
	case "RISK_OFF":
		return 0.0
	case "CHOPPY":
		return 1.0
	case "RISK_ON":
		return 2.0
	default:
		return -1.0
	}
}
