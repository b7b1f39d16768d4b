// Package metrics provides Prometheus metrics for the matchpoint engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Business metrics
	playersRegistered prometheus.Counter
	matchesCreated    prometheus.Counter
	rematchWarnings   prometheus.Counter
	matchesStarted    prometheus.Counter
	matchesCompleted  prometheus.Counter
	draws             prometheus.Counter
	courtsInUse       *prometheus.GaugeVec

	// Store metrics
	storeOpLatency *prometheus.HistogramVec
	storeOpErrors  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchpoint",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initialize()
	return m
}

func (m *Manager) initialize() {
	auto := promauto.With(m.registry)

	m.playersRegistered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_registered_total",
		Help:      "Total number of players registered across tournaments",
	})

	m.matchesCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_created_total",
		Help:      "Total number of doubles matches created",
	})

	m.rematchWarnings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rematch_warnings_total",
		Help:      "Total number of matches created with an identical prior player set",
	})

	m.matchesStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_started_total",
		Help:      "Total number of matches admitted onto a court",
	})

	m.matchesCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_completed_total",
		Help:      "Total number of matches with a final score recorded",
	})

	m.draws = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "draws_total",
		Help:      "Total number of drawn matches",
	})

	m.courtsInUse = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "courts_in_use",
		Help:      "Number of currently active matches (courts in use) per tournament",
	}, []string{"tournament"})

	m.storeOpLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_op_latency_milliseconds",
			Help:      "Item store operation latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"op"},
	)

	m.storeOpErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_op_errors_total",
			Help:      "Total number of item store operation failures",
		},
		[]string{"op"},
	)
}

// Package-level helpers recording into the global manager.

// RecordPlayerRegistered increments the registered-players counter.
func RecordPlayerRegistered() {
	globalManager.playersRegistered.Inc()
}

// RecordMatchCreated increments the created-matches counter.
func RecordMatchCreated() {
	globalManager.matchesCreated.Inc()
}

// RecordRematchWarning increments the rematch-warnings counter.
func RecordRematchWarning() {
	globalManager.rematchWarnings.Inc()
}

// RecordMatchStarted increments the started-matches counter.
func RecordMatchStarted() {
	globalManager.matchesStarted.Inc()
}

// RecordMatchCompleted increments the completed-matches counter.
func RecordMatchCompleted() {
	globalManager.matchesCompleted.Inc()
}

// RecordDraw increments the draws counter.
func RecordDraw() {
	globalManager.draws.Inc()
}

// UpdateCourtsInUse sets the courts-in-use gauge for one tournament.
func UpdateCourtsInUse(tournament string, n int) {
	globalManager.courtsInUse.WithLabelValues(tournament).Set(float64(n))
}

// RecordStoreOpLatency observes latency for a store operation.
func RecordStoreOpLatency(op string, latencyMs float64) {
	globalManager.storeOpLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreOpError increments the error counter for a store operation.
func RecordStoreOpError(op string) {
	globalManager.storeOpErrors.WithLabelValues(op).Inc()
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
