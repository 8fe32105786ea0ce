package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes
const (
	OutcomeSaved    = "saved"
	OutcomeDryRun   = "dry_run"
	OutcomeRejected = "rejected"
)

// Manager holds the metrics of one CLI invocation.
// The CLI runs once and exits, so metrics are written to a node exporter textfile rather than scraped.
type Manager struct {
	namespace       string
	subsystem       string
	durationBuckets []float64
	constLabels     map[string]string
	registry        *prometheus.Registry

	// Allocation
	runs             *prometheus.CounterVec
	runDuration      prometheus.Histogram
	slotsFilled      *prometheus.CounterVec
	slotsUnfilled    *prometheus.CounterVec
	staffCount       prometheus.Gauge
	scoreSpread      prometheus.Gauge
	validationErrors prometheus.Gauge
	lastRunUnix      prometheus.Gauge

	// Work stretch validation
	stretchViolations prometheus.Gauge
	stretchStaff      prometheus.Gauge

	// Commands
	commands *prometheus.CounterVec
}

// NewManager creates a new metrics manager with its own registry by default.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "ward",
		subsystem:       "overtime",
		durationBuckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		constLabels:     map[string]string{},
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Allocation runs by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Time spent in the allocation algorithm",
		Buckets:     m.durationBuckets,
		ConstLabels: m.constLabels,
	})

	m.slotsFilled = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "slots_filled_total",
		Help:        "Overtime slots filled by shift type",
		ConstLabels: m.constLabels,
	}, []string{"shift_type"})

	m.slotsUnfilled = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "slots_unfilled_total",
		Help:        "Overtime slots left unfilled (understaffed) by shift type",
		ConstLabels: m.constLabels,
	}, []string{"shift_type"})

	m.staffCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "staff",
		Help:        "Staff considered in the last run",
		ConstLabels: m.constLabels,
	})

	m.scoreSpread = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fairness_score_spread",
		Help:        "Difference between the highest and lowest final fairness score of the last run",
		ConstLabels: m.constLabels,
	})

	m.validationErrors = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "validation_errors",
		Help:        "Constraint violations found in the last run",
		ConstLabels: m.constLabels,
	})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time the last allocation run finished",
		ConstLabels: m.constLabels,
	})

	m.stretchViolations = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stretch_violation_days",
		Help:        "Days flagged as part of an over-long work stretch in the last validation",
		ConstLabels: m.constLabels,
	})

	m.stretchStaff = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stretch_violation_staff",
		Help:        "Staff with at least one over-long work stretch in the last validation",
		ConstLabels: m.constLabels,
	})

	m.commands = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "commands_total",
		Help:        "CLI commands by name and status",
		ConstLabels: m.constLabels,
	}, []string{"command", "status"})
}

// Registry returns the registry the metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// RunStats summarises one allocation run.
type RunStats struct {
	Outcome          string
	Duration         time.Duration
	FinishedAt       time.Time
	Staff            int
	Filled           map[string]int
	Unfilled         map[string]int
	ScoreSpread      float64
	ValidationErrors int
}

// RecordRun records an allocation run.
func (m *Manager) RecordRun(stats RunStats) {
	m.runs.WithLabelValues(stats.Outcome).Inc()
	m.runDuration.Observe(stats.Duration.Seconds())

	for shiftType, count := range stats.Filled {
		m.slotsFilled.WithLabelValues(shiftType).Add(float64(count))
	}
	for shiftType, count := range stats.Unfilled {
		m.slotsUnfilled.WithLabelValues(shiftType).Add(float64(count))
	}

	m.staffCount.Set(float64(stats.Staff))
	m.scoreSpread.Set(stats.ScoreSpread)
	m.validationErrors.Set(float64(stats.ValidationErrors))
	m.lastRunUnix.Set(float64(stats.FinishedAt.Unix()))
}

// RecordStretchValidation records the result of a work stretch validation.
func (m *Manager) RecordStretchValidation(violationDays, staffFlagged int) {
	m.stretchViolations.Set(float64(violationDays))
	m.stretchStaff.Set(float64(staffFlagged))
}

// RecordCommand counts a finished CLI command.
func (m *Manager) RecordCommand(command string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.commands.WithLabelValues(command, status).Inc()
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is written atomically so a node exporter never reads a partial file.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
