// Package metrics provides Prometheus metrics for the fairway pick bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values shared by the counters below.
const (
	OutcomeOK     = "ok"
	OutcomeError  = "error"
	OutcomeDenied = "denied"
	OutcomeSkip   = "skipped"
)

// Manager owns every collector exported by the bot.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Commands
	commandsTotal   *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec

	// Scheduling
	triggerFires       *prometheus.CounterVec
	reminderDeliveries *prometheus.CounterVec

	// State
	picksCurrent    prometheus.Gauge
	eventsRemaining prometheus.Gauge
	storeWrites     *prometheus.CounterVec
	ledgerReads     *prometheus.CounterVec

	// Event loop
	loopQueueDepth prometheus.Gauge
	loopTasks      *prometheus.CounterVec
	loopTaskTime   prometheus.Histogram

	// HTTP
	httpRequests *prometheus.CounterVec
}

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry served on /metrics

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the Record* helpers

func init() { //nolint:gochecknoinits // global metrics setup
	customRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fairway",
		subsystem:        "bot",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.commandsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "commands_total",
		Help:        "Commands handled by command name and outcome",
		ConstLabels: m.constLabels,
	}, []string{"command", "outcome"})

	m.commandDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "command_duration_milliseconds",
		Help:        "Command handling latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"command"})

	m.triggerFires = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "trigger_fires_total",
		Help:        "Scheduled trigger executions by trigger and outcome",
		ConstLabels: m.constLabels,
	}, []string{"trigger", "outcome"})

	m.reminderDeliveries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "reminder_deliveries_total",
		Help:        "Reminder direct messages by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.picksCurrent = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "picks_current",
		Help:        "Submissions waiting for the next reveal",
		ConstLabels: m.constLabels,
	})

	m.eventsRemaining = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "events_remaining",
		Help:        "Entries left in the event queue",
		ConstLabels: m.constLabels,
	})

	m.storeWrites = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_writes_total",
		Help:        "Collection saves by collection and outcome",
		ConstLabels: m.constLabels,
	}, []string{"collection", "outcome"})

	m.ledgerReads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "ledger_reads_total",
		Help:        "Ledger cell reads by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.loopQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "loop_queue_depth",
		Help:        "Tasks waiting on the event loop",
		ConstLabels: m.constLabels,
	})

	m.loopTasks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "loop_tasks_total",
		Help:        "Event loop tasks by outcome (ok, error, rejected)",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.loopTaskTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "loop_task_duration_milliseconds",
		Help:        "Event loop task run time in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Liveness server requests by endpoint, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordCommand counts a handled command and observes its latency.
func (m *Manager) RecordCommand(command, outcome string, latencyMs float64) {
	m.commandsTotal.WithLabelValues(command, outcome).Inc()
	m.commandDuration.WithLabelValues(command).Observe(latencyMs)
}

// RecordTriggerFire counts a scheduled trigger execution.
func (m *Manager) RecordTriggerFire(trigger, outcome string) {
	m.triggerFires.WithLabelValues(trigger, outcome).Inc()
}

// RecordReminderDelivery counts one reminder direct message.
func (m *Manager) RecordReminderDelivery(outcome string) {
	m.reminderDeliveries.WithLabelValues(outcome).Inc()
}

// Package-level helpers backed by the global manager.

// RecordCommand counts a handled command and observes its latency.
func RecordCommand(command, outcome string, latencyMs float64) {
	globalManager.RecordCommand(command, outcome, latencyMs)
}

// RecordTriggerFire counts a scheduled trigger execution.
func RecordTriggerFire(trigger, outcome string) {
	globalManager.RecordTriggerFire(trigger, outcome)
}

// RecordReminderDelivery counts one reminder direct message.
func RecordReminderDelivery(outcome string) {
	globalManager.RecordReminderDelivery(outcome)
}

// UpdatePicksCurrent sets the number of pending submissions.
func UpdatePicksCurrent(n int) {
	globalManager.picksCurrent.Set(float64(n))
}

// UpdateEventsRemaining sets the number of queued events.
func UpdateEventsRemaining(n int) {
	globalManager.eventsRemaining.Set(float64(n))
}

// RecordStoreWrite counts a collection save.
func RecordStoreWrite(collection, outcome string) {
	globalManager.storeWrites.WithLabelValues(collection, outcome).Inc()
}

// RecordLedgerRead counts a ledger cell read.
func RecordLedgerRead(outcome string) {
	globalManager.ledgerReads.WithLabelValues(outcome).Inc()
}

// UpdateLoopQueueDepth sets the number of tasks waiting on the loop.
func UpdateLoopQueueDepth(n int) {
	globalManager.loopQueueDepth.Set(float64(n))
}

// RecordLoopTask counts a loop task and observes its run time.
func RecordLoopTask(outcome string, latencyMs float64) {
	globalManager.loopTasks.WithLabelValues(outcome).Inc()
	if latencyMs >= 0 {
		globalManager.loopTaskTime.Observe(latencyMs)
	}
}

// RecordHTTPRequest counts a liveness server request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// GetRegistry returns the registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
