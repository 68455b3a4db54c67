package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ElCzar/secchub-planning/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	messageStates  *prometheus.CounterVec
	resolutions    *prometheus.CounterVec
	created        *prometheus.CounterVec
	assignments    *prometheus.CounterVec
	deduplicated   *prometheus.CounterVec
	retryScheduled prometheus.Counter

	pollTicks      *prometheus.CounterVec
	pollDuration   prometheus.Histogram
	statusChanges  prometheus.Counter

	published prometheus.Counter
	cleared   prometheus.Counter
	buffered  prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a Prometheus-backed collector and registers its
// metrics with reg.
//
// Parameters:
//   - reg: Registerer to register metrics with (prometheus.DefaultRegisterer
//     for the common case)
//   - namespace: Metric namespace prefix (e.g., "secchub")
//
// Returns:
//   - *PrometheusCollector: Registered collector
//   - error: Registration error (e.g., duplicate registration)
func NewPrometheus(reg prometheus.Registerer, namespace string) (*PrometheusCollector, error) {
	c := &PrometheusCollector{
		messageStates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_message_states_total",
			Help:      "Selection message state transitions by state.",
		}, []string{"state"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Row resolution attempts by strategy and outcome.",
		}, []string{"strategy", "resolved"}),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sections_created_total",
			Help:      "On-demand section creations by outcome.",
		}, []string{"success"}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_total",
			Help:      "Teacher assignment calls by outcome.",
		}, []string{"success"}),
		deduplicated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_deduplicated_total",
			Help:      "Assignments skipped by the deduplication guard, by reason.",
		}, []string{"reason"}),
		retryScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_retries_total",
			Help:      "Resolution retries scheduled.",
		}),
		pollTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_ticks_total",
			Help:      "Status poll ticks by outcome.",
		}, []string{"success"}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_tick_duration_seconds",
			Help:      "Status poll tick duration.",
			Buckets:   prometheus.DefBuckets,
		}),
		statusChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Teacher confirmation statuses updated by poll merges.",
		}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_published_total",
			Help:      "Selection messages published to the channel.",
		}),
		cleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_cleared_total",
			Help:      "Selection messages cleared from the channel.",
		}),
		buffered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "selections_buffered",
			Help:      "Selection messages buffered while the grid is loading.",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.messageStates, c.resolutions, c.created, c.assignments,
		c.deduplicated, c.retryScheduled, c.pollTicks, c.pollDuration,
		c.statusChanges, c.published, c.cleared, c.buffered,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// RecordMessageState increments the state transition counter.
func (c *PrometheusCollector) RecordMessageState(state types.MessageState) {
	c.messageStates.WithLabelValues(state.String()).Inc()
}

// RecordResolution increments the resolution counter.
func (c *PrometheusCollector) RecordResolution(strategy string, resolved bool) {
	if strategy == "" {
		strategy = "none"
	}
	c.resolutions.WithLabelValues(strategy, strconv.FormatBool(resolved)).Inc()
}

// RecordSectionCreated increments the creation counter.
func (c *PrometheusCollector) RecordSectionCreated(success bool) {
	c.created.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// RecordAssignment increments the assignment counter.
func (c *PrometheusCollector) RecordAssignment(success bool) {
	c.assignments.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// RecordDeduplicated increments the dedup counter.
func (c *PrometheusCollector) RecordDeduplicated(reason string) {
	c.deduplicated.WithLabelValues(reason).Inc()
}

// RecordRetryScheduled increments the retry counter.
func (c *PrometheusCollector) RecordRetryScheduled(_ int) {
	c.retryScheduled.Inc()
}

// RecordPollTick records one poll cycle.
func (c *PrometheusCollector) RecordPollTick(success bool, duration float64) {
	c.pollTicks.WithLabelValues(strconv.FormatBool(success)).Inc()
	c.pollDuration.Observe(duration)
}

// RecordStatusChanged adds to the status change counter.
func (c *PrometheusCollector) RecordStatusChanged(count int) {
	c.statusChanges.Add(float64(count))
}

// RecordPublished increments the publish counter.
func (c *PrometheusCollector) RecordPublished() { c.published.Inc() }

// RecordCleared increments the clear counter.
func (c *PrometheusCollector) RecordCleared() { c.cleared.Inc() }

// RecordBuffered sets the buffered gauge.
func (c *PrometheusCollector) RecordBuffered(count int) {
	c.buffered.Set(float64(count))
}
