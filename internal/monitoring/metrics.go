package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics of the shell.
type Metrics struct {
	registry *prometheus.Registry

	// Navigation metrics
	NavigationDecisions *prometheus.CounterVec
	ExternalOpens       *prometheus.CounterVec

	// Connectivity metrics
	ConnectivityTransitions *prometheus.CounterVec
	Offline                 prometheus.Gauge
	Probes                  *prometheus.CounterVec

	// Window metrics
	WindowsCreated prometheus.Counter
	Activations    *prometheus.CounterVec
	StaleWindowOps *prometheus.CounterVec

	// Event loop metrics
	Events        *prometheus.CounterVec
	EventDuration *prometheus.HistogramVec

	// Instance API metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time
}

// NewMetrics creates a metrics collector on its own registry, so several
// collectors can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		NavigationDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshell_navigation_decisions_total",
				Help: "Navigation decisions by request origin and outcome",
			},
			[]string{"origin", "decision"},
		),
		ExternalOpens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshell_external_opens_total",
				Help: "Hand-offs to the OS default handler by result",
			},
			[]string{"result"},
		),

		ConnectivityTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshell_connectivity_transitions_total",
				Help: "Connectivity state transitions",
			},
			[]string{"from", "to"},
		),
		Offline: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webshell_offline",
				Help: "1 while the offline view is shown",
			},
		),
		Probes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshell_probes_total",
				Help: "Reachability probes by result",
			},
			[]string{"result"},
		),

		WindowsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "webshell_windows_created_total",
				Help: "Primary windows created",
			},
		),
		Activations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshell_activations_total",
				Help: "Window activations by source",
			},
			[]string{"source"},
		),
		StaleWindowOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshell_stale_window_ops_total",
				Help: "Operations skipped because the window was absent or destroyed",
			},
			[]string{"op"},
		),

		Events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshell_events_total",
				Help: "Session events processed",
			},
			[]string{"event"},
		),
		EventDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webshell_event_duration_seconds",
				Help:    "Session event handling duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"event"},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshell_instance_requests_total",
				Help: "Requests served by the instance API",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webshell_instance_request_duration_seconds",
				Help:    "Instance API request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "webshell_uptime_seconds",
			Help: "Shell uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordDecision records a navigation decision
func (m *Metrics) RecordDecision(origin, decision string) {
	m.NavigationDecisions.WithLabelValues(origin, decision).Inc()
}

// RecordExternalOpen records an OS hand-off attempt
func (m *Metrics) RecordExternalOpen(result string) {
	m.ExternalOpens.WithLabelValues(result).Inc()
}

// RecordTransition records a connectivity transition
func (m *Metrics) RecordTransition(from, to string) {
	m.ConnectivityTransitions.WithLabelValues(from, to).Inc()
	if to == "offline" {
		m.Offline.Set(1)
	} else {
		m.Offline.Set(0)
	}
}

// RecordProbe records a reachability probe
func (m *Metrics) RecordProbe(result string) {
	m.Probes.WithLabelValues(result).Inc()
}

// IncWindowsCreated increments the windows created counter
func (m *Metrics) IncWindowsCreated() {
	m.WindowsCreated.Inc()
}

// RecordActivation records a window activation
func (m *Metrics) RecordActivation(source string) {
	m.Activations.WithLabelValues(source).Inc()
}

// RecordStaleWindowOp records an operation skipped on a missing window
func (m *Metrics) RecordStaleWindowOp(op string) {
	m.StaleWindowOps.WithLabelValues(op).Inc()
}

// RecordEvent records a processed session event
func (m *Metrics) RecordEvent(event string, duration time.Duration) {
	m.Events.WithLabelValues(event).Inc()
	m.EventDuration.WithLabelValues(event).Observe(duration.Seconds())
}

// RecordRequest records an instance API request
func (m *Metrics) RecordRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
