package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Dispatch related metrics
	EventsReceived       *prometheus.CounterVec
	InstructionsBuilt    prometheus.Counter
	BuildFailures        *prometheus.CounterVec
	SendsTotal           *prometheus.CounterVec
	SendsSkipped         *prometheus.CounterVec
	SendsDropped         prometheus.Counter
	DeliveryLatency      *prometheus.HistogramVec
	DispatchQueueDepth   prometheus.Gauge
	DeviceRegistrations  prometheus.Counter
	DeviceDeactivations  prometheus.Counter
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		EventsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_received_total",
			Help:      "Total number of domain events received by the coordinator",
		}, []string{"event_type"}),
		InstructionsBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "instructions_built_total",
			Help:      "Total number of dispatch instructions built",
		}),
		BuildFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "build_failures_total",
			Help:      "Total number of instruction build failures",
		}, []string{"event_type"}),
		SendsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sends_total",
			Help:      "Total number of channel delivery attempts",
		}, []string{"channel", "status"}),
		SendsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sends_skipped_total",
			Help:      "Total number of sends skipped for lack of a delivery target",
		}, []string{"channel"}),
		SendsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sends_dropped_total",
			Help:      "Total number of sends dropped because the dispatch queue was full",
		}),
		DeliveryLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "delivery_duration_seconds",
			Help:      "Time spent delivering a single channel message",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"channel"}),
		DispatchQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dispatch_queue_depth",
			Help:      "Current number of sends waiting in the dispatch queue",
		}),
		DeviceRegistrations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "device_registrations_total",
			Help:      "Total number of device token registrations",
		}),
		DeviceDeactivations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "device_deactivations_total",
			Help:      "Total number of device tokens deactivated on delivery feedback",
		}),
	}
}

// NewForTest creates unregistered metrics for use in unit tests.
func NewForTest() *Metrics {
	m := &Metrics{
		EventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_received_total", Help: "test",
		}, []string{"event_type"}),
		InstructionsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "instructions_built_total", Help: "test",
		}),
		BuildFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "build_failures_total", Help: "test",
		}, []string{"event_type"}),
		SendsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sends_total", Help: "test",
		}, []string{"channel", "status"}),
		SendsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sends_skipped_total", Help: "test",
		}, []string{"channel"}),
		SendsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sends_dropped_total", Help: "test",
		}),
		DeliveryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "delivery_duration_seconds", Help: "test",
		}, []string{"channel"}),
		DispatchQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_queue_depth", Help: "test",
		}),
		DeviceRegistrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "device_registrations_total", Help: "test",
		}),
		DeviceDeactivations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "device_deactivations_total", Help: "test",
		}),
	}
	return m
}
