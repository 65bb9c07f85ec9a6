package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Engine metrics
	EventsEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshpulse_events_emitted_total",
			Help: "Total number of events emitted by event type",
		},
		[]string{"event_type"},
	)

	HandlerFaultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshpulse_handler_faults_total",
			Help: "Total number of subscriber handler panics caught during fan-out",
		},
		[]string{"event_type"},
	)

	GeneratorFaultsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meshpulse_generator_faults_total",
			Help: "Total number of generator panics caught at tick boundaries",
		},
	)

	Subscribers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meshpulse_subscribers",
			Help: "Current number of subscribers by event type",
		},
		[]string{"event_type"},
	)

	ActiveTimers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "meshpulse_active_timers",
			Help: "Current number of armed emission timers",
		},
	)

	FanoutDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meshpulse_fanout_duration_seconds",
			Help:    "Time spent delivering one event to all subscribers",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"event_type"},
	)

	// Cache metrics
	CacheKeys = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "meshpulse_cache_keys",
			Help: "Number of keys held in the metrics cache",
		},
	)

	CacheItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "meshpulse_cache_items",
			Help: "Total number of data points held in the metrics cache",
		},
	)
)

func init() {
	prometheus.MustRegister(EventsEmittedTotal)
	prometheus.MustRegister(HandlerFaultsTotal)
	prometheus.MustRegister(GeneratorFaultsTotal)
	prometheus.MustRegister(Subscribers)
	prometheus.MustRegister(ActiveTimers)
	prometheus.MustRegister(FanoutDuration)
	prometheus.MustRegister(CacheKeys)
	prometheus.MustRegister(CacheItems)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures a duration for histogram observation
type Timer struct {
	start time.Time
}

// NewTimer starts a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time in the given histogram
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}
