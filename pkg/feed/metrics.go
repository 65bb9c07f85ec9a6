package feed

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/meshpulse/meshpulse/pkg/cache"
	"github.com/meshpulse/meshpulse/pkg/log"
	"github.com/meshpulse/meshpulse/pkg/metrics"
	"github.com/meshpulse/meshpulse/pkg/stream"
	"github.com/meshpulse/meshpulse/pkg/types"
)

// Display ranges for derived per-connection metrics
const (
	MinRPS       = 300
	MaxRPS       = 1000
	MinLatency   = 50
	MaxLatency   = 250
	MinErrorRate = 0.0
	MaxErrorRate = 5.0
)

// ConnectionSnapshot is the synchronous view exposed to presentation code
type ConnectionSnapshot struct {
	Metrics types.MetricsReading
	Series  []types.DataPoint
	Loading bool
}

// ConnectionMetrics bridges raw metrics events into per-connection,
// display-ready values plus cached history. It subscribes to the
// engine's metrics stream only while a connection is selected and
// guarantees no dangling handler after deactivation.
type ConnectionMetrics struct {
	mu     sync.Mutex
	engine *stream.Engine
	cache  *cache.Cache[types.DataPoint]
	now    func() time.Time
	logger zerolog.Logger

	connectionID string
	enabled      bool
	loading      bool
	unsubscribe  func()
	current      types.MetricsReading
	series       []types.DataPoint
}

// NewConnectionMetrics creates an idle feed backed by the given engine
// and data-point cache
func NewConnectionMetrics(engine *stream.Engine, c *cache.Cache[types.DataPoint]) *ConnectionMetrics {
	return &ConnectionMetrics{
		engine: engine,
		cache:  c,
		now:    time.Now,
		logger: log.WithComponent("connection-metrics"),
	}
}

// Activate selects the connection the feed tracks. With enabled false or
// an empty id the feed resets to zero values, drops its local series
// view (the cache entry is retained) and unsubscribes. Otherwise any
// cached history for the connection is loaded for immediate display and
// the feed subscribes to metrics events.
func (f *ConnectionMetrics) Activate(connectionID string, enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !enabled || connectionID == "" {
		f.deactivateLocked()
		return
	}

	if f.enabled && f.connectionID == connectionID {
		return
	}

	// Switching connections: drop the old subscription before binding a
	// handler to the new id.
	if f.unsubscribe != nil {
		f.unsubscribe()
		f.unsubscribe = nil
	}

	f.connectionID = connectionID
	f.enabled = true
	f.loading = true
	f.current = types.MetricsReading{}
	f.series = f.cache.Get(connectionID)

	id := connectionID
	unsubscribe, err := f.engine.Subscribe(stream.EventMetrics, func(event stream.Event) {
		f.handleMetrics(id, event)
	})
	if err != nil {
		f.logger.Error().Err(err).Str("connection_id", connectionID).Msg("subscribe failed")
		f.deactivateLocked()
		return
	}
	f.unsubscribe = unsubscribe
}

// Close deactivates the feed and guarantees its subscription is released
func (f *ConnectionMetrics) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivateLocked()
}

// Snapshot returns the current derived value, the cached series view and
// the loading flag
func (f *ConnectionMetrics) Snapshot() ConnectionSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	series := make([]types.DataPoint, len(f.series))
	copy(series, f.series)
	return ConnectionSnapshot{
		Metrics: f.current,
		Series:  series,
		Loading: f.loading,
	}
}

func (f *ConnectionMetrics) deactivateLocked() {
	if f.unsubscribe != nil {
		f.unsubscribe()
		f.unsubscribe = nil
	}
	f.connectionID = ""
	f.enabled = false
	f.loading = false
	f.current = types.MetricsReading{}
	f.series = nil
}

func (f *ConnectionMetrics) handleMetrics(connectionID string, event stream.Event) {
	if event.Metrics == nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// An event delivered after a switch or deactivation is stale
	if !f.enabled || f.connectionID != connectionID {
		return
	}

	derived := DeriveConnectionMetrics(connectionID, *event.Metrics)
	stamped := f.now()
	point := types.DataPoint{
		Timestamp: stamped,
		Time:      stamped.Format("15:04:05"),
		RPS:       derived.RPS,
		Latency:   derived.Latency,
		ErrorRate: derived.ErrorRate,
	}
	f.cache.Add(connectionID, point)

	stats := f.cache.GetStats()
	metrics.CacheKeys.Set(float64(stats.TotalKeys))
	metrics.CacheItems.Set(float64(stats.TotalItems))

	f.current = derived
	f.series = f.cache.Get(connectionID)
	f.loading = false
}

// DeriveConnectionMetrics varies a raw reading by a seed taken from the
// first byte of the connection id (ids sharing a first character share a
// seed) and clamps the result into the fixed display ranges.
func DeriveConnectionMetrics(connectionID string, raw types.MetricsReading) types.MetricsReading {
	seed := 0.0
	if connectionID != "" {
		seed = float64(connectionID[0]%100) / 100
	}

	rps := int(math.Floor(float64(raw.RPS) * (0.8 + seed*0.4)))
	latency := int(math.Floor(float64(raw.Latency) * (0.7 + seed*0.6)))
	errorRate := raw.ErrorRate * (0.5 + seed*1.0)

	return types.MetricsReading{
		RPS:       clampInt(rps, MinRPS, MaxRPS),
		Latency:   clampInt(latency, MinLatency, MaxLatency),
		ErrorRate: math.Round(clampFloat(errorRate, MinErrorRate, MaxErrorRate)*100) / 100,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
