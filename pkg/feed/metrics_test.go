package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshpulse/meshpulse/pkg/cache"
	"github.com/meshpulse/meshpulse/pkg/generator"
	"github.com/meshpulse/meshpulse/pkg/stream"
	"github.com/meshpulse/meshpulse/pkg/stream/streamtest"
	"github.com/meshpulse/meshpulse/pkg/types"
)

func TestDeriveConnectionMetricsClampsLowEnd(t *testing.T) {
	derived := DeriveConnectionMetrics("conn-1", types.MetricsReading{})

	assert.Equal(t, MinRPS, derived.RPS)
	assert.Equal(t, MinLatency, derived.Latency)
	assert.Equal(t, MinErrorRate, derived.ErrorRate)
}

func TestDeriveConnectionMetricsClampsHighEnd(t *testing.T) {
	derived := DeriveConnectionMetrics("conn-1", types.MetricsReading{
		RPS:       10000,
		Latency:   10000,
		ErrorRate: 100,
	})

	assert.Equal(t, MaxRPS, derived.RPS)
	assert.Equal(t, MaxLatency, derived.Latency)
	assert.Equal(t, MaxErrorRate, derived.ErrorRate)
}

func TestDeriveConnectionMetricsSeedFromFirstCharacter(t *testing.T) {
	raw := types.MetricsReading{RPS: 700, Latency: 120, ErrorRate: 2.5}

	// Same first character, same variation
	assert.Equal(t,
		DeriveConnectionMetrics("conn-1", raw),
		DeriveConnectionMetrics("conn-2", raw))

	// Result is deterministic for a given id
	first := DeriveConnectionMetrics("auth-link", raw)
	second := DeriveConnectionMetrics("auth-link", raw)
	assert.Equal(t, first, second)
}

func TestDeriveConnectionMetricsEmptyID(t *testing.T) {
	raw := types.MetricsReading{RPS: 700, Latency: 120, ErrorRate: 2.5}
	derived := DeriveConnectionMetrics("", raw)

	// seed 0: bands collapse to 0.8x / 0.7x / 0.5x
	assert.Equal(t, 560, derived.RPS)
	assert.Equal(t, 84, derived.Latency)
	assert.Equal(t, 1.25, derived.ErrorRate)
}

func TestDeriveConnectionMetricsRounding(t *testing.T) {
	derived := DeriveConnectionMetrics("", types.MetricsReading{ErrorRate: 2.537})
	assert.Equal(t, 1.27, derived.ErrorRate)
}

func newFeedEngine(t *testing.T) (*stream.Engine, *streamtest.ManualClock) {
	t.Helper()
	clock := streamtest.NewManualClock(time.Unix(1000, 0))
	engine := stream.New(generator.New(1),
		stream.WithClock(clock),
		stream.WithConfig(stream.Config{
			MetricsInterval:             time.Second,
			StatusUpdateInterval:        time.Second,
			StatusChangeProbability:     0,
			ConnectionChangeProbability: 0,
		}),
	)
	t.Cleanup(engine.Stop)
	return engine, clock
}

func TestActivatePreloadsCachedSeries(t *testing.T) {
	engine, _ := newFeedEngine(t)
	c := cache.New[types.DataPoint](0)
	c.Add("conn-1", types.DataPoint{Time: "10:00:00", RPS: 500})

	feed := NewConnectionMetrics(engine, c)
	t.Cleanup(feed.Close)

	feed.Activate("conn-1", true)
	snap := feed.Snapshot()

	assert.True(t, snap.Loading)
	require.Len(t, snap.Series, 1)
	assert.Equal(t, "10:00:00", snap.Series[0].Time)
	assert.Equal(t, types.MetricsReading{}, snap.Metrics)
	assert.Equal(t, 1, engine.SubscriberCount(stream.EventMetrics))
}

func TestActivateSameConnectionIsNoop(t *testing.T) {
	engine, _ := newFeedEngine(t)
	feed := NewConnectionMetrics(engine, cache.New[types.DataPoint](0))
	t.Cleanup(feed.Close)

	feed.Activate("conn-1", true)
	feed.Activate("conn-1", true)

	assert.Equal(t, 1, engine.SubscriberCount(stream.EventMetrics))
}

func TestActivateSwitchesConnection(t *testing.T) {
	engine, _ := newFeedEngine(t)
	feed := NewConnectionMetrics(engine, cache.New[types.DataPoint](0))
	t.Cleanup(feed.Close)

	feed.Activate("conn-1", true)
	feed.Activate("conn-2", true)

	assert.Equal(t, 1, engine.SubscriberCount(stream.EventMetrics))
	assert.True(t, feed.Snapshot().Loading)
}

func TestHandleMetricsUpdatesStateAndCache(t *testing.T) {
	engine, _ := newFeedEngine(t)
	c := cache.New[types.DataPoint](0)
	feed := NewConnectionMetrics(engine, c)
	t.Cleanup(feed.Close)
	feed.now = func() time.Time { return time.Date(2026, 8, 30, 14, 30, 5, 0, time.UTC) }

	feed.Activate("conn-1", true)
	feed.handleMetrics("conn-1", stream.Event{
		Type:    stream.EventMetrics,
		Metrics: &types.MetricsReading{RPS: 700, Latency: 120, ErrorRate: 2.5},
	})

	snap := feed.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, DeriveConnectionMetrics("conn-1", types.MetricsReading{RPS: 700, Latency: 120, ErrorRate: 2.5}), snap.Metrics)
	require.Len(t, snap.Series, 1)
	assert.Equal(t, "14:30:05", snap.Series[0].Time)
	assert.Equal(t, snap.Metrics.RPS, snap.Series[0].RPS)
	assert.Equal(t, 1, c.Size("conn-1"))
}

func TestHandleMetricsIgnoresStaleEvents(t *testing.T) {
	engine, _ := newFeedEngine(t)
	c := cache.New[types.DataPoint](0)
	feed := NewConnectionMetrics(engine, c)
	t.Cleanup(feed.Close)

	feed.Activate("conn-1", true)

	// Event bound to a different id than the active one
	feed.handleMetrics("conn-2", stream.Event{
		Type:    stream.EventMetrics,
		Metrics: &types.MetricsReading{RPS: 700, Latency: 120, ErrorRate: 2.5},
	})
	assert.True(t, feed.Snapshot().Loading)
	assert.Zero(t, c.Size("conn-2"))

	// Event without a metrics payload
	feed.handleMetrics("conn-1", stream.Event{Type: stream.EventMetrics})
	assert.True(t, feed.Snapshot().Loading)
	assert.Zero(t, c.Size("conn-1"))
}

func TestDeactivateResetsButRetainsCache(t *testing.T) {
	engine, _ := newFeedEngine(t)
	c := cache.New[types.DataPoint](0)
	feed := NewConnectionMetrics(engine, c)

	feed.Activate("conn-1", true)
	feed.handleMetrics("conn-1", stream.Event{
		Type:    stream.EventMetrics,
		Metrics: &types.MetricsReading{RPS: 700, Latency: 120, ErrorRate: 2.5},
	})
	require.Equal(t, 1, c.Size("conn-1"))

	feed.Activate("", false)

	snap := feed.Snapshot()
	assert.Equal(t, types.MetricsReading{}, snap.Metrics)
	assert.Empty(t, snap.Series)
	assert.False(t, snap.Loading)
	assert.Zero(t, engine.SubscriberCount(stream.EventMetrics))

	// History survives deactivation and reloads on the next activate
	assert.Equal(t, 1, c.Size("conn-1"))
	feed.Activate("conn-1", true)
	assert.Len(t, feed.Snapshot().Series, 1)
	feed.Close()
}

func TestCloseReleasesSubscription(t *testing.T) {
	engine, _ := newFeedEngine(t)
	feed := NewConnectionMetrics(engine, cache.New[types.DataPoint](0))

	feed.Activate("conn-1", true)
	require.Equal(t, 1, engine.SubscriberCount(stream.EventMetrics))

	feed.Close()
	assert.Zero(t, engine.SubscriberCount(stream.EventMetrics))
}

func TestConnectionMetricsEndToEnd(t *testing.T) {
	engine, clock := newFeedEngine(t)
	c := cache.New[types.DataPoint](0)
	feed := NewConnectionMetrics(engine, c)
	t.Cleanup(feed.Close)

	feed.Activate("conn-1", true)
	engine.Start()

	clock.Advance(3 * time.Second)
	require.Eventually(t, func() bool { return c.Size("conn-1") == 3 },
		2*time.Second, time.Millisecond)

	snap := feed.Snapshot()
	assert.False(t, snap.Loading)
	assert.Len(t, snap.Series, 3)
	assert.GreaterOrEqual(t, snap.Metrics.RPS, MinRPS)
	assert.LessOrEqual(t, snap.Metrics.RPS, MaxRPS)
	assert.GreaterOrEqual(t, snap.Metrics.Latency, MinLatency)
	assert.LessOrEqual(t, snap.Metrics.Latency, MaxLatency)
}
