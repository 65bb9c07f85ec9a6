package stream

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meshpulse/meshpulse/pkg/generator"
	"github.com/meshpulse/meshpulse/pkg/log"
	"github.com/meshpulse/meshpulse/pkg/metrics"
	"github.com/meshpulse/meshpulse/pkg/types"
)

// Engine owns per-event-type subscriber registries and emission timers.
// Each event type has at most one timer, armed only while the engine is
// running and at least one subscriber for that type exists. Events are
// synthesized from the Generator on each tick and fanned out
// synchronously to all current subscribers of the matching type.
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	gen       generator.Generator
	clock     Clock
	randFloat func() float64
	logger    zerolog.Logger

	running     bool
	nextSubID   int
	subscribers map[EventType][]subscription
	timers      map[EventType]*emitTimer

	serviceIDs    []string
	connectionIDs []string
}

type subscription struct {
	id      int
	handler Handler
}

type emitTimer struct {
	stop chan struct{}
	done chan struct{}
}

// Option configures an Engine at construction time
type Option func(*Engine)

// WithConfig sets the initial configuration
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithClock sets the clock used for timestamps and tick scheduling
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithRandFloat sets the random source for per-tick Bernoulli trials.
// Tests pass a constant function to make probability gating deterministic.
func WithRandFloat(fn func() float64) Option {
	return func(e *Engine) { e.randFloat = fn }
}

// New creates a stopped engine with no subscribers
func New(gen generator.Generator, opts ...Option) *Engine {
	e := &Engine{
		cfg:         DefaultConfig(),
		gen:         gen,
		clock:       SystemClock(),
		randFloat:   rand.Float64,
		logger:      log.WithComponent("stream-engine"),
		subscribers: make(map[EventType][]subscription),
		timers:      make(map[EventType]*emitTimer),
	}
	for _, t := range EventTypes {
		e.subscribers[t] = nil
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers handler for the given event type and returns an
// unsubscribe function. Subscribing to an unknown event type is a wiring
// bug and fails fast with an error. If this is the first subscriber for
// the type and the engine is running, the type's timer is armed
// immediately. The returned function is idempotent; removing the last
// subscriber for a type tears its timer down without stopping the engine.
func (e *Engine) Subscribe(eventType EventType, handler Handler) (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs, known := e.subscribers[eventType]
	if !known {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	e.nextSubID++
	id := e.nextSubID
	e.subscribers[eventType] = append(subs, subscription{id: id, handler: handler})
	metrics.Subscribers.WithLabelValues(string(eventType)).Inc()

	if len(subs) == 0 && e.running {
		e.armTimerLocked(eventType)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.removeSubscriberLocked(eventType, id)
		})
	}, nil
}

func (e *Engine) removeSubscriberLocked(eventType EventType, id int) {
	subs := e.subscribers[eventType]
	for i, sub := range subs {
		if sub.id == id {
			e.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
			metrics.Subscribers.WithLabelValues(string(eventType)).Dec()
			break
		}
	}
	if len(e.subscribers[eventType]) == 0 && e.running {
		e.disarmTimerLocked(eventType)
	}
}

// Start arms a timer for every event type that already has subscribers.
// Calling Start on a running engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		e.logger.Warn().Msg("engine is already running")
		return
	}

	e.running = true
	for _, eventType := range EventTypes {
		if len(e.subscribers[eventType]) > 0 {
			e.armTimerLocked(eventType)
		}
	}
	e.logger.Info().Msg("engine started")
}

// Stop clears every active timer and waits for in-flight ticks to drain.
// Subscriptions are preserved; a subsequent Start resumes delivery to the
// same handlers. Calling Stop on a stopped engine is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		e.logger.Warn().Msg("engine is not running")
		return
	}

	e.running = false
	stopped := make([]*emitTimer, 0, len(e.timers))
	for eventType := range e.timers {
		stopped = append(stopped, e.timers[eventType])
	}
	for _, eventType := range EventTypes {
		if _, ok := e.timers[eventType]; ok {
			e.disarmTimerLocked(eventType)
		}
	}
	e.mu.Unlock()

	for _, timer := range stopped {
		<-timer.done
	}
	e.logger.Info().Msg("engine stopped")
}

// UpdateConfig merges the partial update into the current configuration.
// Invalid values reject the whole update. If the engine is running it is
// stopped and restarted so new intervals apply; the brief emission gap
// is an accepted trade-off.
func (e *Engine) UpdateConfig(update ConfigUpdate) error {
	e.mu.Lock()
	merged := e.cfg.merge(update)
	if err := merged.Validate(); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("invalid config update: %w", err)
	}
	e.cfg = merged
	running := e.running
	e.mu.Unlock()

	if running {
		e.Stop()
		e.Start()
	}
	return nil
}

// GetConfig returns a snapshot of the current configuration
func (e *Engine) GetConfig() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetServiceIDs replaces the set of service ids considered at each
// status tick. Does not affect subscriptions or timers.
func (e *Engine) SetServiceIDs(ids []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.serviceIDs = append([]string(nil), ids...)
}

// SetConnectionIDs replaces the set of connection ids considered at each
// status tick. Does not affect subscriptions or timers.
func (e *Engine) SetConnectionIDs(ids []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connectionIDs = append([]string(nil), ids...)
}

// Active reports whether the engine is running
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// SubscriberCount returns the number of subscribers for an event type
func (e *Engine) SubscriberCount(eventType EventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subscribers[eventType])
}

// TotalSubscriberCount returns the subscriber count across all event types
func (e *Engine) TotalSubscriberCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, subs := range e.subscribers {
		total += len(subs)
	}
	return total
}

func (e *Engine) armTimerLocked(eventType EventType) {
	if _, exists := e.timers[eventType]; exists {
		return
	}

	interval := e.cfg.MetricsInterval
	if eventType == EventServiceStatus || eventType == EventConnectionStatus {
		interval = e.cfg.StatusUpdateInterval
	}

	timer := &emitTimer{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	e.timers[eventType] = timer
	metrics.ActiveTimers.Inc()

	// Ticker is created here, not in the goroutine, so the schedule is
	// armed by the time Subscribe/Start returns.
	ticker := e.clock.NewTicker(interval)
	go e.runTimer(eventType, ticker, timer)

	e.logger.Debug().
		Str("event_type", string(eventType)).
		Dur("interval", interval).
		Msg("timer armed")
}

func (e *Engine) disarmTimerLocked(eventType EventType) {
	timer, ok := e.timers[eventType]
	if !ok {
		return
	}
	close(timer.stop)
	delete(e.timers, eventType)
	metrics.ActiveTimers.Dec()

	e.logger.Debug().
		Str("event_type", string(eventType)).
		Msg("timer disarmed")
}

func (e *Engine) runTimer(eventType EventType, ticker Ticker, timer *emitTimer) {
	defer close(timer.done)
	defer ticker.Stop()

	for {
		select {
		case at := <-ticker.Chan():
			e.tick(eventType, timer, at)
		case <-timer.stop:
			return
		}
	}
}

func (e *Engine) tick(eventType EventType, timer *emitTimer, at time.Time) {
	e.mu.Lock()
	if !e.running || e.timers[eventType] != timer {
		// Superseded by Stop or a config restart while the tick was in flight
		e.mu.Unlock()
		return
	}
	events := e.synthesize(eventType, at)
	handlers := append([]subscription(nil), e.subscribers[eventType]...)
	e.mu.Unlock()

	for _, event := range events {
		e.dispatch(eventType, event, handlers)
	}
}

// synthesize produces this tick's events. A panicking generator aborts
// the tick without events; the timer keeps its schedule.
func (e *Engine) synthesize(eventType EventType, at time.Time) (events []Event) {
	defer func() {
		if r := recover(); r != nil {
			events = nil
			metrics.GeneratorFaultsTotal.Inc()
			e.logger.Error().
				Str("event_type", string(eventType)).
				Interface("panic", r).
				Msg("generator fault, no event this tick")
		}
	}()

	switch eventType {
	case EventMetrics:
		reading := e.gen.GenerateMetrics()
		events = append(events, Event{
			ID:        uuid.New().String(),
			Type:      EventMetrics,
			EmittedAt: at,
			Metrics:   &reading,
		})
	case EventServiceStatus:
		for _, id := range e.serviceIDs {
			if e.randFloat() < e.cfg.StatusChangeProbability {
				update := types.ServiceStatusUpdate{
					ServiceID: id,
					Status:    e.gen.RandomStatus(),
				}
				events = append(events, Event{
					ID:            uuid.New().String(),
					Type:          EventServiceStatus,
					EmittedAt:     at,
					ServiceStatus: &update,
				})
			}
		}
	case EventConnectionStatus:
		for _, id := range e.connectionIDs {
			if e.randFloat() < e.cfg.ConnectionChangeProbability {
				update := types.ConnectionStatusUpdate{
					ConnectionID: id,
					Status:       e.gen.RandomStatus(),
				}
				events = append(events, Event{
					ID:               uuid.New().String(),
					Type:             EventConnectionStatus,
					EmittedAt:        at,
					ConnectionStatus: &update,
				})
			}
		}
	}
	return events
}

func (e *Engine) dispatch(eventType EventType, event Event, handlers []subscription) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.FanoutDuration.WithLabelValues(string(eventType)))

	metrics.EventsEmittedTotal.WithLabelValues(string(eventType)).Inc()
	for _, sub := range handlers {
		e.invoke(eventType, event, sub.handler)
	}
}

// invoke shields fan-out from a panicking handler: remaining subscribers
// of the same tick still receive the event.
func (e *Engine) invoke(eventType EventType, event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerFaultsTotal.WithLabelValues(string(eventType)).Inc()
			e.logger.Error().
				Str("event_type", string(eventType)).
				Interface("panic", r).
				Msg("event handler fault")
		}
	}()
	handler(event)
}
