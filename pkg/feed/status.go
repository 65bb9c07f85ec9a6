package feed

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/meshpulse/meshpulse/pkg/log"
	"github.com/meshpulse/meshpulse/pkg/stream"
	"github.com/meshpulse/meshpulse/pkg/types"
)

// StatusSnapshot is a point-in-time copy of the board's state
type StatusSnapshot struct {
	ServiceStatuses    map[string]types.Status
	ConnectionStatuses map[string]types.Status
	Connected          bool
	LastUpdate         time.Time
}

// StatusBoard tracks the latest status per service and per connection by
// subscribing to both status event types.
type StatusBoard struct {
	mu     sync.Mutex
	engine *stream.Engine
	logger zerolog.Logger

	unsubscribers      []func()
	connected          bool
	serviceStatuses    map[string]types.Status
	connectionStatuses map[string]types.Status
	lastUpdate         time.Time
}

// NewStatusBoard creates a disconnected board backed by the given engine
func NewStatusBoard(engine *stream.Engine) *StatusBoard {
	return &StatusBoard{
		engine:             engine,
		logger:             log.WithComponent("status-board"),
		serviceStatuses:    make(map[string]types.Status),
		connectionStatuses: make(map[string]types.Status),
	}
}

// Track replaces the entity id sets the engine considers at each status
// tick
func (b *StatusBoard) Track(serviceIDs, connectionIDs []string) {
	b.engine.SetServiceIDs(serviceIDs)
	b.engine.SetConnectionIDs(connectionIDs)
}

// Start subscribes the board to service and connection status events.
// Starting a connected board is a no-op.
func (b *StatusBoard) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connected {
		return nil
	}

	unsubService, err := b.engine.Subscribe(stream.EventServiceStatus, b.handleServiceStatus)
	if err != nil {
		return err
	}
	unsubConnection, err := b.engine.Subscribe(stream.EventConnectionStatus, b.handleConnectionStatus)
	if err != nil {
		unsubService()
		return err
	}

	b.unsubscribers = []func(){unsubService, unsubConnection}
	b.connected = true
	b.logger.Debug().Msg("status board connected")
	return nil
}

// Stop releases both subscriptions. Tracked statuses are kept for
// display; a later Start resumes updates.
func (b *StatusBoard) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return
	}
	for _, unsubscribe := range b.unsubscribers {
		unsubscribe()
	}
	b.unsubscribers = nil
	b.connected = false
	b.logger.Debug().Msg("status board disconnected")
}

// Snapshot returns copies of the tracked status maps
func (b *StatusBoard) Snapshot() StatusSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	services := make(map[string]types.Status, len(b.serviceStatuses))
	for id, status := range b.serviceStatuses {
		services[id] = status
	}
	connections := make(map[string]types.Status, len(b.connectionStatuses))
	for id, status := range b.connectionStatuses {
		connections[id] = status
	}

	return StatusSnapshot{
		ServiceStatuses:    services,
		ConnectionStatuses: connections,
		Connected:          b.connected,
		LastUpdate:         b.lastUpdate,
	}
}

func (b *StatusBoard) handleServiceStatus(event stream.Event) {
	if event.ServiceStatus == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.serviceStatuses[event.ServiceStatus.ServiceID] = event.ServiceStatus.Status
	b.lastUpdate = event.EmittedAt
}

func (b *StatusBoard) handleConnectionStatus(event stream.Event) {
	if event.ConnectionStatus == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.connectionStatuses[event.ConnectionStatus.ConnectionID] = event.ConnectionStatus.Status
	b.lastUpdate = event.EmittedAt
}
