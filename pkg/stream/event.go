package stream

import (
	"time"

	"github.com/meshpulse/meshpulse/pkg/types"
)

// EventType identifies the category of a stream event
type EventType string

const (
	EventMetrics          EventType = "metrics"
	EventServiceStatus    EventType = "service_status"
	EventConnectionStatus EventType = "connection_status"
)

// EventTypes lists the closed set of event types the engine handles
var EventTypes = []EventType{EventMetrics, EventServiceStatus, EventConnectionStatus}

// Event is a single emitted stream event. Exactly one payload field is
// set, matching Type. Events are immutable after emission; the engine
// does not retain them.
type Event struct {
	ID        string
	Type      EventType
	EmittedAt time.Time

	Metrics          *types.MetricsReading
	ServiceStatus    *types.ServiceStatusUpdate
	ConnectionStatus *types.ConnectionStatusUpdate
}

// Handler is a subscriber callback invoked synchronously at emission time
type Handler func(Event)
