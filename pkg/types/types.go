package types

import "time"

// Status represents the health of a service or connection
type Status string

const (
	StatusHealthy  Status = "HEALTHY"
	StatusDegraded Status = "DEGRADED"
	StatusOffline  Status = "OFFLINE"
)

// AllStatuses lists every valid status value
var AllStatuses = []Status{StatusHealthy, StatusDegraded, StatusOffline}

// Valid reports whether the status is one of the known values
func (s Status) Valid() bool {
	switch s {
	case StatusHealthy, StatusDegraded, StatusOffline:
		return true
	}
	return false
}

// MetricsReading is a single synthetic metrics sample
type MetricsReading struct {
	RPS       int
	Latency   int
	ErrorRate float64
}

// ServiceStatusUpdate reports a status change for a single service
type ServiceStatusUpdate struct {
	ServiceID string
	Status    Status
}

// ConnectionStatusUpdate reports a status change for a single connection
type ConnectionStatusUpdate struct {
	ConnectionID string
	Status       Status
}

// DataPoint is one display-ready sample in a chart series
type DataPoint struct {
	Timestamp time.Time
	Time      string // pre-formatted clock time for chart axes
	RPS       int
	Latency   int
	ErrorRate float64
}
