package stream

import (
	"fmt"
	"time"
)

// Default emission schedule and probabilities
const (
	DefaultMetricsInterval             = 2500 * time.Millisecond
	DefaultStatusUpdateInterval        = 5 * time.Second
	DefaultStatusChangeProbability     = 0.10
	DefaultConnectionChangeProbability = 0.05
)

// Config holds the engine's emission schedule and per-tick probabilities
type Config struct {
	MetricsInterval             time.Duration
	StatusUpdateInterval        time.Duration
	StatusChangeProbability     float64
	ConnectionChangeProbability float64
}

// DefaultConfig returns the documented default configuration
func DefaultConfig() Config {
	return Config{
		MetricsInterval:             DefaultMetricsInterval,
		StatusUpdateInterval:        DefaultStatusUpdateInterval,
		StatusChangeProbability:     DefaultStatusChangeProbability,
		ConnectionChangeProbability: DefaultConnectionChangeProbability,
	}
}

// Validate checks that intervals are positive and probabilities lie in [0,1]
func (c Config) Validate() error {
	if c.MetricsInterval <= 0 {
		return fmt.Errorf("metrics interval must be positive, got %v", c.MetricsInterval)
	}
	if c.StatusUpdateInterval <= 0 {
		return fmt.Errorf("status update interval must be positive, got %v", c.StatusUpdateInterval)
	}
	if c.StatusChangeProbability < 0 || c.StatusChangeProbability > 1 {
		return fmt.Errorf("status change probability must be in [0,1], got %v", c.StatusChangeProbability)
	}
	if c.ConnectionChangeProbability < 0 || c.ConnectionChangeProbability > 1 {
		return fmt.Errorf("connection change probability must be in [0,1], got %v", c.ConnectionChangeProbability)
	}
	return nil
}

// ConfigUpdate is a partial configuration. Nil fields keep their current
// value when merged.
type ConfigUpdate struct {
	MetricsInterval             *time.Duration
	StatusUpdateInterval        *time.Duration
	StatusChangeProbability     *float64
	ConnectionChangeProbability *float64
}

func (c Config) merge(update ConfigUpdate) Config {
	merged := c
	if update.MetricsInterval != nil {
		merged.MetricsInterval = *update.MetricsInterval
	}
	if update.StatusUpdateInterval != nil {
		merged.StatusUpdateInterval = *update.StatusUpdateInterval
	}
	if update.StatusChangeProbability != nil {
		merged.StatusChangeProbability = *update.StatusChangeProbability
	}
	if update.ConnectionChangeProbability != nil {
		merged.ConnectionChangeProbability = *update.ConnectionChangeProbability
	}
	return merged
}
