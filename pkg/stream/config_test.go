package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2500*time.Millisecond, cfg.MetricsInterval)
	assert.Equal(t, 5*time.Second, cfg.StatusUpdateInterval)
	assert.Equal(t, 0.10, cfg.StatusChangeProbability)
	assert.Equal(t, 0.05, cfg.ConnectionChangeProbability)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero metrics interval", func(c *Config) { c.MetricsInterval = 0 }, true},
		{"negative metrics interval", func(c *Config) { c.MetricsInterval = -time.Second }, true},
		{"zero status interval", func(c *Config) { c.StatusUpdateInterval = 0 }, true},
		{"probability below zero", func(c *Config) { c.StatusChangeProbability = -0.1 }, true},
		{"probability above one", func(c *Config) { c.ConnectionChangeProbability = 1.5 }, true},
		{"probability zero", func(c *Config) { c.StatusChangeProbability = 0 }, false},
		{"probability one", func(c *Config) { c.ConnectionChangeProbability = 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := DefaultConfig()

	interval := 7 * time.Second
	probability := 0.42
	merged := cfg.merge(ConfigUpdate{
		StatusUpdateInterval:    &interval,
		StatusChangeProbability: &probability,
	})

	assert.Equal(t, 7*time.Second, merged.StatusUpdateInterval)
	assert.Equal(t, 0.42, merged.StatusChangeProbability)
	assert.Equal(t, cfg.MetricsInterval, merged.MetricsInterval)
	assert.Equal(t, cfg.ConnectionChangeProbability, merged.ConnectionChangeProbability)

	// the receiver is untouched
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigMergeEmptyUpdate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, cfg, cfg.merge(ConfigUpdate{}))
}
