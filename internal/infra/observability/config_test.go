package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("disabled config always valid", func(t *testing.T) {
		cfg := &Config{Enabled: false}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("enabled config requires a service name", func(t *testing.T) {
		cfg := &Config{Enabled: true, SamplingRatio: 1.0}
		assert.Error(t, cfg.Validate())
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		cfg := &Config{Enabled: true, ServiceName: "node", SamplingRatio: 1.5}
		assert.Error(t, cfg.Validate())
	})

	t.Run("valid config", func(t *testing.T) {
		cfg := &Config{Enabled: true, ServiceName: "node", SamplingRatio: 0.5}
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfig_ResourceAttributeMap(t *testing.T) {
	cfg := &Config{
		ServiceName:        "elevator-node",
		Version:            "1.2.3",
		Environment:        "staging",
		ResourceAttributes: "rack=a3,az=us-east-1a",
	}

	attrs := cfg.ResourceAttributeMap()
	assert.Equal(t, "elevator-node", attrs["service.name"])
	assert.Equal(t, "1.2.3", attrs["service.version"])
	assert.Equal(t, "staging", attrs["deployment.environment"])
	assert.Equal(t, "a3", attrs["rack"])
	assert.Equal(t, "us-east-1a", attrs["az"])
}
