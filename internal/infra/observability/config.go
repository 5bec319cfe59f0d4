// Package observability wires up distributed tracing for a fleet node
// using OpenTelemetry.
package observability

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env"
)

// Config controls the tracer a TelemetryProvider builds.
type Config struct {
	Enabled       bool    `env:"TRACING_ENABLED" envDefault:"true"`
	ServiceName   string  `env:"SERVICE_NAME" envDefault:"elevator-node"`
	Version       string  `env:"SERVICE_VERSION" envDefault:"dev"`
	Environment   string  `env:"ENV" envDefault:"development"`
	SamplingRatio float64 `env:"TRACING_SAMPLING_RATIO" envDefault:"1.0"`

	// ResourceAttributes holds extra "key=value,key=value" pairs that
	// ResourceAttributeMap merges with the service identity fields.
	// NewTelemetryProvider does not read them.
	ResourceAttributes string `env:"TRACING_RESOURCE_ATTRIBUTES" envDefault:""`
}

// LoadConfig reads observability settings from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing observability config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration is internally consistent.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return fmt.Errorf("service name cannot be empty")
	}
	if c.SamplingRatio < 0.0 || c.SamplingRatio > 1.0 {
		return fmt.Errorf("sampling ratio must be between 0.0 and 1.0")
	}
	return nil
}

// ResourceAttributeMap parses ResourceAttributes into a map, merging in
// the service identity fields.
func (c *Config) ResourceAttributeMap() map[string]string {
	attrs := map[string]string{
		"service.name":           c.ServiceName,
		"service.version":        c.Version,
		"deployment.environment": c.Environment,
	}

	if c.ResourceAttributes == "" {
		return attrs
	}
	for _, pair := range strings.Split(c.ResourceAttributes, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 {
			attrs[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return attrs
}
